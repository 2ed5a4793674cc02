package utils

import (
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
)

// Common email typos seen in scraped contact data
var commonTypos = map[string]string{
	"gmai.com":   "gmail.com",
	"gmal.com":   "gmail.com",
	"gmail.co":   "gmail.com",
	"yaho.com":   "yahoo.com",
	"hotmai.com": "hotmail.com",
	"outlok.com": "outlook.com",
}

// ValidateLeadEmail checks a lead's email before it enters the table:
// syntax, obvious typos, and a DNS/MX lookup on the domain. Deliverability
// beyond that is the mailer service's problem.
func ValidateLeadEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := checkmail.ValidateFormat(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("invalid email format")
	}
	domain := parts[1]

	if suggested, ok := commonTypos[domain]; ok {
		return fmt.Errorf("possible typo, did you mean %s@%s?", parts[0], suggested)
	}

	if err := checkmail.ValidateHost(email); err != nil {
		return fmt.Errorf("domain validation failed: %w", err)
	}

	return nil
}
