package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// SendEmailRequest is one outbound message handed to the mailer service
type SendEmailRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// MailerClient talks to the external email delivery service. SMTP transport,
// retries on the wire, and bounce handling all live on that side.
type MailerClient struct {
	http   *resty.Client
	from   string
	Logger *log.Logger
}

func NewMailerClient(baseURL, fromEmail string, logger *log.Logger) *MailerClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)

	return &MailerClient{http: client, from: fromEmail, Logger: logger}
}

type sendResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Send delivers one email through the mailer service
func (mc *MailerClient) Send(ctx context.Context, req SendEmailRequest) error {
	if req.From == "" {
		req.From = mc.from
	}

	var result sendResponse
	res, err := mc.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/send")
	if err != nil {
		return fmt.Errorf("mailer request failed: %w", err)
	}
	if res.IsError() || !result.Success {
		if result.Error != "" {
			return fmt.Errorf("mailer error: %s", result.Error)
		}
		return fmt.Errorf("mailer error: status %d", res.StatusCode())
	}

	return nil
}
