package followup

import (
	"fmt"
	"time"
)

// Cadence offsets measured from the initial outreach email
const (
	FirstOffset  = 3 * 24 * time.Hour
	SecondOffset = 7 * 24 * time.Hour
	ThirdOffset  = 14 * 24 * time.Hour
)

// Schedule holds the three follow-up due dates derived from the initial send
type Schedule struct {
	First  time.Time `json:"first"`
	Second time.Time `json:"second"`
	Third  time.Time `json:"third"`
}

// ScheduleFrom computes the follow-up due dates at fixed offsets from the
// instant the initial email was sent
func ScheduleFrom(initialSentAt time.Time) Schedule {
	return Schedule{
		First:  initialSentAt.Add(FirstOffset),
		Second: initialSentAt.Add(SecondOffset),
		Third:  initialSentAt.Add(ThirdOffset),
	}
}

// Remaining returns dueDate minus now. A negative result means the due date
// has passed. Plain subtraction, so the sign stays correct even if the system
// clock moves backward.
func Remaining(dueDate, now time.Time) time.Duration {
	return dueDate.Sub(now)
}

// Countdown is the display decomposition of a remaining duration.
// Days/Hours/Minutes/Seconds are components of the magnitude, not totals.
type Countdown struct {
	Overdue bool   `json:"overdue"`
	Days    int    `json:"days"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"`
	Text    string `json:"text"`
}

// Describe decomposes the time between now and dueDate for rendering.
// Overdue always shows days+hours+minutes, pending shows days+hours while a
// day or more remains and switches to minutes+seconds under a day.
func Describe(dueDate, now time.Time) Countdown {
	diff := Remaining(dueDate, now)

	cd := Countdown{Overdue: diff < 0}
	mag := diff
	if cd.Overdue {
		mag = -mag
	}

	cd.Days = int(mag / (24 * time.Hour))
	cd.Hours = int(mag % (24 * time.Hour) / time.Hour)
	cd.Minutes = int(mag % time.Hour / time.Minute)
	cd.Seconds = int(mag % time.Minute / time.Second)

	switch {
	case cd.Overdue:
		cd.Text = fmt.Sprintf("%dd %dh %dm overdue", cd.Days, cd.Hours, cd.Minutes)
	case cd.Days > 0:
		cd.Text = fmt.Sprintf("%dd %dh remaining", cd.Days, cd.Hours)
	default:
		cd.Text = fmt.Sprintf("%dm %ds remaining", cd.Minutes, cd.Seconds)
	}

	return cd
}
