package followup

import (
	"errors"
	"time"
)

// Stage identifies one of the four outreach touchpoints for a lead
type Stage string

const (
	StageInitial Stage = "initial"
	StageFirst   Stage = "first"
	StageSecond  Stage = "second"
	StageThird   Stage = "third"
)

var (
	ErrInitialAlreadySent = errors.New("initial email already marked as sent")
	ErrInitialNotSent     = errors.New("initial email has not been marked as sent")
	ErrUnknownStage       = errors.New("unknown follow-up stage")
)

// ParseStage maps a wire string onto a follow-up stage
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageInitial, StageFirst, StageSecond, StageThird:
		return Stage(s), nil
	}
	return "", ErrUnknownStage
}

// InitialStatus is the state of the initial outreach email
type InitialStatus struct {
	Sent   bool       `json:"sent"`
	SentAt *time.Time `json:"sentAt"`
}

// StageStatus is the state of one scheduled follow-up touchpoint
type StageStatus struct {
	Sent    bool       `json:"sent"`
	SentAt  *time.Time `json:"sentAt"`
	DueDate *time.Time `json:"dueDate"`
}

// Tracking is the complete follow-up aggregate for one lead. This is also the
// wire shape exchanged with the persistence layer and the dashboard.
type Tracking struct {
	InitialEmail   InitialStatus `json:"initialEmail"`
	FirstFollowUp  StageStatus   `json:"firstFollowUp"`
	SecondFollowUp StageStatus   `json:"secondFollowUp"`
	ThirdFollowUp  StageStatus   `json:"thirdFollowUp"`
}

// NewTracking returns the all-unset default aggregate
func NewTracking() Tracking {
	return Tracking{}
}

// FollowUpStage returns the status of one of the three follow-up stages
func (t Tracking) FollowUpStage(stage Stage) (StageStatus, error) {
	switch stage {
	case StageFirst:
		return t.FirstFollowUp, nil
	case StageSecond:
		return t.SecondFollowUp, nil
	case StageThird:
		return t.ThirdFollowUp, nil
	}
	return StageStatus{}, ErrUnknownStage
}

// IsOverdue reports whether a follow-up stage is unsent with a due date in
// the past. The initial stage has no due date and is never overdue.
func (t Tracking) IsOverdue(stage Stage, now time.Time) bool {
	st, err := t.FollowUpStage(stage)
	if err != nil {
		return false
	}
	return !st.Sent && st.DueDate != nil && now.After(*st.DueDate)
}

// UpdateFunc receives the full aggregate after every mutation. The tracker
// fires it and moves on; retries and error surfacing belong to the caller.
type UpdateFunc func(Tracking)

// Tracker owns the follow-up state machine for a single lead. All mutations
// happen on the caller's goroutine; the tracker itself holds no locks.
type Tracker struct {
	tracking Tracking
	onUpdate UpdateFunc
}

// NewTracker wraps an existing aggregate. onUpdate may be nil.
func NewTracker(tracking Tracking, onUpdate UpdateFunc) *Tracker {
	return &Tracker{tracking: tracking, onUpdate: onUpdate}
}

// Tracking returns a copy of the current aggregate
func (t *Tracker) Tracking() Tracking {
	return t.tracking
}

// MarkInitialSent records the initial outreach at now and installs the three
// follow-up due dates in one step. The follow-up stages reset to unsent so a
// restarted cadence never reuses stale due dates.
func (t *Tracker) MarkInitialSent(now time.Time) error {
	if t.tracking.InitialEmail.Sent {
		return ErrInitialAlreadySent
	}

	sched := ScheduleFrom(now)
	sentAt := now
	t.tracking = Tracking{
		InitialEmail:   InitialStatus{Sent: true, SentAt: &sentAt},
		FirstFollowUp:  StageStatus{DueDate: &sched.First},
		SecondFollowUp: StageStatus{DueDate: &sched.Second},
		ThirdFollowUp:  StageStatus{DueDate: &sched.Third},
	}

	t.emit()
	return nil
}

// MarkFollowUpSent records one follow-up touchpoint as sent. Due dates and
// the other stages are left untouched, and stages may be marked in any
// order. Marking an already-sent stage again moves sentAt to the later
// instant.
func (t *Tracker) MarkFollowUpSent(stage Stage, now time.Time) error {
	if !t.tracking.InitialEmail.Sent {
		return ErrInitialNotSent
	}

	sentAt := now
	switch stage {
	case StageFirst:
		t.tracking.FirstFollowUp.Sent = true
		t.tracking.FirstFollowUp.SentAt = &sentAt
	case StageSecond:
		t.tracking.SecondFollowUp.Sent = true
		t.tracking.SecondFollowUp.SentAt = &sentAt
	case StageThird:
		t.tracking.ThirdFollowUp.Sent = true
		t.tracking.ThirdFollowUp.SentAt = &sentAt
	default:
		return ErrUnknownStage
	}

	t.emit()
	return nil
}

// Reset restores the all-unset default aggregate. Only offered once a
// cadence has started.
func (t *Tracker) Reset() error {
	if !t.tracking.InitialEmail.Sent {
		return ErrInitialNotSent
	}

	t.tracking = NewTracking()
	t.emit()
	return nil
}

// IsOverdue is a convenience passthrough to the aggregate
func (t *Tracker) IsOverdue(stage Stage, now time.Time) bool {
	return t.tracking.IsOverdue(stage, now)
}

func (t *Tracker) emit() {
	if t.onUpdate != nil {
		t.onUpdate(t.tracking)
	}
}
