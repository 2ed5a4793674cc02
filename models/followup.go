package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/Nazmul246/SLS-Lead-Collector/followup"
)

// FollowUp stores the follow-up cadence aggregate for one lead, flattened
// into columns. The persistence layer receives the full aggregate on every
// mutation and stores it keyed by lead id.
type FollowUp struct {
	gorm.Model
	LeadID uint `gorm:"not null;uniqueIndex" json:"lead_id"`

	InitialSent   bool       `gorm:"default:false" json:"initial_sent"`
	InitialSentAt *time.Time `json:"initial_sent_at"`

	FirstSent   bool       `gorm:"default:false" json:"first_sent"`
	FirstSentAt *time.Time `json:"first_sent_at"`
	FirstDueAt  *time.Time `json:"first_due_at"`

	SecondSent   bool       `gorm:"default:false" json:"second_sent"`
	SecondSentAt *time.Time `json:"second_sent_at"`
	SecondDueAt  *time.Time `json:"second_due_at"`

	ThirdSent   bool       `gorm:"default:false" json:"third_sent"`
	ThirdSentAt *time.Time `json:"third_sent_at"`
	ThirdDueAt  *time.Time `json:"third_due_at"`
}

// ToTracking converts the stored row into the wire aggregate
func (f *FollowUp) ToTracking() followup.Tracking {
	return followup.Tracking{
		InitialEmail: followup.InitialStatus{
			Sent:   f.InitialSent,
			SentAt: f.InitialSentAt,
		},
		FirstFollowUp: followup.StageStatus{
			Sent:    f.FirstSent,
			SentAt:  f.FirstSentAt,
			DueDate: f.FirstDueAt,
		},
		SecondFollowUp: followup.StageStatus{
			Sent:    f.SecondSent,
			SentAt:  f.SecondSentAt,
			DueDate: f.SecondDueAt,
		},
		ThirdFollowUp: followup.StageStatus{
			Sent:    f.ThirdSent,
			SentAt:  f.ThirdSentAt,
			DueDate: f.ThirdDueAt,
		},
	}
}

// ApplyTracking copies a wire aggregate into the row's columns
func (f *FollowUp) ApplyTracking(tr followup.Tracking) {
	f.InitialSent = tr.InitialEmail.Sent
	f.InitialSentAt = tr.InitialEmail.SentAt

	f.FirstSent = tr.FirstFollowUp.Sent
	f.FirstSentAt = tr.FirstFollowUp.SentAt
	f.FirstDueAt = tr.FirstFollowUp.DueDate

	f.SecondSent = tr.SecondFollowUp.Sent
	f.SecondSentAt = tr.SecondFollowUp.SentAt
	f.SecondDueAt = tr.SecondFollowUp.DueDate

	f.ThirdSent = tr.ThirdFollowUp.Sent
	f.ThirdSentAt = tr.ThirdFollowUp.SentAt
	f.ThirdDueAt = tr.ThirdFollowUp.DueDate
}
