package models

import (
	"time"

	"gorm.io/gorm"
)

// EmailLog records one outbound email and its engagement counters
type EmailLog struct {
	gorm.Model
	LeadID uint `gorm:"not null;index" json:"lead_id"`

	MessageID string `gorm:"not null;uniqueIndex" json:"message_id"`
	LeadType  string `gorm:"index" json:"lead_type"` // google-maps, shopify
	Subject   string `json:"subject"`

	SentAt *time.Time `json:"sent_at"`

	// Engagement
	OpenedAt   *time.Time `json:"opened_at"`
	OpenCount  int        `gorm:"default:0" json:"open_count"`
	ClickedAt  *time.Time `json:"clicked_at"`
	ClickCount int        `gorm:"default:0" json:"click_count"`

	// Relations
	Lead        Lead         `json:"-"`
	ClickEvents []ClickEvent `gorm:"foreignKey:EmailLogID" json:"click_events,omitempty"`
}

// ClickEvent tracks individual link clicks on a sent email
type ClickEvent struct {
	gorm.Model
	EmailLogID uint      `gorm:"not null;index" json:"email_log_id"`
	URL        string    `gorm:"not null" json:"url"`
	ClickedAt  time.Time `gorm:"not null" json:"clicked_at"`
}
