package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead sources
const (
	SourceGoogleMaps = "google-maps"
	SourceShopify    = "shopify"
	SourceManual     = "manual"
)

// Lead represents a single collected business contact
type Lead struct {
	gorm.Model

	BusinessName string `gorm:"not null;index" json:"business_name"`
	Email        string `gorm:"index" json:"email"`
	Phone        string `json:"phone"`
	Website      string `json:"website"`
	Address      string `json:"address"`

	// Socials scraped from the business page
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`

	// Google Maps metadata
	Rating      float64 `gorm:"default:0" json:"rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`

	// Operator annotation
	Note string `gorm:"type:text" json:"note"`

	// Provenance
	Source      string `gorm:"not null;index" json:"source"` // google-maps, shopify, manual
	SearchQuery string `json:"search_query"`
	Location    string `json:"location"`
	IsManual    bool   `gorm:"default:false" json:"is_manual"`

	// Outreach status
	EmailSent   bool       `gorm:"default:false" json:"email_sent"`
	EmailSentAt *time.Time `json:"email_sent_at"`

	// Relations
	FollowUp  *FollowUp  `gorm:"foreignKey:LeadID" json:"follow_up,omitempty"`
	EmailLogs []EmailLog `gorm:"foreignKey:LeadID" json:"email_logs,omitempty"`
}
