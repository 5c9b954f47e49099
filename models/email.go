package models

import (
	"time"

	"gorm.io/gorm"
)

// Email statuses. opened and replied exist for a tracking pipeline
// that is out of scope here; nothing in this service sets them.
const (
	EmailStatusSent    = "sent"
	EmailStatusFailed  = "failed"
	EmailStatusOpened  = "opened"
	EmailStatusReplied = "replied"
)

// Email is one row per dispatch attempt, append-only: rows are created
// by the dispatch loop and never updated afterwards.
type Email struct {
	gorm.Model
	UserID     uint `gorm:"not null;index" json:"user_id"`
	CampaignID uint `gorm:"not null;index" json:"campaign_id"`
	LeadID     uint `gorm:"not null;index" json:"lead_id"`
	TemplateID uint `gorm:"not null;index" json:"template_id"`

	MessageID string `gorm:"index" json:"message_id"`

	// Rendered snapshots, so the record survives template edits.
	Subject string `json:"subject"`
	Body    string `gorm:"type:text" json:"body"`

	Status string `gorm:"not null;index" json:"status"`

	SentAt    *time.Time `json:"sent_at"`
	OpenedAt  *time.Time `json:"opened_at"`
	RepliedAt *time.Time `json:"replied_at"`

	ErrorMessage string `json:"error_message,omitempty"`

	// Relations
	Lead Lead `json:"-"`
}
