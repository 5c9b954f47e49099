package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign statuses. A dispatch pass claims the campaign by moving it
// from draft to sending; it ends at completed regardless of
// per-recipient failures ("completed" means the pass finished).
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusSending   = "sending"
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

// Campaign pairs a template with a set of leads for one dispatch pass.
type Campaign struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name   string `gorm:"not null" json:"name"`
	Status string `gorm:"default:'draft'" json:"status"`

	TemplateID *uint `gorm:"index" json:"template_id"`

	// Denormalized counters. TotalLeads is recounted from the join
	// table whenever leads are added; SentCount is set by dispatch.
	TotalLeads int `gorm:"default:0" json:"total_leads"`
	SentCount  int `gorm:"default:0" json:"sent_count"`

	// Relations
	Template      *Template      `json:"template,omitempty"`
	CampaignLeads []CampaignLead `gorm:"foreignKey:CampaignID" json:"-"`
}

// CampaignLead joins a campaign to a lead. The composite unique index
// makes the store reject duplicate (campaign, lead) pairs. Removals
// are hard deletes; a soft-deleted row would keep occupying the
// unique index and block re-adding the pair.
type CampaignLead struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	CampaignID uint      `gorm:"not null;uniqueIndex:idx_campaign_lead" json:"campaign_id"`
	LeadID     uint      `gorm:"not null;uniqueIndex:idx_campaign_lead;index" json:"lead_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`

	// Relations
	Lead Lead `json:"lead,omitempty"`
}
