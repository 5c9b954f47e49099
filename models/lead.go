package models

import (
	"time"

	"gorm.io/gorm"
)

// NoEmailSentinel is stored when channel analysis could not find an
// address. It is distinguishable from a real address and is rejected
// by the mailer before any connection is attempted.
const NoEmailSentinel = "No email found"

// Lead is a prospective outreach contact derived from creator-channel
// analysis (or entered manually).
type Lead struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"not null;index" json:"email"` // real address or NoEmailSentinel

	ChannelName string `json:"channel_name"`
	Platform    string `json:"platform"`
	ProfileURL  string `json:"profile_url"`
	Niche       string `json:"niche"`

	// Nil when the analysis could not determine a posting date.
	LastPosted *time.Time `json:"last_posted"`

	// Free-text narrative from the analysis model, bounded on ingest.
	AbilityToPayAnalysis string `gorm:"type:text" json:"ability_to_pay_analysis"`

	Status string `gorm:"default:'new'" json:"status"` // new, contacted, replied, closed

	// Relations
	CampaignLeads []CampaignLead `gorm:"foreignKey:LeadID" json:"-"`
}

// HasEmail reports whether the lead carries a usable address rather
// than the sentinel or junk.
func (l *Lead) HasEmail() bool {
	if l.Email == "" || l.Email == NoEmailSentinel {
		return false
	}
	for _, r := range l.Email {
		if r == '@' {
			return true
		}
	}
	return false
}
