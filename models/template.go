package models

import "gorm.io/gorm"

// Template is reusable parameterized email content. Subject and body
// may embed the placeholder tokens {name}, {email}, {channel_name} and
// {platform} (double-brace spellings are accepted too); substitution
// happens at dispatch time.
type Template struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name    string `gorm:"not null" json:"name"`
	Subject string `gorm:"not null" json:"subject"`
	Body    string `gorm:"type:text;not null" json:"body"`
}
