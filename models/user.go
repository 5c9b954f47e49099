package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account owner. Every lead, template, campaign and email
// row is scoped to exactly one user.
type User struct {
	gorm.Model
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Name         *string `json:"name"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// Incremented on password change to invalidate outstanding tokens.
	TokenVersion int `gorm:"default:0" json:"-"`

	// Relations
	Leads     []Lead     `gorm:"foreignKey:UserID" json:"-"`
	Templates []Template `gorm:"foreignKey:UserID" json:"-"`
	Campaigns []Campaign `gorm:"foreignKey:UserID" json:"-"`
}

// RefreshToken tracks issued refresh tokens so they can be revoked.
type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"not null;index" json:"-"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}
