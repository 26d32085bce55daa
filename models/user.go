package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authentication account. Everything the marketplace
// knows about a person beyond credentials lives on Profile.
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Google OAuth fields
	GoogleID       *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GoogleImageURL *string `json:"google_image_url,omitempty"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`

	TokenVersion int `gorm:"default:0" json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Relations
	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}
