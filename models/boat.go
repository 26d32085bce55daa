package models

import "gorm.io/gorm"

// Boat belongs to exactly one owner profile and is referenced by events.
type Boat struct {
	gorm.Model
	OwnerID uint `gorm:"not null;index" json:"owner_id"`

	Name               string  `gorm:"not null" json:"name"`
	BoatType           string  `json:"boat_type"`
	Class              string  `json:"class"`
	LengthM            float64 `json:"length_m"`
	HomePort           string  `json:"home_port"`
	IsOffshoreCapable  bool    `gorm:"default:false" json:"is_offshore_capable"`

	// Relations
	Events []Event `gorm:"foreignKey:BoatID" json:"events,omitempty"`
}
