package models

import (
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Profile types
const (
	ProfileTypeSailor = "sailor"
	ProfileTypeOwner  = "owner"
	ProfileTypeBoth   = "both"
)

// Plan tiers
const (
	PlanTierFree = "free"
	PlanTierPro  = "pro"
)

// Competence bands derived from accumulated ratings
const (
	BandUnknown = "unknown"
	BandLow     = "low"
	BandMedium  = "medium"
	BandHigh    = "high"
)

// Profile holds everything the marketplace knows about a person: who they
// sail as, where, and the derived trust metrics other users rank them by.
// Exactly one Profile exists per User (ensure-profile on first sign-in).
type Profile struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`

	DisplayName  string `gorm:"not null" json:"display_name"`
	ProfileType  string `gorm:"default:'sailor'" json:"profile_type"` // sailor, owner, both
	LocationText string `json:"location_text"`
	HomePort     string `json:"home_port"`

	// Sailor attributes
	Roles             []string `gorm:"type:jsonb;serializer:json" json:"roles"` // e.g. Bow, Trimmer, Helm
	ExperienceLevel   string   `json:"experience_level"`
	OffshoreQualified bool     `gorm:"default:false" json:"offshore_qualified"`
	IsAvailable       bool     `gorm:"default:false" json:"is_available"`
	WillingToTravel   bool     `gorm:"default:true" json:"willing_to_travel"`

	IsSuspended bool `gorm:"default:false" json:"is_suspended"`

	// Plan information
	PlanTier         string  `gorm:"default:'free'" json:"plan_tier"` // free, pro
	StripeCustomerID *string `gorm:"index" json:"-"`

	// Derived trust metrics, recomputed after each verified rating.
	// Never edited directly by the user.
	ReliabilityScore            int    `gorm:"default:0" json:"reliability_score"`       // 0..100
	WouldSailAgainPct           int    `gorm:"default:0" json:"would_sail_again_pct"`    // 0..100
	VerifiedParticipationsCount int    `gorm:"default:0" json:"verified_participations_count"`
	CompetenceBand              string `gorm:"default:'unknown'" json:"competence_band"`

	// Relations
	Boats  []Boat  `gorm:"foreignKey:OwnerID" json:"boats,omitempty"`
	Events []Event `gorm:"foreignKey:OwnerID" json:"events,omitempty"`
}

// IsOwner reports whether this profile may list boats and events.
func (p *Profile) IsOwner() bool {
	return p.ProfileType == ProfileTypeOwner || p.ProfileType == ProfileTypeBoth
}

// IsSailor reports whether this profile may discover and apply to events.
func (p *Profile) IsSailor() bool {
	return p.ProfileType == ProfileTypeSailor || p.ProfileType == ProfileTypeBoth
}

// IsPro reports whether the profile is on the paid owner tier.
func (p *Profile) IsPro() bool {
	return NormalizePlanTier(p.PlanTier) == PlanTierPro
}

// NormalizePlanTier folds legacy tier spellings into free/pro.
func NormalizePlanTier(tier string) string {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "pro", "paid":
		return PlanTierPro
	default:
		return PlanTierFree
	}
}

// BandBonus is the score adjustment contributed by a competence band.
func BandBonus(band string) int {
	switch strings.ToLower(band) {
	case BandHigh:
		return 15
	case BandMedium:
		return 7
	case BandLow:
		return -5
	default:
		return 0
	}
}

// TrustScore converts a sailor's accumulated metrics into the single
// ranking number shown to pro owners:
//
//	score = reliability + would_sail_again_pct*0.35 + min(verified, 20)*2 + band bonus
//
// The result is rounded half-up, so 166.5 becomes 167.
func (p *Profile) TrustScore() int {
	verified := p.VerifiedParticipationsCount
	if verified > 20 {
		verified = 20
	}
	score := float64(p.ReliabilityScore) +
		float64(p.WouldSailAgainPct)*0.35 +
		float64(verified)*2 +
		float64(BandBonus(p.CompetenceBand))
	return int(math.Floor(score + 0.5))
}

// ProfileCompleteness is the explicit "needs onboarding" predicate: a sailor
// may not apply to events until every required field is filled in.
type ProfileCompleteness struct {
	Complete      bool     `json:"complete"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// Completeness reports which required fields are still missing for the
// profile's type. Sailors need a display name, a location, at least one
// role and an experience level before they can apply; owners only need a
// display name.
func (p *Profile) Completeness() ProfileCompleteness {
	var missing []string
	if strings.TrimSpace(p.DisplayName) == "" {
		missing = append(missing, "display_name")
	}
	if p.IsSailor() {
		if strings.TrimSpace(p.LocationText) == "" {
			missing = append(missing, "location_text")
		}
		if len(p.Roles) == 0 {
			missing = append(missing, "roles")
		}
		if strings.TrimSpace(p.ExperienceLevel) == "" {
			missing = append(missing, "experience_level")
		}
	}
	return ProfileCompleteness{Complete: len(missing) == 0, MissingFields: missing}
}

// NeedsOnboarding is the shorthand controllers gate apply() on.
func (p *Profile) NeedsOnboarding() bool {
	return !p.Completeness().Complete
}

// EnsureProfile returns the profile for userID, creating it with defaults on
// first sign-in. Safe to call repeatedly; the unique index on user_id makes
// the read-or-insert race resolve to a single row.
func EnsureProfile(db *gorm.DB, userID uint, displayName string) (*Profile, error) {
	var profile Profile
	err := db.Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	profile = Profile{
		UserID:          userID,
		DisplayName:     displayName,
		ProfileType:     ProfileTypeSailor,
		PlanTier:        PlanTierFree,
		WillingToTravel: true,
		CompetenceBand:  BandUnknown,
	}
	if err := db.Where("user_id = ?", userID).FirstOrCreate(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// touchable timestamp helper shared by handlers that bump updated_at by hand
func nowPtr() *time.Time {
	t := time.Now().UTC()
	return &t
}
