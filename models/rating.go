package models

import (
	"math"

	"gorm.io/gorm"
)

// Rating is one party's structured 1-5 review of the other after a verified
// participation. At most one rating per (participation, rater); append-only,
// no edit or delete path.
type Rating struct {
	gorm.Model
	ParticipationID uint `gorm:"not null;index;uniqueIndex:idx_ratings_participation_rater" json:"participation_id"`
	RaterID         uint `gorm:"not null;uniqueIndex:idx_ratings_participation_rater" json:"rater_id"`
	RateeID         uint `gorm:"not null;index" json:"ratee_id"`

	Direction string `gorm:"not null" json:"direction"` // owner_to_sailor, sailor_to_owner

	Reliability    int  `gorm:"not null" json:"reliability" validate:"min=1,max=5"`
	Competence     int  `gorm:"not null" json:"competence" validate:"min=1,max=5"`
	Teamwork       int  `gorm:"not null" json:"teamwork" validate:"min=1,max=5"`
	WouldSailAgain bool `json:"would_sail_again"`

	// Extended dimensions, left null by the simple submit path.
	Organisation  *int `json:"organisation,omitempty"`
	BoatReadiness *int `json:"boat_readiness,omitempty"`
	SafetyCulture *int `json:"safety_culture,omitempty"`
}

// AlreadyRated is the pre-submission existence check on
// (participation, rater). It is a UX shortcut only; the unique index is the
// enforcement point under concurrent double-submit.
func AlreadyRated(db *gorm.DB, participationID, raterID uint) (bool, error) {
	var n int64
	err := db.Model(&Rating{}).
		Where("participation_id = ? AND rater_id = ?", participationID, raterID).
		Count(&n).Error
	return n > 0, err
}

// TrustInputs are the aggregates recomputation derives a sailor's metrics
// from: all owner_to_sailor ratings the sailor has received on verified
// participations.
type TrustInputs struct {
	RatingCount        int
	AvgReliability     float64 // 1..5
	AvgCompetence      float64 // 1..5
	WouldSailAgainYes  int
	VerifiedSailsCount int
}

// minimum ratings before we commit to a competence band
const bandMinRatings = 3

// DeriveTrustMetrics maps rating aggregates onto the profile metric fields.
// Reliability maps the 1-5 average onto 0-100 (x20, rounded half-up);
// would-sail-again is the plain percentage of yes votes; the band needs at
// least three ratings, then cuts at 4.0 (high) and 3.0 (medium).
func DeriveTrustMetrics(in TrustInputs) (reliabilityScore, wouldSailAgainPct int, band string) {
	if in.RatingCount == 0 {
		return 0, 0, BandUnknown
	}
	reliabilityScore = int(math.Floor(in.AvgReliability*20 + 0.5))
	if reliabilityScore > 100 {
		reliabilityScore = 100
	}
	wouldSailAgainPct = int(math.Floor(float64(in.WouldSailAgainYes)/float64(in.RatingCount)*100 + 0.5))

	band = BandUnknown
	if in.RatingCount >= bandMinRatings {
		switch {
		case in.AvgCompetence >= 4.0:
			band = BandHigh
		case in.AvgCompetence >= 3.0:
			band = BandMedium
		default:
			band = BandLow
		}
	}
	return reliabilityScore, wouldSailAgainPct, band
}

// RecomputeSailorTrust refreshes a sailor's derived metrics from every
// owner_to_sailor rating they have received on verified participations.
// Callers run it inside the same transaction as the rating insert.
func RecomputeSailorTrust(tx *gorm.DB, sailorID uint) error {
	var in TrustInputs

	row := tx.Model(&Rating{}).
		Select("COUNT(*), COALESCE(AVG(reliability), 0), COALESCE(AVG(competence), 0), COALESCE(SUM(CASE WHEN would_sail_again THEN 1 ELSE 0 END), 0)").
		Joins("JOIN participations ON participations.id = ratings.participation_id").
		Where("ratings.ratee_id = ? AND ratings.direction = ? AND participations.verified_at IS NOT NULL",
			sailorID, DirectionOwnerToSailor).
		Row()
	if err := row.Scan(&in.RatingCount, &in.AvgReliability, &in.AvgCompetence, &in.WouldSailAgainYes); err != nil {
		return err
	}

	var verified int64
	if err := tx.Model(&Participation{}).
		Where("sailor_id = ? AND verified_at IS NOT NULL", sailorID).
		Count(&verified).Error; err != nil {
		return err
	}

	reliability, wouldAgain, band := DeriveTrustMetrics(in)
	return tx.Model(&Profile{}).
		Where("user_id = ?", sailorID).
		Updates(map[string]interface{}{
			"reliability_score":             reliability,
			"would_sail_again_pct":          wouldAgain,
			"verified_participations_count": int(verified),
			"competence_band":               band,
		}).Error
}
