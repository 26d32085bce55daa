package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotParticipant is returned when the acting user is neither party.
	ErrNotParticipant = errors.New("not a party to this participation")
	// ErrNotOwner is returned when a sailor attempts an owner-only write.
	ErrNotOwner = errors.New("only the owner may do this")
)

// Participation completion statuses.
const (
	CompletionPending   = "pending"
	CompletionCompleted = "completed"
)

// Rating directions, derived from who the rater is.
const (
	DirectionOwnerToSailor = "owner_to_sailor"
	DirectionSailorToOwner = "sailor_to_owner"
)

// Participation is a confirmed crew assignment on a specific sail. It is
// created when an application reaches accepted and becomes "verified" once
// both parties confirm and the owner marks the sail completed. Verified
// participations gate ratings and feed the sailor's trust metrics.
type Participation struct {
	gorm.Model
	EventID  uint `gorm:"not null;index;uniqueIndex:idx_participations_event_sailor" json:"event_id"`
	OwnerID  uint `gorm:"not null;index" json:"owner_id"`
	SailorID uint `gorm:"not null;index;uniqueIndex:idx_participations_event_sailor" json:"sailor_id"`

	Role string `json:"role"`

	OwnerConfirmed   bool   `gorm:"default:false" json:"owner_confirmed"`
	SailorConfirmed  bool   `gorm:"default:false" json:"sailor_confirmed"`
	CompletionStatus string `gorm:"default:'pending'" json:"completion_status"`

	// Set exactly once, when the last of the three conditions becomes true.
	VerifiedAt *time.Time `json:"verified_at"`

	// Relations
	Event   *Event   `json:"event,omitempty"`
	Ratings []Rating `gorm:"foreignKey:ParticipationID" json:"ratings,omitempty"`
}

// Verified reports whether both sides have attested a completed sail.
func (p *Participation) Verified() bool {
	return p.VerifiedAt != nil
}

// IsParty reports whether userID is one of the two participants.
func (p *Participation) IsParty(userID uint) bool {
	return userID == p.OwnerID || userID == p.SailorID
}

// RefreshVerification sets verified_at the moment all three conditions hold:
// completion_status = completed, owner_confirmed and sailor_confirmed. It is
// re-checked after every contributing write, whichever order the facts arrive
// in, and never clears an existing timestamp. Returns true when this call is
// the one that verified the row.
func (p *Participation) RefreshVerification() bool {
	if p.VerifiedAt != nil {
		return false
	}
	if p.CompletionStatus == CompletionCompleted && p.OwnerConfirmed && p.SailorConfirmed {
		p.VerifiedAt = nowPtr()
		return true
	}
	return false
}

// RatingDirectionFor derives the rating direction and ratee for a rater.
// The caller never supplies these; a user who is not a party gets ok=false.
func (p *Participation) RatingDirectionFor(raterID uint) (direction string, rateeID uint, ok bool) {
	switch raterID {
	case p.OwnerID:
		return DirectionOwnerToSailor, p.SailorID, true
	case p.SailorID:
		return DirectionSailorToOwner, p.OwnerID, true
	}
	return "", 0, false
}

// ConfirmParticipation records userID's attestation. The row is read fresh
// under a FOR UPDATE lock and only then mutated, so two interleaved confirms
// serialize instead of overwriting each other's flag, and a re-confirm can
// never revert verified_at. Confirming twice is a no-op.
func ConfirmParticipation(db *gorm.DB, participationID, userID uint) (*Participation, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var p Participation
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, participationID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	switch userID {
	case p.OwnerID:
		p.OwnerConfirmed = true
	case p.SailorID:
		p.SailorConfirmed = true
	default:
		tx.Rollback()
		return nil, ErrNotParticipant
	}
	p.RefreshVerification()

	if err := tx.Model(&p).Updates(map[string]interface{}{
		"owner_confirmed":  p.OwnerConfirmed,
		"sailor_confirmed": p.SailorConfirmed,
		"verified_at":      p.VerifiedAt,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CompleteParticipation marks the sail completed. Owner only; same locked
// read-modify-write as ConfirmParticipation. Idempotent.
func CompleteParticipation(db *gorm.DB, participationID, userID uint) (*Participation, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	var p Participation
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, participationID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if !p.IsParty(userID) {
		tx.Rollback()
		return nil, ErrNotParticipant
	}
	if userID != p.OwnerID {
		tx.Rollback()
		return nil, ErrNotOwner
	}

	p.CompletionStatus = CompletionCompleted
	p.RefreshVerification()

	if err := tx.Model(&p).Updates(map[string]interface{}{
		"completion_status": p.CompletionStatus,
		"verified_at":       p.VerifiedAt,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsureParticipation creates the participation row for an accepted
// application if it does not exist yet. Idempotent on (event, sailor).
func EnsureParticipation(db *gorm.DB, event *Event, sailorID uint, role string) (*Participation, error) {
	participation := Participation{
		EventID:          event.ID,
		OwnerID:          event.OwnerID,
		SailorID:         sailorID,
		Role:             role,
		CompletionStatus: CompletionPending,
	}
	err := db.Where("event_id = ? AND sailor_id = ?", event.ID, sailorID).
		FirstOrCreate(&participation).Error
	if err != nil {
		return nil, err
	}
	return &participation, nil
}
