package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCrewFull rejects an accept when the event is at capacity.
	ErrCrewFull = errors.New("crew is full")
	// ErrApplicationChanged rejects a transition whose precondition status
	// no longer matches the row.
	ErrApplicationChanged = errors.New("application changed concurrently")
)

// Application statuses. Only applied and shortlisted are actionable; the
// rest are terminal for the row, with one exception: an owner may move an
// accepted row to declined to remove a sailor from the crew after the fact.
const (
	ApplicationStatusApplied     = "applied"     // sailor asked, owner decides
	ApplicationStatusShortlisted = "shortlisted" // owner invited, sailor decides (UI label "Invited")
	ApplicationStatusAccepted    = "accepted"
	ApplicationStatusDeclined    = "declined"
	ApplicationStatusWithdrawn   = "withdrawn"
)

// Application direction records who initiated the request.
const (
	DirectionSailor = "sailor" // sailor applied
	DirectionOwner  = "owner"  // owner invited
)

// Actor identifies which side of an application is acting.
type Actor string

const (
	ActorOwner  Actor = "owner"
	ActorSailor Actor = "sailor"
)

// Application is one crew request between a sailor and an event, whichever
// party initiated it. One row per (event, sailor) pair.
type Application struct {
	gorm.Model
	EventID  uint `gorm:"not null;index;uniqueIndex:idx_applications_event_sailor" json:"event_id"`
	SailorID uint `gorm:"not null;index;uniqueIndex:idx_applications_event_sailor" json:"sailor_id"`

	Status    string `gorm:"not null;default:'applied'" json:"status"`
	Direction string `gorm:"not null;default:'sailor'" json:"direction"`

	PreferredRole string `json:"preferred_role"`
	Note          string `json:"note"`

	// Relations
	Event  *Event   `json:"event,omitempty"`
	Sailor *Profile `gorm:"foreignKey:SailorID;references:UserID" json:"sailor,omitempty"`
}

// Actionable reports whether the row still awaits a decision.
func (a *Application) Actionable() bool {
	return a.Status == ApplicationStatusApplied || a.Status == ApplicationStatusShortlisted
}

// DecidingActor returns who holds the pending decision: the opposite side of
// whoever initiated. Direction sailor (applied) means the owner decides;
// direction owner (invited) means the sailor decides.
func (a *Application) DecidingActor() Actor {
	if a.Direction == DirectionOwner {
		return ActorSailor
	}
	return ActorOwner
}

// InitiatingActor returns the side that created the row; only that side may
// withdraw it.
func (a *Application) InitiatingActor() Actor {
	if a.Direction == DirectionOwner {
		return ActorOwner
	}
	return ActorSailor
}

// CanTransition is the application state machine. A transition is legal iff
// it appears here:
//
//	applied     -> accepted | declined   (owner decides)
//	applied     -> withdrawn             (sailor retracts own application)
//	shortlisted -> accepted | declined   (sailor decides)
//	shortlisted -> withdrawn             (owner retracts invite)
//	accepted    -> declined              (owner removes sailor from crew)
//
// declined and withdrawn are terminal.
func (a *Application) CanTransition(next string, actor Actor) bool {
	switch a.Status {
	case ApplicationStatusApplied, ApplicationStatusShortlisted:
		switch next {
		case ApplicationStatusAccepted, ApplicationStatusDeclined:
			return actor == a.DecidingActor()
		case ApplicationStatusWithdrawn:
			return actor == a.InitiatingActor()
		}
	case ApplicationStatusAccepted:
		return next == ApplicationStatusDeclined && actor == ActorOwner
	}
	return false
}

// IsDecisionStatus reports whether s is one of the two statuses a deciding
// party may set through the status endpoint.
func IsDecisionStatus(s string) bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusDeclined
}

// AcceptApplication moves the row to accepted inside one transaction: the
// event row is locked FOR UPDATE, the distinct accepted count is taken under
// the lock, and only then is the status written. Two concurrent accepts
// serialize on the lock, so the second sees the first one's count and fails
// with ErrCrewFull. The write is guarded on the status the caller validated
// against; if another request moved the row first, ErrApplicationChanged is
// returned instead of overwriting. On success the row's Status is updated in
// place and a participation row exists for the sailor.
func AcceptApplication(db *gorm.DB, application *Application) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var event Event
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, application.EventID).Error; err != nil {
		tx.Rollback()
		return err
	}

	if event.CrewRequired != nil && application.Status != ApplicationStatusAccepted {
		filled, err := FilledCount(tx, event.ID)
		if err != nil {
			tx.Rollback()
			return err
		}
		if filled >= *event.CrewRequired {
			tx.Rollback()
			return ErrCrewFull
		}
	}

	res := tx.Model(&Application{}).
		Where("id = ? AND status = ?", application.ID, application.Status).
		Update("status", ApplicationStatusAccepted)
	if res.Error != nil {
		tx.Rollback()
		return res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return ErrApplicationChanged
	}

	// Accepted crew get a participation row awaiting two-sided confirmation
	if _, err := EnsureParticipation(tx, &event, application.SailorID, application.PreferredRole); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}
	application.Status = ApplicationStatusAccepted
	return nil
}
