package models

import "gorm.io/gorm"

// PlanEvent records every Stripe webhook event we have applied, keyed by the
// Stripe event id. Replayed deliveries hit the unique index and are skipped,
// so an upgrade or downgrade is never double-applied.
type PlanEvent struct {
	gorm.Model
	StripeEventID string `gorm:"uniqueIndex;not null" json:"stripe_event_id"`
	EventType     string `gorm:"not null" json:"event_type"`
	UserID        *uint  `gorm:"index" json:"user_id,omitempty"`
	PlanTier      string `json:"plan_tier"` // tier applied by this event
}

// MarkPlanEventProcessed inserts the processed-event marker. The second
// return is false when the event id was already recorded (replay).
func MarkPlanEventProcessed(db *gorm.DB, ev *PlanEvent) (bool, error) {
	res := db.Where("stripe_event_id = ?", ev.StripeEventID).FirstOrCreate(ev)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ApplyPlanEvent runs the marker insert and the plan change in one
// transaction. A failed apply rolls the marker back too, so Stripe's
// redelivery gets a clean second attempt instead of being ACKed against a
// marker for work that never happened. Returns false for a replay.
func ApplyPlanEvent(db *gorm.DB, ev *PlanEvent, apply func(tx *gorm.DB) error) (bool, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return false, tx.Error
	}

	fresh, err := MarkPlanEventProcessed(tx, ev)
	if err != nil {
		tx.Rollback()
		return false, err
	}
	if !fresh {
		tx.Rollback()
		return false, nil
	}

	if err := apply(tx); err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		return false, err
	}
	return true, nil
}
