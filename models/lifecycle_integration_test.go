//go:build integration
// +build integration

package models

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDB connects to the test database and resets every table touched by
// these tests. RESTART IDENTITY CASCADE resets sequences and wipes dependent
// rows so each test starts from a clean slate.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("Skipping integration test: TEST_DB_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Rows are seeded per test without their full relation graph
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&User{}, &Profile{}, &Boat{}, &Event{},
		&Application{}, &Participation{}, &Rating{}, &PlanEvent{},
	))
	require.NoError(t, db.Exec(
		"TRUNCATE TABLE ratings, participations, applications, events, boats, plan_events, profiles, users RESTART IDENTITY CASCADE",
	).Error)
	return db
}

func seedEvent(t *testing.T, db *gorm.DB, ownerID uint, crewRequired *int) *Event {
	t.Helper()
	event := Event{
		OwnerID:      ownerID,
		BoatID:       1,
		Title:        "Wednesday twilight race",
		Status:       EventStatusPublished,
		CrewRequired: crewRequired,
	}
	require.NoError(t, db.Create(&event).Error)
	return &event
}

func seedApplication(t *testing.T, db *gorm.DB, eventID, sailorID uint, status string) *Application {
	t.Helper()
	application := Application{
		EventID:  eventID,
		SailorID: sailorID,
		Status:   status,
	}
	require.NoError(t, db.Create(&application).Error)
	return &application
}

// A confirm arriving after the row is already verified must not drop the
// other party's flag or clear verified_at: starting from a row seeded with
// owner_confirmed=true and a completed sail, the sailor's confirm verifies
// it, and the owner re-confirming afterwards leaves everything in place.
func TestConfirmParticipation_ReconfirmKeepsVerification(t *testing.T) {
	db := setupDB(t)

	const ownerID, sailorID = 1, 2
	event := seedEvent(t, db, ownerID, nil)
	seeded := Participation{
		EventID:          event.ID,
		OwnerID:          ownerID,
		SailorID:         sailorID,
		OwnerConfirmed:   true,
		CompletionStatus: CompletionCompleted,
	}
	require.NoError(t, db.Create(&seeded).Error)

	verified, err := ConfirmParticipation(db, seeded.ID, sailorID)
	require.NoError(t, err)
	require.NotNil(t, verified.VerifiedAt)

	// the owner's late re-confirm must be a no-op, not a rollback
	again, err := ConfirmParticipation(db, seeded.ID, ownerID)
	require.NoError(t, err)
	assert.NotNil(t, again.VerifiedAt)
	assert.True(t, again.OwnerConfirmed)
	assert.True(t, again.SailorConfirmed)

	var stored Participation
	require.NoError(t, db.First(&stored, seeded.ID).Error)
	assert.NotNil(t, stored.VerifiedAt)
	assert.True(t, stored.SailorConfirmed)
}

func TestConfirmParticipation_RejectsNonParty(t *testing.T) {
	db := setupDB(t)

	event := seedEvent(t, db, 1, nil)
	p, err := EnsureParticipation(db, event, 2, "Bow")
	require.NoError(t, err)

	_, err = ConfirmParticipation(db, p.ID, 99)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestCompleteParticipation_OwnerOnly(t *testing.T) {
	db := setupDB(t)

	event := seedEvent(t, db, 1, nil)
	p, err := EnsureParticipation(db, event, 2, "Trimmer")
	require.NoError(t, err)

	_, err = CompleteParticipation(db, p.ID, 2)
	assert.ErrorIs(t, err, ErrNotOwner)

	completed, err := CompleteParticipation(db, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, CompletionCompleted, completed.CompletionStatus)
	assert.Nil(t, completed.VerifiedAt) // confirmations still missing
}

// With crew_required=1, the first accept fills the only spot and the second
// is rejected with ErrCrewFull, leaving its row untouched in applied.
func TestAcceptApplication_SecondAcceptHitsCapacity(t *testing.T) {
	db := setupDB(t)

	event := seedEvent(t, db, 1, intPtr(1))
	first := seedApplication(t, db, event.ID, 2, ApplicationStatusApplied)
	second := seedApplication(t, db, event.ID, 3, ApplicationStatusApplied)

	require.NoError(t, AcceptApplication(db, first))
	assert.Equal(t, ApplicationStatusAccepted, first.Status)

	var p Participation
	require.NoError(t, db.Where("event_id = ? AND sailor_id = ?", event.ID, first.SailorID).First(&p).Error)

	err := AcceptApplication(db, second)
	assert.ErrorIs(t, err, ErrCrewFull)

	var stored Application
	require.NoError(t, db.First(&stored, second.ID).Error)
	assert.Equal(t, ApplicationStatusApplied, stored.Status)
}

func TestAcceptApplication_StaleStatusConflicts(t *testing.T) {
	db := setupDB(t)

	event := seedEvent(t, db, 1, intPtr(5))
	application := seedApplication(t, db, event.ID, 2, ApplicationStatusApplied)

	// another request withdrew the row after this one validated it
	require.NoError(t, db.Model(&Application{}).
		Where("id = ?", application.ID).
		Update("status", ApplicationStatusWithdrawn).Error)

	err := AcceptApplication(db, application)
	assert.ErrorIs(t, err, ErrApplicationChanged)

	var stored Application
	require.NoError(t, db.First(&stored, application.ID).Error)
	assert.Equal(t, ApplicationStatusWithdrawn, stored.Status)
}

// A failed apply must not leave the marker behind: the redelivery of the same
// Stripe event id has to get a clean second attempt, and only a successful
// apply turns later deliveries into replays.
func TestApplyPlanEvent_FailedApplyAllowsRedelivery(t *testing.T) {
	db := setupDB(t)

	profile := Profile{UserID: 1, DisplayName: "Skipper", ProfileType: "owner"}
	require.NoError(t, db.Create(&profile).Error)

	marker := PlanEvent{StripeEventID: "evt_upgrade_1", EventType: "checkout.session.completed"}
	boom := errors.New("profile update failed")

	fresh, err := ApplyPlanEvent(db, &marker, func(tx *gorm.DB) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, fresh)

	var markers int64
	require.NoError(t, db.Model(&PlanEvent{}).Where("stripe_event_id = ?", "evt_upgrade_1").Count(&markers).Error)
	assert.Zero(t, markers, "marker must roll back with the failed apply")

	// redelivery succeeds
	retry := PlanEvent{StripeEventID: "evt_upgrade_1", EventType: "checkout.session.completed"}
	fresh, err = ApplyPlanEvent(db, &retry, func(tx *gorm.DB) error {
		return tx.Model(&Profile{}).Where("user_id = ?", profile.UserID).
			Update("plan_tier", PlanTierPro).Error
	})
	require.NoError(t, err)
	assert.True(t, fresh)

	var stored Profile
	require.NoError(t, db.First(&stored, profile.ID).Error)
	assert.Equal(t, PlanTierPro, stored.PlanTier)

	// replay of the applied event is skipped without running apply
	replay := PlanEvent{StripeEventID: "evt_upgrade_1", EventType: "checkout.session.completed"}
	fresh, err = ApplyPlanEvent(db, &replay, func(tx *gorm.DB) error {
		t.Fatal("apply must not run for a replayed event")
		return nil
	})
	require.NoError(t, err)
	assert.False(t, fresh)
}

// The unique index on (participation, rater) is the enforcement point for
// double submits; the second insert must fail on it.
func TestRating_DuplicateSubmitHitsUniqueIndex(t *testing.T) {
	db := setupDB(t)

	event := seedEvent(t, db, 1, nil)
	p, err := EnsureParticipation(db, event, 2, "Helm")
	require.NoError(t, err)

	rating := Rating{
		ParticipationID: p.ID,
		RaterID:         1,
		RateeID:         2,
		Direction:       DirectionOwnerToSailor,
		Reliability:     5,
		Competence:      4,
		Teamwork:        5,
		WouldSailAgain:  true,
	}
	require.NoError(t, db.Create(&rating).Error)

	duplicate := Rating{
		ParticipationID: p.ID,
		RaterID:         1,
		RateeID:         2,
		Direction:       DirectionOwnerToSailor,
		Reliability:     1,
		Competence:      1,
		Teamwork:        1,
	}
	err = db.Create(&duplicate).Error
	require.Error(t, err)
	assert.True(t,
		strings.Contains(err.Error(), "idx_ratings_participation_rater") ||
			strings.Contains(err.Error(), "duplicate key"),
		"expected unique index violation, got: %v", err)

	var n int64
	require.NoError(t, db.Model(&Rating{}).Where("participation_id = ?", p.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestFilledCounts_GroupsAcrossEvents(t *testing.T) {
	db := setupDB(t)

	capped := seedEvent(t, db, 1, intPtr(3))
	other := seedEvent(t, db, 1, intPtr(2))
	empty := seedEvent(t, db, 1, nil)

	seedApplication(t, db, capped.ID, 2, ApplicationStatusAccepted)
	seedApplication(t, db, capped.ID, 3, ApplicationStatusAccepted)
	seedApplication(t, db, capped.ID, 4, ApplicationStatusApplied)
	seedApplication(t, db, other.ID, 2, ApplicationStatusAccepted)

	counts, err := FilledCounts(db, []uint{capped.ID, other.ID, empty.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, counts[capped.ID])
	assert.Equal(t, 1, counts[other.ID])
	_, present := counts[empty.ID]
	assert.False(t, present)
}
