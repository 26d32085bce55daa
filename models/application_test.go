package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_AppliedRow(t *testing.T) {
	app := &Application{Status: ApplicationStatusApplied, Direction: DirectionSailor}

	// owner holds the decision
	assert.True(t, app.CanTransition(ApplicationStatusAccepted, ActorOwner))
	assert.True(t, app.CanTransition(ApplicationStatusDeclined, ActorOwner))
	assert.False(t, app.CanTransition(ApplicationStatusAccepted, ActorSailor))
	assert.False(t, app.CanTransition(ApplicationStatusDeclined, ActorSailor))

	// only the sailor who applied may withdraw
	assert.True(t, app.CanTransition(ApplicationStatusWithdrawn, ActorSailor))
	assert.False(t, app.CanTransition(ApplicationStatusWithdrawn, ActorOwner))

	// no sideways moves
	assert.False(t, app.CanTransition(ApplicationStatusShortlisted, ActorOwner))
	assert.False(t, app.CanTransition(ApplicationStatusApplied, ActorOwner))
}

func TestCanTransition_InvitedRow(t *testing.T) {
	app := &Application{Status: ApplicationStatusShortlisted, Direction: DirectionOwner}

	// sailor holds the decision on an invite
	assert.True(t, app.CanTransition(ApplicationStatusAccepted, ActorSailor))
	assert.True(t, app.CanTransition(ApplicationStatusDeclined, ActorSailor))
	assert.False(t, app.CanTransition(ApplicationStatusAccepted, ActorOwner))
	assert.False(t, app.CanTransition(ApplicationStatusDeclined, ActorOwner))

	// only the owner who invited may withdraw
	assert.True(t, app.CanTransition(ApplicationStatusWithdrawn, ActorOwner))
	assert.False(t, app.CanTransition(ApplicationStatusWithdrawn, ActorSailor))
}

func TestCanTransition_AcceptedRow(t *testing.T) {
	app := &Application{Status: ApplicationStatusAccepted, Direction: DirectionSailor}

	// the one legal move out of accepted: owner removes the sailor
	assert.True(t, app.CanTransition(ApplicationStatusDeclined, ActorOwner))
	assert.False(t, app.CanTransition(ApplicationStatusDeclined, ActorSailor))
	assert.False(t, app.CanTransition(ApplicationStatusWithdrawn, ActorSailor))
	assert.False(t, app.CanTransition(ApplicationStatusWithdrawn, ActorOwner))
	assert.False(t, app.CanTransition(ApplicationStatusApplied, ActorOwner))
}

func TestCanTransition_TerminalRows(t *testing.T) {
	for _, status := range []string{ApplicationStatusDeclined, ApplicationStatusWithdrawn} {
		app := &Application{Status: status, Direction: DirectionSailor}
		for _, next := range []string{
			ApplicationStatusApplied, ApplicationStatusShortlisted,
			ApplicationStatusAccepted, ApplicationStatusDeclined, ApplicationStatusWithdrawn,
		} {
			assert.False(t, app.CanTransition(next, ActorOwner), "%s -> %s (owner)", status, next)
			assert.False(t, app.CanTransition(next, ActorSailor), "%s -> %s (sailor)", status, next)
		}
	}
}

func TestDecidingAndInitiatingActor(t *testing.T) {
	applied := &Application{Direction: DirectionSailor}
	assert.Equal(t, ActorOwner, applied.DecidingActor())
	assert.Equal(t, ActorSailor, applied.InitiatingActor())

	invited := &Application{Direction: DirectionOwner}
	assert.Equal(t, ActorSailor, invited.DecidingActor())
	assert.Equal(t, ActorOwner, invited.InitiatingActor())
}

func TestActionable(t *testing.T) {
	assert.True(t, (&Application{Status: ApplicationStatusApplied}).Actionable())
	assert.True(t, (&Application{Status: ApplicationStatusShortlisted}).Actionable())
	assert.False(t, (&Application{Status: ApplicationStatusAccepted}).Actionable())
	assert.False(t, (&Application{Status: ApplicationStatusDeclined}).Actionable())
	assert.False(t, (&Application{Status: ApplicationStatusWithdrawn}).Actionable())
}

func TestIsDecisionStatus(t *testing.T) {
	assert.True(t, IsDecisionStatus(ApplicationStatusAccepted))
	assert.True(t, IsDecisionStatus(ApplicationStatusDeclined))
	assert.False(t, IsDecisionStatus(ApplicationStatusWithdrawn))
	assert.False(t, IsDecisionStatus(ApplicationStatusApplied))
	assert.False(t, IsDecisionStatus("banana"))
}
