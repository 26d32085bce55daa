package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestSpotsLeft(t *testing.T) {
	// uncapped event: no enforcement, capped=false
	left, capped := SpotsLeft(nil, 7)
	assert.False(t, capped)
	assert.Equal(t, 0, left)

	left, capped = SpotsLeft(intPtr(5), 3)
	assert.True(t, capped)
	assert.Equal(t, 2, left)

	left, capped = SpotsLeft(intPtr(5), 5)
	assert.True(t, capped)
	assert.Equal(t, 0, left)

	// owner lowered crew_required below the accepted count: clamp, not negative
	left, capped = SpotsLeft(intPtr(2), 5)
	assert.True(t, capped)
	assert.Equal(t, 0, left)
}

func TestCanChangeEventStatus(t *testing.T) {
	assert.True(t, CanChangeEventStatus(EventStatusDraft, EventStatusPublished))
	assert.True(t, CanChangeEventStatus(EventStatusDraft, EventStatusClosed))
	assert.True(t, CanChangeEventStatus(EventStatusPublished, EventStatusClosed))

	// no way back
	assert.False(t, CanChangeEventStatus(EventStatusPublished, EventStatusDraft))
	assert.False(t, CanChangeEventStatus(EventStatusClosed, EventStatusPublished))
	assert.False(t, CanChangeEventStatus(EventStatusClosed, EventStatusDraft))
	assert.False(t, CanChangeEventStatus(EventStatusDraft, EventStatusDraft))
}

func TestIsValidEventStatus(t *testing.T) {
	assert.True(t, IsValidEventStatus(EventStatusDraft))
	assert.True(t, IsValidEventStatus(EventStatusPublished))
	assert.True(t, IsValidEventStatus(EventStatusClosed))
	assert.False(t, IsValidEventStatus("archived"))
	assert.False(t, IsValidEventStatus(""))
}
