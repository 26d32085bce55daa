package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshVerification_OrderIndependent(t *testing.T) {
	// the three facts can arrive in any order; only the last one verifies
	orders := [][]string{
		{"owner", "sailor", "complete"},
		{"owner", "complete", "sailor"},
		{"sailor", "owner", "complete"},
		{"sailor", "complete", "owner"},
		{"complete", "owner", "sailor"},
		{"complete", "sailor", "owner"},
	}

	for _, order := range orders {
		p := Participation{CompletionStatus: CompletionPending}
		for i, step := range order {
			switch step {
			case "owner":
				p.OwnerConfirmed = true
			case "sailor":
				p.SailorConfirmed = true
			case "complete":
				p.CompletionStatus = CompletionCompleted
			}
			verified := p.RefreshVerification()
			if i < len(order)-1 {
				assert.False(t, verified, "order %v step %d", order, i)
				assert.False(t, p.Verified())
			} else {
				assert.True(t, verified, "order %v final step", order)
				assert.True(t, p.Verified())
			}
		}
	}
}

func TestRefreshVerification_Monotonic(t *testing.T) {
	p := Participation{
		OwnerConfirmed:   true,
		SailorConfirmed:  true,
		CompletionStatus: CompletionCompleted,
	}
	require.True(t, p.RefreshVerification())
	first := p.VerifiedAt
	require.NotNil(t, first)

	// repeated calls never re-stamp or clear
	time.Sleep(time.Millisecond)
	assert.False(t, p.RefreshVerification())
	assert.Equal(t, first, p.VerifiedAt)
}

func TestRefreshVerification_PartialFactsDoNotVerify(t *testing.T) {
	cases := []Participation{
		{OwnerConfirmed: true, SailorConfirmed: true, CompletionStatus: CompletionPending},
		{OwnerConfirmed: true, CompletionStatus: CompletionCompleted},
		{SailorConfirmed: true, CompletionStatus: CompletionCompleted},
		{},
	}
	for i, p := range cases {
		assert.False(t, p.RefreshVerification(), "case %d", i)
		assert.Nil(t, p.VerifiedAt, "case %d", i)
	}
}

func TestRatingDirectionFor(t *testing.T) {
	p := Participation{OwnerID: 10, SailorID: 20}

	direction, ratee, ok := p.RatingDirectionFor(10)
	require.True(t, ok)
	assert.Equal(t, DirectionOwnerToSailor, direction)
	assert.Equal(t, uint(20), ratee)

	direction, ratee, ok = p.RatingDirectionFor(20)
	require.True(t, ok)
	assert.Equal(t, DirectionSailorToOwner, direction)
	assert.Equal(t, uint(10), ratee)

	_, _, ok = p.RatingDirectionFor(30)
	assert.False(t, ok)
}

func TestIsParty(t *testing.T) {
	p := Participation{OwnerID: 10, SailorID: 20}
	assert.True(t, p.IsParty(10))
	assert.True(t, p.IsParty(20))
	assert.False(t, p.IsParty(30))
}
