package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crewmatch/models"
)

func sailor(userID uint, reliability, wouldAgain, verified int, band string) *models.Profile {
	return &models.Profile{
		UserID:                      userID,
		DisplayName:                 "Sailor",
		ReliabilityScore:            reliability,
		WouldSailAgainPct:           wouldAgain,
		VerifiedParticipationsCount: verified,
		CompetenceBand:              band,
	}
}

func TestBuildApplicantList_FreeTierOmitsMetrics(t *testing.T) {
	apps := []models.Application{
		{
			Model:    gorm.Model{ID: 1},
			SailorID: 10,
			Status:   models.ApplicationStatusApplied,
			Sailor:   sailor(10, 90, 90, 15, models.BandHigh),
		},
	}

	got := BuildApplicantList(apps, false)
	require.Len(t, got, 1)

	assert.Equal(t, uint(10), got[0].SailorID)
	assert.Equal(t, "Sailor", got[0].DisplayName)
	assert.Nil(t, got[0].ReliabilityScore)
	assert.Nil(t, got[0].WouldSailAgainPct)
	assert.Nil(t, got[0].VerifiedParticipationsCount)
	assert.Nil(t, got[0].CompetenceBand)
	assert.Nil(t, got[0].Score)
}

func TestBuildApplicantList_ProTierAttachesScoreAndSorts(t *testing.T) {
	apps := []models.Application{
		{Model: gorm.Model{ID: 1}, SailorID: 10, Sailor: sailor(10, 50, 0, 0, models.BandUnknown)},
		{Model: gorm.Model{ID: 2}, SailorID: 20, Sailor: sailor(20, 90, 90, 15, models.BandHigh)},
		{Model: gorm.Model{ID: 3}, SailorID: 30, Sailor: sailor(30, 70, 0, 0, models.BandUnknown)},
	}

	got := BuildApplicantList(apps, true)
	require.Len(t, got, 3)

	// descending by score: 167, 70, 50
	assert.Equal(t, uint(20), got[0].SailorID)
	assert.Equal(t, uint(30), got[1].SailorID)
	assert.Equal(t, uint(10), got[2].SailorID)

	require.NotNil(t, got[0].Score)
	assert.Equal(t, 167, *got[0].Score)
	require.NotNil(t, got[0].CompetenceBand)
	assert.Equal(t, models.BandHigh, *got[0].CompetenceBand)
}

func TestBuildApplicantList_ProTierStableOnTies(t *testing.T) {
	apps := []models.Application{
		{Model: gorm.Model{ID: 1}, SailorID: 10, Sailor: sailor(10, 60, 0, 0, models.BandUnknown)},
		{Model: gorm.Model{ID: 2}, SailorID: 20, Sailor: sailor(20, 60, 0, 0, models.BandUnknown)},
		{Model: gorm.Model{ID: 3}, SailorID: 30, Sailor: sailor(30, 60, 0, 0, models.BandUnknown)},
	}

	got := BuildApplicantList(apps, true)
	require.Len(t, got, 3)

	// equal scores keep arrival order
	assert.Equal(t, uint(10), got[0].SailorID)
	assert.Equal(t, uint(20), got[1].SailorID)
	assert.Equal(t, uint(30), got[2].SailorID)
}

func TestBuildApplicantList_MissingSailorProfile(t *testing.T) {
	apps := []models.Application{
		{Model: gorm.Model{ID: 1}, SailorID: 10, Status: models.ApplicationStatusApplied},
	}

	got := BuildApplicantList(apps, true)
	require.Len(t, got, 1)
	assert.Equal(t, uint(10), got[0].SailorID)
	assert.Empty(t, got[0].DisplayName)
	assert.Nil(t, got[0].Score)
}

func TestBuildApplicantList_Empty(t *testing.T) {
	assert.Empty(t, BuildApplicantList(nil, true))
	assert.Empty(t, BuildApplicantList([]models.Application{}, false))
}
