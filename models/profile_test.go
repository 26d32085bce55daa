package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrustScore(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    int
	}{
		{
			name:    "zero profile",
			profile: Profile{CompetenceBand: BandUnknown},
			want:    0,
		},
		{
			name: "half rounds up",
			profile: Profile{
				ReliabilityScore:            90,
				WouldSailAgainPct:           90, // 31.5
				VerifiedParticipationsCount: 15, // 30
				CompetenceBand:              BandHigh,
			},
			want: 167, // 90 + 31.5 + 30 + 15 = 166.5
		},
		{
			name: "verified count caps at twenty",
			profile: Profile{
				ReliabilityScore:            50,
				VerifiedParticipationsCount: 200,
				CompetenceBand:              BandUnknown,
			},
			want: 90, // 50 + 20*2
		},
		{
			name: "low band subtracts",
			profile: Profile{
				ReliabilityScore: 60,
				CompetenceBand:   BandLow,
			},
			want: 55,
		},
		{
			name: "medium band adds seven",
			profile: Profile{
				ReliabilityScore:  40,
				WouldSailAgainPct: 100, // 35
				CompetenceBand:    BandMedium,
			},
			want: 82,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.profile.TrustScore())
		})
	}
}

func TestBandBonus(t *testing.T) {
	assert.Equal(t, 15, BandBonus(BandHigh))
	assert.Equal(t, 7, BandBonus(BandMedium))
	assert.Equal(t, -5, BandBonus(BandLow))
	assert.Equal(t, 0, BandBonus(BandUnknown))
	assert.Equal(t, 0, BandBonus(""))
	assert.Equal(t, 15, BandBonus("HIGH"))
}

func TestNormalizePlanTier(t *testing.T) {
	assert.Equal(t, PlanTierPro, NormalizePlanTier("pro"))
	assert.Equal(t, PlanTierPro, NormalizePlanTier("paid"))
	assert.Equal(t, PlanTierPro, NormalizePlanTier(" Pro "))
	assert.Equal(t, PlanTierFree, NormalizePlanTier("free"))
	assert.Equal(t, PlanTierFree, NormalizePlanTier(""))
	assert.Equal(t, PlanTierFree, NormalizePlanTier("enterprise"))
}

func TestIsPro(t *testing.T) {
	assert.True(t, (&Profile{PlanTier: "pro"}).IsPro())
	assert.True(t, (&Profile{PlanTier: "paid"}).IsPro())
	assert.False(t, (&Profile{PlanTier: "free"}).IsPro())
	assert.False(t, (&Profile{}).IsPro())
}

func TestCompleteness_Sailor(t *testing.T) {
	p := Profile{ProfileType: ProfileTypeSailor}
	got := p.Completeness()
	assert.False(t, got.Complete)
	assert.ElementsMatch(t,
		[]string{"display_name", "location_text", "roles", "experience_level"},
		got.MissingFields)

	p = Profile{
		ProfileType:     ProfileTypeSailor,
		DisplayName:     "Ada",
		LocationText:    "Kiel",
		Roles:           []string{"Trimmer"},
		ExperienceLevel: "intermediate",
	}
	got = p.Completeness()
	assert.True(t, got.Complete)
	assert.Empty(t, got.MissingFields)
	assert.False(t, p.NeedsOnboarding())
}

func TestCompleteness_OwnerOnlyNeedsName(t *testing.T) {
	p := Profile{ProfileType: ProfileTypeOwner}
	got := p.Completeness()
	assert.False(t, got.Complete)
	assert.Equal(t, []string{"display_name"}, got.MissingFields)

	p.DisplayName = "Skipper Sam"
	assert.True(t, p.Completeness().Complete)
}

func TestCompleteness_BothRequiresSailorFields(t *testing.T) {
	p := Profile{ProfileType: ProfileTypeBoth, DisplayName: "Ada"}
	got := p.Completeness()
	assert.False(t, got.Complete)
	assert.Contains(t, got.MissingFields, "roles")

	// whitespace-only fields do not count as filled
	p.LocationText = "   "
	got = p.Completeness()
	assert.Contains(t, got.MissingFields, "location_text")
}

func TestProfileTypePredicates(t *testing.T) {
	assert.True(t, (&Profile{ProfileType: ProfileTypeOwner}).IsOwner())
	assert.True(t, (&Profile{ProfileType: ProfileTypeBoth}).IsOwner())
	assert.False(t, (&Profile{ProfileType: ProfileTypeSailor}).IsOwner())

	assert.True(t, (&Profile{ProfileType: ProfileTypeSailor}).IsSailor())
	assert.True(t, (&Profile{ProfileType: ProfileTypeBoth}).IsSailor())
	assert.False(t, (&Profile{ProfileType: ProfileTypeOwner}).IsSailor())
}
