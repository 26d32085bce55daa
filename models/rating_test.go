package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTrustMetrics(t *testing.T) {
	tests := []struct {
		name            string
		in              TrustInputs
		wantReliability int
		wantWouldAgain  int
		wantBand        string
	}{
		{
			name:     "no ratings",
			in:       TrustInputs{},
			wantBand: BandUnknown,
		},
		{
			name: "below band threshold stays unknown",
			in: TrustInputs{
				RatingCount:       2,
				AvgReliability:    5,
				AvgCompetence:     5,
				WouldSailAgainYes: 2,
			},
			wantReliability: 100,
			wantWouldAgain:  100,
			wantBand:        BandUnknown,
		},
		{
			name: "high band at competence four",
			in: TrustInputs{
				RatingCount:       3,
				AvgReliability:    4.5,
				AvgCompetence:     4.0,
				WouldSailAgainYes: 2,
			},
			wantReliability: 90,
			wantWouldAgain:  67,
			wantBand:        BandHigh,
		},
		{
			name: "medium band at competence three",
			in: TrustInputs{
				RatingCount:       4,
				AvgReliability:    3.0,
				AvgCompetence:     3.2,
				WouldSailAgainYes: 1,
			},
			wantReliability: 60,
			wantWouldAgain:  25,
			wantBand:        BandMedium,
		},
		{
			name: "low band below three",
			in: TrustInputs{
				RatingCount:       5,
				AvgReliability:    2.0,
				AvgCompetence:     2.9,
				WouldSailAgainYes: 0,
			},
			wantReliability: 40,
			wantWouldAgain:  0,
			wantBand:        BandLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reliability, wouldAgain, band := DeriveTrustMetrics(tt.in)
			assert.Equal(t, tt.wantReliability, reliability)
			assert.Equal(t, tt.wantWouldAgain, wouldAgain)
			assert.Equal(t, tt.wantBand, band)
		})
	}
}
