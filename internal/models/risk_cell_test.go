package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		in   string
		want RiskLevel
	}{
		{in: "High", want: RiskHigh},
		{in: "high", want: RiskHigh},
		{in: "Very High", want: RiskVeryHigh},
		{in: "very-high", want: RiskVeryHigh},
		{in: "VERY_HIGH", want: RiskVeryHigh},
		{in: " low ", want: RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseRiskLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}

	assert.False(t, ParseRiskLevel("extreme").Valid())
}

func TestParseIncidentCategory(t *testing.T) {
	assert.Equal(t, CategoryNaturalDisaster, ParseIncidentCategory("natural-disaster"))
	assert.Equal(t, CategoryNaturalDisaster, ParseIncidentCategory(" Natural Disaster "))
	assert.Equal(t, CategoryTheft, ParseIncidentCategory("THEFT"))
	assert.False(t, ParseIncidentCategory("ufo").Valid())
}
