package risk

import (
	"errors"
	"math"
	"testing"
	"testing/quick"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/geogrid"
	"github.com/shenikar/tourist_safety/internal/models"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testCell() geogrid.Cell {
	g, _ := geogrid.NewGrid(geogrid.DefaultResolution)
	return g.CellOf(12.9716, 77.5946)
}

func incident(severity float64, age time.Duration) *models.IncidentReport {
	return &models.IncidentReport{
		ID:         uuid.New(),
		Category:   models.CategoryTheft,
		Severity:   severity,
		ReportedAt: testNow.Add(-age),
	}
}

func alerts(n int, age time.Duration) []*models.EmergencyAlert {
	out := make([]*models.EmergencyAlert, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &models.EmergencyAlert{ID: uuid.New(), Status: models.StatusNew, CreatedAt: testNow.Add(-age)})
	}
	return out
}

func TestScore_Empty(t *testing.T) {
	res := Score(DefaultParams(), Input{Cell: testCell()}, testNow)

	assert.Zero(t, res.Score)
	assert.Equal(t, models.RiskLow, res.Level)
}

func TestScore_CriticalIncidentForcesVeryHigh(t *testing.T) {
	in := Input{Cell: testCell(), Incidents: []*models.IncidentReport{incident(0.9, 0)}}

	res := Score(DefaultParams(), in, testNow)

	assert.Equal(t, 0.85, res.Score)
	assert.Equal(t, models.RiskVeryHigh, res.Level)
	assert.InDelta(t, 0.9, res.MaxIncidentSeverity, 1e-12)
}

func TestScore_SevereIncidentForcesHigh(t *testing.T) {
	in := Input{Cell: testCell(), Incidents: []*models.IncidentReport{incident(0.7, 0)}}

	res := Score(DefaultParams(), in, testNow)

	assert.Equal(t, 0.65, res.Score)
	assert.Equal(t, models.RiskHigh, res.Level)
}

func TestScore_DecayedCriticalIncidentLosesOverride(t *testing.T) {
	// 0.9 * exp(-0.01 * 48) ~= 0.557, below both severity triggers.
	in := Input{Cell: testCell(), Incidents: []*models.IncidentReport{incident(0.9, 48*time.Hour)}}

	res := Score(DefaultParams(), in, testNow)

	assert.InDelta(t, 0.9*math.Exp(-0.48), res.MaxIncidentSeverity, 1e-12)
	assert.InDelta(t, 0.4*0.9*math.Exp(-0.48), res.Score, 1e-12)
	assert.Equal(t, models.RiskLow, res.Level)
}

func TestScore_AlertClusterSaturates(t *testing.T) {
	in := Input{Cell: testCell(), Alerts: alerts(3, time.Hour)}

	res := Score(DefaultParams(), in, testNow)

	assert.Equal(t, 3, res.AlertCount)
	assert.Equal(t, 1.0, res.AlertScore)
	assert.Equal(t, 0.85, res.Score)
	assert.True(t, res.Level.AtLeast(models.RiskHigh))
}

func TestScore_PartialAlertCluster(t *testing.T) {
	in := Input{Cell: testCell(), Alerts: alerts(2, time.Hour)}

	res := Score(DefaultParams(), in, testNow)

	assert.InDelta(t, 0.5*2.0/3.0, res.Score, 1e-12)
	assert.Equal(t, models.RiskMedium, res.Level)
}

func TestScore_IgnoresSignalsOutsideLookback(t *testing.T) {
	in := Input{
		Cell:      testCell(),
		Alerts:    alerts(5, 8*24*time.Hour),
		Incidents: []*models.IncidentReport{incident(1, 8*24*time.Hour)},
	}

	res := Score(DefaultParams(), in, testNow)

	assert.Zero(t, res.AlertCount)
	assert.Zero(t, res.Score)
}

func TestScore_IgnoresFutureDatedSignals(t *testing.T) {
	in := Input{
		Cell:      testCell(),
		Alerts:    alerts(3, -2*time.Hour),
		Incidents: []*models.IncidentReport{incident(0.9, -48*time.Hour)},
	}

	res := Score(DefaultParams(), in, testNow)

	assert.Zero(t, res.AlertCount)
	assert.Zero(t, res.MaxIncidentSeverity)
	assert.Zero(t, res.Score)
	assert.Equal(t, models.RiskLow, res.Level)
}

func TestScore_IncidentSumIsClamped(t *testing.T) {
	in := Input{Cell: testCell()}
	for i := 0; i < 5; i++ {
		in.Incidents = append(in.Incidents, incident(0.5, time.Hour))
	}

	res := Score(DefaultParams(), in, testNow)

	assert.Equal(t, 1.0, res.IncidentScore)
}

func TestScore_HistoryDecays(t *testing.T) {
	prev := &models.RiskCell{CellID: testCell().ID, Score: 0.8, UpdatedAt: testNow.Add(-time.Hour)}

	res := Score(DefaultParams(), Input{Cell: testCell(), Previous: prev}, testNow)

	assert.InDelta(t, 0.8*math.Exp(-0.1), res.HistoryScore, 1e-12)
	assert.InDelta(t, 0.1*0.8*math.Exp(-0.1), res.Score, 1e-12)
	assert.Equal(t, 0.8, res.BasisScore)
	assert.Equal(t, prev.UpdatedAt, res.BasisAt)
}

func TestScore_RecomputeAtSameInstantIsBitIdentical(t *testing.T) {
	p := DefaultParams()
	prev := &models.RiskCell{CellID: testCell().ID, Score: 0.42, UpdatedAt: testNow.Add(-30 * time.Minute)}
	in := Input{
		Cell:      testCell(),
		Previous:  prev,
		Incidents: []*models.IncidentReport{incident(0.3, 2*time.Hour), incident(0.2, 20*time.Hour)},
		Alerts:    alerts(1, time.Hour),
	}

	first := Score(p, in, testNow)

	in.Previous = &models.RiskCell{
		CellID:     prev.CellID,
		Score:      first.Score,
		Level:      first.Level,
		BasisScore: first.BasisScore,
		BasisAt:    first.BasisAt,
		UpdatedAt:  testNow,
	}
	second := Score(p, in, testNow)

	assert.Equal(t, math.Float64bits(first.Score), math.Float64bits(second.Score))
	assert.Equal(t, first.Level, second.Level)
}

func TestScore_DecaysMonotonicallyWithoutSignals(t *testing.T) {
	p := DefaultParams()
	cell := &models.RiskCell{CellID: testCell().ID, Score: 0.9, UpdatedAt: testNow}

	now := testNow
	for i := 0; i < 24; i++ {
		now = now.Add(30 * time.Minute)
		res := Score(p, Input{Cell: testCell(), Previous: cell}, now)

		require.Less(t, res.Score, cell.Score, "step %d must decay", i)
		require.GreaterOrEqual(t, res.Score, 0.0)

		cell = &models.RiskCell{CellID: cell.CellID, Score: res.Score, BasisScore: res.BasisScore, BasisAt: res.BasisAt, UpdatedAt: now}
	}
}

func TestScore_BoundedAndLevelMonotonic(t *testing.T) {
	p := DefaultParams()
	f := func(severities []float64, ages []uint16, alertCount uint8, prevScore float64, prevAge uint16) bool {
		in := Input{Cell: testCell()}
		for i, s := range severities {
			age := time.Duration(0)
			if i < len(ages) {
				age = time.Duration(ages[i]%200) * time.Hour
			}
			in.Incidents = append(in.Incidents, incident(s, age))
		}
		in.Alerts = alerts(int(alertCount%10), time.Hour)
		in.Previous = &models.RiskCell{Score: prevScore, UpdatedAt: testNow.Add(-time.Duration(prevAge) * time.Minute)}

		res := Score(p, in, testNow)
		if res.Score < 0 || res.Score > 1 {
			return false
		}
		if res.Level != LevelOf(p, res.Score) {
			return false
		}
		if res.Level.AtLeast(models.RiskHigh) && res.Score < p.HighThreshold {
			return false
		}
		if res.Level == models.RiskLow && res.Score >= p.MediumThreshold {
			return false
		}
		if res.AlertCount >= p.AlertSaturation && !res.Level.AtLeast(models.RiskHigh) {
			return false
		}
		return true
	}

	require.NoError(t, quick.Check(f, nil))
}

func TestLevelOf_Thresholds(t *testing.T) {
	p := DefaultParams()
	cases := map[float64]models.RiskLevel{
		0:      models.RiskLow,
		0.2999: models.RiskLow,
		0.3:    models.RiskMedium,
		0.5999: models.RiskMedium,
		0.6:    models.RiskHigh,
		0.7999: models.RiskHigh,
		0.8:    models.RiskVeryHigh,
		1:      models.RiskVeryHigh,
	}
	for score, want := range cases {
		assert.Equal(t, want, LevelOf(p, score), "score %v", score)
	}
}

func TestParams_Validate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.HistoryWeight = 0.3
	assert.True(t, errors.Is(p.Validate(), apperr.ErrConfig))

	p = DefaultParams()
	p.IncidentWeight, p.AlertWeight = 0.5, 0.4
	assert.True(t, errors.Is(p.Validate(), apperr.ErrConfig))

	p = DefaultParams()
	p.GridResolution = 0
	assert.True(t, errors.Is(p.Validate(), apperr.ErrConfig))
}

func TestPlaceholderName(t *testing.T) {
	name := PlaceholderName(geogrid.Point{Lat: 12.97125, Lng: 77.59575})

	assert.Equal(t, "Zone [12.971, 77.596]", name)
	assert.True(t, IsPlaceholderName(name))
	assert.True(t, IsPlaceholderName(""))
	assert.False(t, IsPlaceholderName("Adajan"))
}
