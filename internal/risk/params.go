package risk

import (
	"math"
	"time"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/geogrid"
)

// Params - параметры модели риска
type Params struct {
	GridResolution float64

	Lookback             time.Duration
	IncidentRadiusMeters float64
	AlertRadiusMeters    float64

	// число тревог, дающее полный сигнал
	AlertSaturation int

	// скорости затухания, 1/ч
	IncidentDecay float64
	HistoryDecay  float64

	IncidentWeight float64
	AlertWeight    float64
	HistoryWeight  float64

	MediumThreshold   float64
	HighThreshold     float64
	VeryHighThreshold float64

	CriticalSeverity float64
	SevereSeverity   float64
	CriticalFloor    float64
	SevereFloor      float64
}

// DefaultParams возвращает параметры по умолчанию
func DefaultParams() Params {
	return Params{
		GridResolution:       geogrid.DefaultResolution,
		Lookback:             7 * 24 * time.Hour,
		IncidentRadiusMeters: 3500,
		AlertRadiusMeters:    2000,
		AlertSaturation:      3,
		IncidentDecay:        0.01,
		HistoryDecay:         0.1,
		IncidentWeight:       0.40,
		AlertWeight:          0.50,
		HistoryWeight:        0.10,
		MediumThreshold:      0.3,
		HighThreshold:        0.6,
		VeryHighThreshold:    0.8,
		CriticalSeverity:     0.8,
		SevereSeverity:       0.6,
		CriticalFloor:        0.85,
		SevereFloor:          0.65,
	}
}

// Validate проверяет согласованность параметров
func (p Params) Validate() error {
	const op = "risk.params"
	if _, err := geogrid.NewGrid(p.GridResolution); err != nil {
		return err
	}
	if p.Lookback <= 0 {
		return apperr.Config(op, "lookback must be positive")
	}
	if p.IncidentRadiusMeters <= 0 || p.AlertRadiusMeters <= 0 {
		return apperr.Config(op, "search radii must be positive")
	}
	if p.AlertSaturation <= 0 {
		return apperr.Config(op, "alert saturation must be positive")
	}
	if p.IncidentDecay <= 0 || p.HistoryDecay <= 0 {
		return apperr.Config(op, "decay rates must be positive")
	}
	for _, w := range []float64{p.IncidentWeight, p.AlertWeight, p.HistoryWeight} {
		if w < 0 || w > 1 {
			return apperr.Config(op, "weights must be within [0, 1]")
		}
	}
	if sum := p.IncidentWeight + p.AlertWeight + p.HistoryWeight; math.Abs(sum-1) > 1e-9 {
		return apperr.Config(op, "weights must sum to 1, got %v", sum)
	}
	if p.AlertWeight <= p.IncidentWeight {
		return apperr.Config(op, "alert weight must dominate incident weight")
	}
	if !(0 < p.MediumThreshold && p.MediumThreshold < p.HighThreshold && p.HighThreshold < p.VeryHighThreshold && p.VeryHighThreshold <= 1) {
		return apperr.Config(op, "level thresholds must be increasing within (0, 1]")
	}
	if p.CriticalFloor < p.VeryHighThreshold || p.SevereFloor < p.HighThreshold || p.CriticalFloor > 1 {
		return apperr.Config(op, "override floors must reach the level they force")
	}
	if p.SevereSeverity >= p.CriticalSeverity {
		return apperr.Config(op, "severe severity must be below critical severity")
	}
	return nil
}
