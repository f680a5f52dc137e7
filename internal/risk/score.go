package risk

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shenikar/tourist_safety/internal/geogrid"
	"github.com/shenikar/tourist_safety/internal/models"
)

const placeholderPrefix = "Zone ["

// Input - данные для оценки одной ячейки. Инциденты и тревоги уже отобраны
// по радиусу, окно давности Score применяет сам.
type Input struct {
	Cell      geogrid.Cell
	Incidents []*models.IncidentReport
	Alerts    []*models.EmergencyAlert
	Previous  *models.RiskCell
}

// Result - результат оценки ячейки
type Result struct {
	Score               float64
	Level               models.RiskLevel
	IncidentScore       float64
	AlertScore          float64
	HistoryScore        float64
	AlertCount          int
	MaxIncidentSeverity float64
	BasisScore          float64
	BasisAt             time.Time
}

// Score оценивает ячейку на момент now. Чистая функция.
func Score(p Params, in Input, now time.Time) Result {
	var res Result
	cutoff := now.Add(-p.Lookback)

	for _, a := range in.Alerts {
		if a == nil || a.CreatedAt.Before(cutoff) || a.CreatedAt.After(now) {
			continue
		}
		res.AlertCount++
	}
	res.AlertScore = math.Min(float64(res.AlertCount)/float64(p.AlertSaturation), 1)

	total := 0.0
	for _, inc := range in.Incidents {
		if inc == nil || inc.ReportedAt.Before(cutoff) || inc.ReportedAt.After(now) {
			continue
		}
		current := clamp(inc.Severity) * math.Exp(-p.IncidentDecay*hoursBetween(inc.ReportedAt, now))
		if current > res.MaxIncidentSeverity {
			res.MaxIncidentSeverity = current
		}
		total += current
	}
	res.IncidentScore = clamp(total)

	res.BasisScore, res.BasisAt = historyBasis(in.Previous, now)
	if !res.BasisAt.IsZero() {
		res.HistoryScore = clamp(res.BasisScore) * math.Exp(-p.HistoryDecay*hoursBetween(res.BasisAt, now))
	}

	raw := p.IncidentWeight*res.IncidentScore + p.AlertWeight*res.AlertScore + p.HistoryWeight*res.HistoryScore

	if res.AlertCount >= p.AlertSaturation {
		raw = math.Max(raw, p.CriticalFloor)
	}
	if res.MaxIncidentSeverity > p.CriticalSeverity {
		raw = math.Max(raw, p.CriticalFloor)
	} else if res.MaxIncidentSeverity > p.SevereSeverity {
		raw = math.Max(raw, p.SevereFloor)
	}

	res.Score = clamp(raw)
	res.Level = LevelOf(p, res.Score)
	return res
}

// historyBasis выбирает предыдущую оценку для исторического сигнала.
// Если строка записана не раньше now, берется ее сохраненный базис.
func historyBasis(prev *models.RiskCell, now time.Time) (float64, time.Time) {
	if prev == nil {
		return 0, time.Time{}
	}
	if now.After(prev.UpdatedAt) {
		return prev.Score, prev.UpdatedAt
	}
	return prev.BasisScore, prev.BasisAt
}

// LevelOf переводит оценку в уровень
func LevelOf(p Params, score float64) models.RiskLevel {
	switch {
	case score >= p.VeryHighThreshold:
		return models.RiskVeryHigh
	case score >= p.HighThreshold:
		return models.RiskHigh
	case score >= p.MediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// PlaceholderName - имя зоны, когда геокодер недоступен
func PlaceholderName(center geogrid.Point) string {
	return fmt.Sprintf("%s%.3f, %.3f]", placeholderPrefix, center.Lat, center.Lng)
}

func IsPlaceholderName(name string) bool {
	return name == "" || name == "Unknown Zone" || strings.HasPrefix(name, placeholderPrefix)
}

func hoursBetween(from, to time.Time) float64 {
	h := to.Sub(from).Hours()
	if h < 0 {
		return 0
	}
	return h
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
