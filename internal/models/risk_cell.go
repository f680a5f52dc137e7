package models

import (
	"strings"
	"time"
)

// RiskLevel - уровень риска
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

var levelRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskVeryHigh: 3,
}

func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return levelRank[l] >= levelRank[other]
}

func (l RiskLevel) Valid() bool {
	_, ok := levelRank[l]
	return ok
}

// ParseRiskLevel принимает уровень без учета регистра; "very-high" и
// "very_high" равны "Very High". Неизвестное значение возвращается как есть.
func ParseRiskLevel(s string) RiskLevel {
	norm := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for l := range levelRank {
		if strings.EqualFold(string(l), norm) {
			return l
		}
	}
	return RiskLevel(s)
}

// RiskCell - ячейка риска.
//
// BasisScore и BasisAt - предыдущая оценка и ее время, от которых посчитана
// текущая. Пересчет в тот же момент использует их и дает ту же оценку.
type RiskCell struct {
	CellID     string    `json:"cell_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Score      float64   `json:"risk_score"`
	Level      RiskLevel `json:"risk_level"`
	ZoneName   string    `json:"zone_name"`
	Resolution float64   `json:"resolution"`
	BasisScore float64   `json:"-"`
	BasisAt    time.Time `json:"-"`
	UpdatedAt  time.Time `json:"last_updated"`
}
