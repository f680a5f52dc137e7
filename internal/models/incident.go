package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IncidentCategory - категория инцидента
type IncidentCategory string

const (
	CategoryTheft           IncidentCategory = "theft"
	CategoryAssault         IncidentCategory = "assault"
	CategoryAccident        IncidentCategory = "accident"
	CategoryRiot            IncidentCategory = "riot"
	CategoryNaturalDisaster IncidentCategory = "natural_disaster"
	CategoryOther           IncidentCategory = "other"
)

const (
	DefaultIncidentSeverity = 0.5
	DefaultIncidentSource   = "User"
)

var IncidentCategories = []IncidentCategory{
	CategoryTheft, CategoryAssault, CategoryAccident, CategoryRiot, CategoryNaturalDisaster, CategoryOther,
}

func (c IncidentCategory) Valid() bool {
	for _, known := range IncidentCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseIncidentCategory приводит категорию к каноническому виду:
// "Natural-Disaster" и "natural disaster" становятся "natural_disaster"
func ParseIncidentCategory(s string) IncidentCategory {
	norm := strings.ToLower(strings.TrimSpace(s))
	return IncidentCategory(strings.NewReplacer("-", "_", " ", "_").Replace(norm))
}

// IncidentReport - сообщение об инциденте, после сохранения не меняется
type IncidentReport struct {
	ID         uuid.UUID        `json:"id"`
	Title      string           `json:"title,omitempty"`
	Category   IncidentCategory `json:"category"`
	Latitude   float64          `json:"latitude"`
	Longitude  float64          `json:"longitude"`
	Severity   float64          `json:"severity"`
	Source     string           `json:"source"`
	ReportedAt time.Time        `json:"reported_at"`
}
