package models

import (
	"time"
)

// LocationCheck - структура для хранения проверки местоположения
type LocationCheck struct {
	ID          int64     `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	CellID      string    `json:"cell_id"`
	RiskLevel   RiskLevel `json:"risk_level"`
	IsDangerous bool      `json:"is_dangerous"`
	CheckedAt   time.Time `json:"checked_at"`
}
