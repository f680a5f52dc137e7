package v1

import (
	"time"

	"github.com/google/uuid"
)

// RiskCellResponse DTO ячейки риска
// @Description DTO ячейки риска
type RiskCellResponse struct {
	CellID      string    `json:"cell_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RiskScore   float64   `json:"risk_score"`
	RiskLevel   string    `json:"risk_level"`
	ZoneName    string    `json:"zone_name"`
	LastUpdated time.Time `json:"last_updated"`
}

// NearbyCellResponse DTO ячейки рядом с точкой
// @Description DTO ячейки рядом с точкой
type NearbyCellResponse struct {
	RiskCellResponse
	DistanceMeters float64 `json:"distance_meters"`
}

// RefreshResponse DTO итога пересчета
// @Description DTO итога пересчета
type RefreshResponse struct {
	StartedAt  time.Time `json:"started_at"`
	Candidates int       `json:"candidates"`
	Refreshed  int       `json:"refreshed"`
	Failed     int       `json:"failed"`
	DurationMS int64     `json:"duration_ms"`
}

// ReportIncidentRequest DTO для сообщения об инциденте
// @Description DTO для сообщения об инциденте
type ReportIncidentRequest struct {
	Title     string   `json:"title,omitempty" validate:"max=255"`
	Category  string   `json:"category" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Severity  *float64 `json:"severity,omitempty"`
	Source    string   `json:"source,omitempty" validate:"max=64"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title,omitempty"`
	Category   string    `json:"category"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Severity   float64   `json:"severity"`
	Source     string    `json:"source"`
	ReportedAt time.Time `json:"reported_at"`
}

// LocationCheckRequest DTO для проверки координат. Турист берется из токена.
// @Description DTO для проверки координат
type LocationCheckRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
}

// LocationCheckResponse DTO результата проверки
// @Description DTO результата проверки
type LocationCheckResponse struct {
	SubjectID    string               `json:"subject_id"`
	CellID       string               `json:"cell_id"`
	RiskLevel    string               `json:"risk_level"`
	HighestLevel string               `json:"highest_level"`
	IsDangerous  bool                 `json:"is_dangerous"`
	Cell         *RiskCellResponse    `json:"cell,omitempty"`
	Nearby       []NearbyCellResponse `json:"nearby"`
	CheckedAt    time.Time            `json:"checked_at"`
}

// CellCountResponse DTO числа ячеек с уровнем не ниже заданного
type CellCountResponse struct {
	MinLevel string `json:"min_level"`
	Count    int    `json:"count"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	UserCount int `json:"user_count"`
}

// CreateAlertRequest DTO новой тревоги. Турист берется из токена.
// @Description DTO новой тревоги
type CreateAlertRequest struct {
	Latitude     *float64 `json:"latitude" validate:"required,latitude"`
	Longitude    *float64 `json:"longitude" validate:"required,longitude"`
	LocationName string   `json:"location_name,omitempty" validate:"max=255"`
	SafetyScore  float64  `json:"safety_score" validate:"gte=0,lte=100"`
	Reason       string   `json:"reason" validate:"required,max=1000"`
}

// AssignAlertRequest DTO назначения. Пустые поля заполняются из токена.
// @Description DTO назначения сотрудника
type AssignAlertRequest struct {
	AuthorityID  string `json:"authority_id,omitempty" validate:"max=128"`
	FullName     string `json:"full_name,omitempty" validate:"max=255"`
	Role         string `json:"role,omitempty" validate:"max=64"`
	ResponseTime string `json:"response_time,omitempty" validate:"max=16"`
}

// AuthorityResponse DTO назначенного сотрудника
type AuthorityResponse struct {
	AuthorityID string    `json:"authority_id"`
	FullName    string    `json:"full_name"`
	Role        string    `json:"role"`
	AssignedAt  time.Time `json:"assigned_at"`
}

// AlertResponse DTO тревоги
// @Description DTO тревоги
type AlertResponse struct {
	ID           uuid.UUID           `json:"id"`
	SubjectID    string              `json:"subject_id"`
	Latitude     float64             `json:"latitude"`
	Longitude    float64             `json:"longitude"`
	LocationName string              `json:"location_name,omitempty"`
	SafetyScore  float64             `json:"safety_score"`
	Reason       string              `json:"reason"`
	Status       string              `json:"status"`
	AssignedTo   []AuthorityResponse `json:"assigned_to"`
	CreatedAt    time.Time           `json:"created_at"`
	ResponseAt   *time.Time          `json:"response_at,omitempty"`
	ResolvedAt   *time.Time          `json:"resolved_at,omitempty"`
	ResponseTime string              `json:"response_time,omitempty"`
	EventID      string              `json:"event_id,omitempty"`
	PayloadHash  string              `json:"payload_hash,omitempty"`
	TxRef        string              `json:"tx_ref,omitempty"`
	OnChain      bool                `json:"on_chain"`
}

// RegisterSubjectRequest DTO регистрации туриста
// @Description DTO регистрации туриста
type RegisterSubjectRequest struct {
	SubjectID  string `json:"subject_id" validate:"required,max=128"`
	NaturalKey string `json:"natural_key" validate:"required,max=256"`
	Content    string `json:"content,omitempty"`
}

// SubjectResponse DTO регистрации
// @Description DTO регистрации
type SubjectResponse struct {
	SubjectID      string    `json:"subject_id"`
	NaturalKeyHash string    `json:"natural_key_hash"`
	PayloadHash    string    `json:"payload_hash"`
	EventID        string    `json:"event_id"`
	TxRef          string    `json:"tx_ref,omitempty"`
	ContentHash    string    `json:"content_hash"`
	RegisteredAt   string    `json:"registered_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// VerificationResponse DTO проверки целостности
// @Description DTO проверки целостности
type VerificationResponse struct {
	SubjectID      string `json:"subject_id,omitempty"`
	AlertID        string `json:"alert_id,omitempty"`
	Verified       bool   `json:"verified"`
	RecomputedHash string `json:"recomputed_hash"`
	StoredHash     string `json:"stored_hash"`
	EventID        string `json:"event_id"`
	TxRef          string `json:"tx_ref,omitempty"`
	LedgerStatus   string `json:"ledger_status"`
	Error          string `json:"error,omitempty"`
}
