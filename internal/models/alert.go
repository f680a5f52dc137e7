package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shenikar/tourist_safety/internal/apperr"
)

// AlertStatus - статус тревоги
type AlertStatus string

const (
	StatusNew          AlertStatus = "new"
	StatusAcknowledged AlertStatus = "acknowledged"
	StatusResponding   AlertStatus = "responding"
	StatusResolved     AlertStatus = "resolved"
	StatusClosed       AlertStatus = "closed"
)

// LedgerNotRecorded - запись в реестр не удалась
const LedgerNotRecorded = "not-recorded"

var statusRank = map[AlertStatus]int{
	StatusNew:          0,
	StatusAcknowledged: 1,
	StatusResponding:   2,
	StatusResolved:     3,
	StatusClosed:       4,
}

func (s AlertStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Terminal - назначение и закрытие больше невозможны
func (s AlertStatus) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// OpenStatuses - тревоги, на которые еще никто не реагирует
var OpenStatuses = []AlertStatus{StatusNew, StatusAcknowledged}

// ActiveStatuses - нерешенные тревоги
var ActiveStatuses = []AlertStatus{StatusNew, StatusAcknowledged, StatusResponding}

// AuthorityRef - сотрудник, назначенный на тревогу
type AuthorityRef struct {
	AuthorityID string    `json:"authority_id"`
	FullName    string    `json:"full_name"`
	Role        string    `json:"role"`
	AssignedAt  time.Time `json:"assigned_at"`
}

// LedgerAudit - поля аудита тревоги
type LedgerAudit struct {
	EventID     string `json:"event_id,omitempty"`
	PayloadHash string `json:"payload_hash,omitempty"`
	TxRef       string `json:"tx_ref,omitempty"`
	OnChain     bool   `json:"on_chain"`
}

// EmergencyAlert - тревога туриста. Изменяется только методами жизненного цикла.
type EmergencyAlert struct {
	ID           uuid.UUID      `json:"id"`
	SubjectID    string         `json:"subject_id"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	LocationName string         `json:"location_name,omitempty"`
	SafetyScore  float64        `json:"safety_score"`
	Reason       string         `json:"reason"`
	Status       AlertStatus    `json:"status"`
	Assignments  []AuthorityRef `json:"assigned_to"`
	CreatedAt    time.Time      `json:"created_at"`
	ResponseAt   *time.Time     `json:"response_at,omitempty"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`
	ResponseTime string         `json:"response_time,omitempty"`
	Ledger       LedgerAudit    `json:"ledger"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (a *EmergencyAlert) moveTo(next AlertStatus) error {
	if statusRank[next] < statusRank[a.Status] {
		return apperr.StateTransition("alert", "cannot move alert %s from %s back to %s", a.ID, a.Status, next)
	}
	a.Status = next
	return nil
}

// Acknowledge отмечает новую тревогу как принятую
func (a *EmergencyAlert) Acknowledge(now time.Time) error {
	if a.Status != StatusNew {
		return apperr.StateTransition("alert", "alert %s is %s, only new alerts can be acknowledged", a.ID, a.Status)
	}
	a.UpdatedAt = now
	return a.moveTo(StatusAcknowledged)
}

// Assign добавляет назначение. Повторное назначение того же сотрудника
// допустимо. Первое назначение переводит тревогу в responding и фиксирует
// время реагирования.
func (a *EmergencyAlert) Assign(ref AuthorityRef, responseTime string, now time.Time) error {
	if a.Status.Terminal() {
		return apperr.StateTransition("alert", "alert %s is already %s", a.ID, a.Status)
	}
	if ref.AssignedAt.IsZero() {
		ref.AssignedAt = now
	}
	a.Assignments = append(a.Assignments, ref)
	if a.Status == StatusNew || a.Status == StatusAcknowledged {
		if err := a.moveTo(StatusResponding); err != nil {
			return err
		}
	}
	if a.ResponseAt == nil {
		at := now
		a.ResponseAt = &at
		if responseTime == "" {
			responseTime = FormatDuration(now.Sub(a.CreatedAt))
		}
		a.ResponseTime = responseTime
	}
	a.UpdatedAt = now
	return nil
}

// Resolve завершает реагирование
func (a *EmergencyAlert) Resolve(now time.Time) error {
	if a.Status.Terminal() {
		return apperr.StateTransition("alert", "alert %s is already %s", a.ID, a.Status)
	}
	if err := a.moveTo(StatusResolved); err != nil {
		return err
	}
	at := now
	a.ResolvedAt = &at
	if a.ResponseTime == "" {
		responded := now
		if a.ResponseAt != nil {
			responded = *a.ResponseAt
		}
		a.ResponseTime = FormatDuration(responded.Sub(a.CreatedAt))
	}
	a.UpdatedAt = now
	return nil
}

// Close архивирует решенную тревогу
func (a *EmergencyAlert) Close(now time.Time) error {
	if a.Status != StatusResolved {
		return apperr.StateTransition("alert", "alert %s is %s, only resolved alerts can be closed", a.ID, a.Status)
	}
	a.UpdatedAt = now
	return a.moveTo(StatusClosed)
}

// FormatDuration форматирует d как HH:MM:SS
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
