package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/service"
)

type AlertRepository struct {
	db *pgxpool.Pool
}

func NewAlertRepository(db *pgxpool.Pool) service.AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `
	id,
	subject_id,
	latitude,
	longitude,
	location_name,
	safety_score,
	reason,
	status,
	assigned_to,
	created_at,
	response_at,
	resolved_at,
	response_time,
	event_id,
	payload_hash,
	tx_ref,
	on_chain,
	updated_at
`

// Create сохраняет новую тревогу
func (r *AlertRepository) Create(ctx context.Context, alert *models.EmergencyAlert) error {
	assignments, err := marshalAssignments(alert.Assignments)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO emergency_alerts (
			id, subject_id, latitude, longitude, location, location_name, safety_score, reason,
			status, assigned_to, created_at, response_time, event_id, payload_hash, tx_ref, on_chain, updated_at
		)
		VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($4, $3), 4326), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = r.db.Exec(ctx, query,
		alert.ID,
		alert.SubjectID,
		alert.Latitude,
		alert.Longitude,
		alert.LocationName,
		alert.SafetyScore,
		alert.Reason,
		string(alert.Status),
		assignments,
		alert.CreatedAt,
		alert.ResponseTime,
		alert.Ledger.EventID,
		alert.Ledger.PayloadHash,
		alert.Ledger.TxRef,
		alert.Ledger.OnChain,
		alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// GetByID возвращает тревогу по id
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EmergencyAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM emergency_alerts WHERE id = $1;`
	alert, err := scanAlert(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("alert", "alert %s not found", id)
		}
		return nil, fmt.Errorf("failed to get alert by id: %w", err)
	}
	return alert, nil
}

// Update блокирует строку тревоги (SELECT ... FOR UPDATE), применяет mutate
// и сохраняет результат в той же транзакции. Параллельные переходы одной
// тревоги выполняются по очереди.
func (r *AlertRepository) Update(ctx context.Context, id uuid.UUID, mutate func(alert *models.EmergencyAlert) error) (*models.EmergencyAlert, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin alert transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `SELECT ` + alertColumns + ` FROM emergency_alerts WHERE id = $1 FOR UPDATE;`
	alert, err := scanAlert(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("alert", "alert %s not found", id)
		}
		return nil, fmt.Errorf("failed to lock alert: %w", err)
	}

	if err := mutate(alert); err != nil {
		return nil, err
	}

	assignments, err := marshalAssignments(alert.Assignments)
	if err != nil {
		return nil, err
	}
	update := `
		UPDATE emergency_alerts SET
			status = $1,
			assigned_to = $2,
			response_at = $3,
			resolved_at = $4,
			response_time = $5,
			updated_at = $6
		WHERE id = $7;
	`
	_, err = tx.Exec(ctx, update,
		string(alert.Status),
		assignments,
		alert.ResponseAt,
		alert.ResolvedAt,
		alert.ResponseTime,
		alert.UpdatedAt,
		alert.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit alert transaction: %w", err)
	}
	return alert, nil
}

// UpdateLedger записывает результат отправки в реестр
func (r *AlertRepository) UpdateLedger(ctx context.Context, id uuid.UUID, ledger models.LedgerAudit) error {
	query := `
		UPDATE emergency_alerts SET
			tx_ref = $1,
			on_chain = $2
		WHERE id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, ledger.TxRef, ledger.OnChain, id)
	if err != nil {
		return fmt.Errorf("failed to update alert ledger fields: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperr.NotFound("alert", "alert %s not found for ledger update", id)
	}
	return nil
}

// ListByStatus возвращает тревоги с указанными статусами, новые первыми
func (r *AlertRepository) ListByStatus(ctx context.Context, statuses []models.AlertStatus) ([]*models.EmergencyAlert, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	query := `
		SELECT ` + alertColumns + `
		FROM emergency_alerts
		WHERE status = ANY($1)
		ORDER BY created_at DESC;
	`
	rows, err := r.db.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts by status: %w", err)
	}
	return collectAlerts(rows)
}

// ListSince возвращает тревоги, созданные не раньше since, в любом статусе
func (r *AlertRepository) ListSince(ctx context.Context, since time.Time) ([]*models.EmergencyAlert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM emergency_alerts
		WHERE created_at >= $1
		ORDER BY created_at;
	`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts since %s: %w", since.Format(time.RFC3339), err)
	}
	return collectAlerts(rows)
}

// CountByStatus считает тревоги по статусам
func (r *AlertRepository) CountByStatus(ctx context.Context) (map[models.AlertStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM emergency_alerts GROUP BY status;`)
	if err != nil {
		return nil, fmt.Errorf("failed to count alerts: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.AlertStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan alert count: %w", err)
		}
		counts[models.AlertStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error alert count iteration: %w", err)
	}
	return counts, nil
}

func scanAlert(row pgx.Row) (*models.EmergencyAlert, error) {
	alert := &models.EmergencyAlert{}
	var status string
	var assignments []byte
	err := row.Scan(
		&alert.ID,
		&alert.SubjectID,
		&alert.Latitude,
		&alert.Longitude,
		&alert.LocationName,
		&alert.SafetyScore,
		&alert.Reason,
		&status,
		&assignments,
		&alert.CreatedAt,
		&alert.ResponseAt,
		&alert.ResolvedAt,
		&alert.ResponseTime,
		&alert.Ledger.EventID,
		&alert.Ledger.PayloadHash,
		&alert.Ledger.TxRef,
		&alert.Ledger.OnChain,
		&alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	alert.Status = models.AlertStatus(status)
	if err := json.Unmarshal(assignments, &alert.Assignments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert assignments: %w", err)
	}
	if alert.Assignments == nil {
		alert.Assignments = []models.AuthorityRef{}
	}
	alert.CreatedAt = alert.CreatedAt.UTC()
	alert.UpdatedAt = alert.UpdatedAt.UTC()
	alert.ResponseAt = utcPtr(alert.ResponseAt)
	alert.ResolvedAt = utcPtr(alert.ResolvedAt)
	return alert, nil
}

func collectAlerts(rows pgx.Rows) ([]*models.EmergencyAlert, error) {
	defer rows.Close()
	alerts := make([]*models.EmergencyAlert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error alert iteration: %w", err)
	}
	return alerts, nil
}

func marshalAssignments(refs []models.AuthorityRef) (string, error) {
	if refs == nil {
		refs = []models.AuthorityRef{}
	}
	body, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal alert assignments: %w", err)
	}
	return string(body), nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
