package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/service"
)

type IncidentRepository struct {
	db *pgxpool.Pool
}

func NewIncidentRepository(db *pgxpool.Pool) service.IncidentRepository {
	return &IncidentRepository{db: db}
}

const incidentColumns = `
	id,
	title,
	category,
	ST_Y(location::geometry) as latitude,
	ST_X(location::geometry) as longitude,
	severity,
	source,
	reported_at
`

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, report *models.IncidentReport) error {
	query := `
		INSERT INTO incident_reports (id, title, category, location, severity, source, reported_at)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326), $6, $7, $8);
	`
	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.Title,
		string(report.Category),
		report.Longitude,
		report.Latitude,
		report.Severity,
		report.Source,
		report.ReportedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (r *IncidentRepository) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.IncidentReport, error) {
	// рассчитываем смещение
	offset := (page - 1) * pageSize

	query := `
		SELECT ` + incidentColumns + `
		FROM incident_reports
		ORDER BY reported_at DESC
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.db.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return collectIncidents(rows)
}

// ListSince возвращает инциденты, сообщенные не раньше since
func (r *IncidentRepository) ListSince(ctx context.Context, since time.Time) ([]*models.IncidentReport, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incident_reports
		WHERE reported_at >= $1
		ORDER BY reported_at;
	`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents since %s: %w", since.Format(time.RFC3339), err)
	}
	return collectIncidents(rows)
}

func collectIncidents(rows pgx.Rows) ([]*models.IncidentReport, error) {
	defer rows.Close()
	incidents := make([]*models.IncidentReport, 0)
	for rows.Next() {
		report := &models.IncidentReport{}
		var category string
		err := rows.Scan(
			&report.ID,
			&report.Title,
			&category,
			&report.Latitude,
			&report.Longitude,
			&report.Severity,
			&report.Source,
			&report.ReportedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		report.Category = models.IncidentCategory(category)
		report.ReportedAt = report.ReportedAt.UTC()
		incidents = append(incidents, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}
