package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/service"
)

type LocationCheckRepository struct {
	db *pgxpool.Pool
}

func NewLocationCheckRepository(db *pgxpool.Pool) service.LocationCheckRepository {
	return &LocationCheckRepository{db: db}
}

// SaveLocationCheck сохраняет запись о проверке местоположения в бд
func (r *LocationCheckRepository) SaveLocationCheck(ctx context.Context, check *models.LocationCheck) error {
	query := `
		INSERT INTO location_checks (subject_id, location, cell_id, risk_level, is_dangerous)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4, $5, $6) RETURNING id, checked_at;
	`
	err := r.db.QueryRow(ctx, query,
		check.SubjectID,
		check.Longitude,
		check.Latitude,
		check.CellID,
		string(check.RiskLevel),
		check.IsDangerous,
	).Scan(&check.ID, &check.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to save location check: %w", err)
	}
	check.CheckedAt = check.CheckedAt.UTC()
	return nil
}

// CountRecentSubjects возвращает количество уникальных туристов, проверивших геолокацию
func (r *LocationCheckRepository) CountRecentSubjects(ctx context.Context, minutes int) (int, error) {
	query := `
		SELECT COUNT(DISTINCT subject_id)
		FROM location_checks
		WHERE checked_at >= NOW() - ($1 * INTERVAL '1 minute');
	`
	var count int
	err := r.db.QueryRow(ctx, query, minutes).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get location check stats: %w", err)
	}
	return count, nil
}
