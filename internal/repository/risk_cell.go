package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/service"
)

type RiskCellRepository struct {
	db *pgxpool.Pool
}

func NewRiskCellRepository(db *pgxpool.Pool) service.RiskCellRepository {
	return &RiskCellRepository{db: db}
}

const riskCellColumns = `
	cell_id,
	ST_Y(location::geometry) as latitude,
	ST_X(location::geometry) as longitude,
	risk_score,
	risk_level,
	zone_name,
	resolution,
	basis_score,
	basis_at,
	last_updated
`

// UpsertCell записывает ячейку. Повторная запись той же ячейки заменяет ее.
func (r *RiskCellRepository) UpsertCell(ctx context.Context, cell *models.RiskCell) error {
	query := `
		INSERT INTO risk_cells (cell_id, location, risk_score, risk_level, zone_name, resolution, basis_score, basis_at, last_updated)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326), $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (cell_id) DO UPDATE SET
			location = EXCLUDED.location,
			risk_score = EXCLUDED.risk_score,
			risk_level = EXCLUDED.risk_level,
			zone_name = EXCLUDED.zone_name,
			resolution = EXCLUDED.resolution,
			basis_score = EXCLUDED.basis_score,
			basis_at = EXCLUDED.basis_at,
			last_updated = EXCLUDED.last_updated;
	`
	_, err := r.db.Exec(ctx, query,
		cell.CellID,
		cell.Longitude,
		cell.Latitude,
		cell.Score,
		string(cell.Level),
		cell.ZoneName,
		cell.Resolution,
		cell.BasisScore,
		nullableTime(cell.BasisAt),
		cell.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert risk cell %s: %w", cell.CellID, err)
	}
	return nil
}

// GetCell возвращает ячейку по id
func (r *RiskCellRepository) GetCell(ctx context.Context, cellID string) (*models.RiskCell, error) {
	query := `SELECT ` + riskCellColumns + ` FROM risk_cells WHERE cell_id = $1;`
	cell, err := scanRiskCell(r.db.QueryRow(ctx, query, cellID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("risk", "risk cell %s not found", cellID)
		}
		return nil, fmt.Errorf("failed to get risk cell: %w", err)
	}
	return cell, nil
}

// ListCells возвращает все ячейки, самые опасные первыми
func (r *RiskCellRepository) ListCells(ctx context.Context) ([]*models.RiskCell, error) {
	query := `SELECT ` + riskCellColumns + ` FROM risk_cells ORDER BY risk_score DESC, cell_id;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list risk cells: %w", err)
	}
	return collectRiskCells(rows)
}

// CellsWithin находит ячейки, центр которых ближе radiusMeters к точке
func (r *RiskCellRepository) CellsWithin(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.RiskCell, error) {
	query := `
		SELECT ` + riskCellColumns + `
		FROM risk_cells
		WHERE ST_DWithin(
			location,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
			$3
		);
	`
	rows, err := r.db.Query(ctx, query, lng, lat, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("failed to find risk cells within radius: %w", err)
	}
	return collectRiskCells(rows)
}

// CellResolutions возвращает различные размеры сетки среди сохраненных ячеек
func (r *RiskCellRepository) CellResolutions(ctx context.Context) ([]float64, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT resolution FROM risk_cells;`)
	if err != nil {
		return nil, fmt.Errorf("failed to read cell resolutions: %w", err)
	}
	resolutions, err := pgx.CollectRows(rows, pgx.RowTo[float64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan cell resolutions: %w", err)
	}
	return resolutions, nil
}

func scanRiskCell(row pgx.Row) (*models.RiskCell, error) {
	cell := &models.RiskCell{}
	var level string
	var basisAt *time.Time
	err := row.Scan(
		&cell.CellID,
		&cell.Latitude,
		&cell.Longitude,
		&cell.Score,
		&level,
		&cell.ZoneName,
		&cell.Resolution,
		&cell.BasisScore,
		&basisAt,
		&cell.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	cell.Level = models.RiskLevel(level)
	if basisAt != nil {
		cell.BasisAt = basisAt.UTC()
	}
	cell.UpdatedAt = cell.UpdatedAt.UTC()
	return cell, nil
}

func collectRiskCells(rows pgx.Rows) ([]*models.RiskCell, error) {
	defer rows.Close()
	cells := make([]*models.RiskCell, 0)
	for rows.Next() {
		cell, err := scanRiskCell(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan risk cell row: %w", err)
		}
		cells = append(cells, cell)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error risk cell iteration: %w", err)
	}
	return cells, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
