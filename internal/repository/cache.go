package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/service"
)

const riskCellsCacheKey = "risk_cells:all"

// RiskCache хранит полный список ячеек в Redis
type RiskCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewRiskCache(redisClient *redis.Client, ttl time.Duration) service.RiskCache {
	return &RiskCache{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// GetCells пытается получить ячейки из Redis. Промах - hit=false без ошибки.
func (c *RiskCache) GetCells(ctx context.Context) ([]*models.RiskCell, bool, error) {
	val, err := c.redisClient.Get(ctx, riskCellsCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get risk cells from cache: %w", err)
	}

	var entries []cachedCell
	if err := json.Unmarshal(val, &entries); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal risk cells from cache: %w", err)
	}
	cells := make([]*models.RiskCell, 0, len(entries))
	for _, e := range entries {
		cells = append(cells, e.toModel())
	}
	return cells, true, nil
}

// SetCells сохраняет ячейки в Redis
func (c *RiskCache) SetCells(ctx context.Context, cells []*models.RiskCell) error {
	entries := make([]cachedCell, 0, len(cells))
	for _, cell := range cells {
		entries = append(entries, fromModel(cell))
	}
	val, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal risk cells for cache: %w", err)
	}
	if err := c.redisClient.Set(ctx, riskCellsCacheKey, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set risk cells cache: %w", err)
	}
	return nil
}

// Invalidate удаляет закешированный список
func (c *RiskCache) Invalidate(ctx context.Context) error {
	if err := c.redisClient.Del(ctx, riskCellsCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate risk cells cache: %w", err)
	}
	return nil
}

// cachedCell включает поля базиса, которые скрыты в API
type cachedCell struct {
	CellID     string    `json:"cell_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Score      float64   `json:"risk_score"`
	Level      string    `json:"risk_level"`
	ZoneName   string    `json:"zone_name"`
	Resolution float64   `json:"resolution"`
	BasisScore float64   `json:"basis_score"`
	BasisAt    time.Time `json:"basis_at"`
	UpdatedAt  time.Time `json:"last_updated"`
}

func fromModel(c *models.RiskCell) cachedCell {
	return cachedCell{
		CellID:     c.CellID,
		Latitude:   c.Latitude,
		Longitude:  c.Longitude,
		Score:      c.Score,
		Level:      string(c.Level),
		ZoneName:   c.ZoneName,
		Resolution: c.Resolution,
		BasisScore: c.BasisScore,
		BasisAt:    c.BasisAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (e cachedCell) toModel() *models.RiskCell {
	return &models.RiskCell{
		CellID:     e.CellID,
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		Score:      e.Score,
		Level:      models.RiskLevel(e.Level),
		ZoneName:   e.ZoneName,
		Resolution: e.Resolution,
		BasisScore: e.BasisScore,
		BasisAt:    e.BasisAt,
		UpdatedAt:  e.UpdatedAt,
	}
}
