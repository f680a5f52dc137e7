package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/background"
	"github.com/shenikar/tourist_safety/internal/config"
	"github.com/shenikar/tourist_safety/internal/geogrid"
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/notify"
)

// RiskCellRepository определяет контракт хранилища ячеек риска
type RiskCellRepository interface {
	UpsertCell(ctx context.Context, cell *models.RiskCell) error
	GetCell(ctx context.Context, cellID string) (*models.RiskCell, error)
	ListCells(ctx context.Context) ([]*models.RiskCell, error)
	CellsWithin(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.RiskCell, error)
	CellResolutions(ctx context.Context) ([]float64, error)
}

// RiskCache - кеш полного списка ячеек (тепловая карта)
type RiskCache interface {
	GetCells(ctx context.Context) ([]*models.RiskCell, bool, error)
	SetCells(ctx context.Context, cells []*models.RiskCell) error
	Invalidate(ctx context.Context) error
}

// LocationCheckRepository хранит проверки местоположения
type LocationCheckRepository interface {
	SaveLocationCheck(ctx context.Context, check *models.LocationCheck) error
	CountRecentSubjects(ctx context.Context, minutes int) (int, error)
}

// TaskRunner запускает фоновые задачи
type TaskRunner interface {
	Go(name string, task background.Task)
}

// NearbyCell - ячейка рядом с точкой и расстояние до ее центра
type NearbyCell struct {
	Cell           *models.RiskCell `json:"cell"`
	DistanceMeters float64          `json:"distance_meters"`
}

// LocationRisk - результат проверки местоположения
type LocationRisk struct {
	Check   *models.LocationCheck `json:"check"`
	Cell    *models.RiskCell      `json:"cell,omitempty"`
	Nearby  []NearbyCell          `json:"nearby"`
	Highest models.RiskLevel      `json:"highest_level"`
}

// RiskService определяет контракт чтения ячеек и геозоны
type RiskService interface {
	ListCells(ctx context.Context) ([]*models.RiskCell, error)
	GetCell(ctx context.Context, cellID string) (*models.RiskCell, error)
	CellsNear(ctx context.Context, lat, lng, radiusMeters float64) ([]NearbyCell, error)
	CheckLocation(ctx context.Context, subjectID string, lat, lng float64) (*LocationRisk, error)
	GetStats(ctx context.Context) (int, error)
	CountCells(ctx context.Context, minLevel models.RiskLevel) (int, error)
}

const maxNearbyRadius = 50000.0

type riskService struct {
	cells     RiskCellRepository
	cache     RiskCache
	checks    LocationCheckRepository
	publisher notify.Publisher
	runner    TaskRunner
	grid      geogrid.Grid
	cfg       *config.Config
	logger    *logrus.Logger
}

func NewRiskService(cells RiskCellRepository, cache RiskCache, checks LocationCheckRepository, publisher notify.Publisher, runner TaskRunner, grid geogrid.Grid, cfg *config.Config, logger *logrus.Logger) RiskService {
	return &riskService{
		cells:     cells,
		cache:     cache,
		checks:    checks,
		publisher: publisher,
		runner:    runner,
		grid:      grid,
		cfg:       cfg,
		logger:    logger,
	}
}

// ListCells возвращает все ячейки. Сначала смотрит в кеш.
func (s *riskService) ListCells(ctx context.Context) ([]*models.RiskCell, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "risk",
		"method":  "ListCells",
	})

	cells, hit, err := s.cache.GetCells(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read cells from cache")
	}
	if hit {
		log.Debug("Cells served from cache")
		return cells, nil
	}

	cells, err = s.cells.ListCells(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list cells from repository")
		return nil, fmt.Errorf("service: could not list risk cells: %w", err)
	}

	if err := s.cache.SetCells(ctx, cells); err != nil {
		log.WithError(err).Warn("Failed to cache cells")
	}
	log.WithField("count", len(cells)).Info("Risk cells listed successfully")
	return cells, nil
}

// GetCell возвращает ячейку по id
func (s *riskService) GetCell(ctx context.Context, cellID string) (*models.RiskCell, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "risk",
		"method":  "GetCell",
		"cell_id": cellID,
	})

	if !s.grid.Owns(cellID) {
		return nil, apperr.Validation("risk", "invalid cell id %q for grid resolution %v", cellID, s.grid.Resolution())
	}

	cell, err := s.cells.GetCell(ctx, cellID)
	if err != nil {
		log.WithError(err).Warn("Failed to get risk cell")
		return nil, fmt.Errorf("service: could not get risk cell: %w", err)
	}
	return cell, nil
}

// CellsNear возвращает ячейки в радиусе от точки, ближайшие первыми
func (s *riskService) CellsNear(ctx context.Context, lat, lng, radiusMeters float64) ([]NearbyCell, error) {
	if !geogrid.ValidPoint(geogrid.Point{Lat: lat, Lng: lng}) {
		return nil, apperr.Validation("risk", "coordinates %v, %v are out of range", lat, lng)
	}
	if radiusMeters <= 0 || radiusMeters > maxNearbyRadius {
		return nil, apperr.Validation("risk", "radius must be within (0, %v] meters", maxNearbyRadius)
	}

	cells, err := s.cells.CellsWithin(ctx, lat, lng, radiusMeters)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "risk",
			"method":  "CellsNear",
		}).WithError(err).Error("Failed to find nearby cells")
		return nil, fmt.Errorf("service: could not find nearby cells: %w", err)
	}
	return byDistance(geogrid.Point{Lat: lat, Lng: lng}, cells), nil
}

// CheckLocation проверяет точку туриста: ячейка, соседние ячейки в радиусе
// предупреждения и наибольший уровень риска. При уровне High и выше
// публикуется предупреждение.
func (s *riskService) CheckLocation(ctx context.Context, subjectID string, lat, lng float64) (*LocationRisk, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "risk",
		"method":     "CheckLocation",
		"subject_id": subjectID,
	})
	log.Info("Checking subject location")

	if subjectID == "" {
		return nil, apperr.Validation("location", "subject id is required")
	}
	if !geogrid.ValidPoint(geogrid.Point{Lat: lat, Lng: lng}) {
		return nil, apperr.Validation("location", "coordinates %v, %v are out of range", lat, lng)
	}

	home := s.grid.CellOf(lat, lng)
	cells, err := s.cells.CellsWithin(ctx, lat, lng, s.cfg.WarningRadius)
	if err != nil {
		log.WithError(err).Error("Failed to find cells around location")
		return nil, fmt.Errorf("service: could not check location: %w", err)
	}

	// При крупной сетке центр своей ячейки может лежать дальше радиуса
	if !containsCell(cells, home.ID) {
		own, err := s.cells.GetCell(ctx, home.ID)
		switch {
		case err == nil:
			cells = append(cells, own)
		case errors.Is(err, apperr.ErrNotFound):
		default:
			log.WithError(err).Error("Failed to get containing cell")
			return nil, fmt.Errorf("service: could not check location: %w", err)
		}
	}

	result := &LocationRisk{
		Nearby:  byDistance(geogrid.Point{Lat: lat, Lng: lng}, cells),
		Highest: models.RiskLow,
	}
	for _, n := range result.Nearby {
		if n.Cell.CellID == home.ID {
			result.Cell = n.Cell
		}
		if n.Cell.Level.AtLeast(result.Highest) {
			result.Highest = n.Cell.Level
		}
	}

	check := &models.LocationCheck{
		SubjectID:   subjectID,
		Latitude:    lat,
		Longitude:   lng,
		CellID:      home.ID,
		RiskLevel:   result.Highest,
		IsDangerous: result.Highest.AtLeast(models.RiskHigh),
	}
	if err := s.checks.SaveLocationCheck(ctx, check); err != nil {
		log.WithError(err).Error("Failed to save location check")
		return nil, fmt.Errorf("service: could not save location check: %w", err)
	}
	result.Check = check

	if check.IsDangerous {
		s.publishWarning(subjectID, result)
	}

	log.WithFields(logrus.Fields{
		"risk_level":   result.Highest,
		"is_dangerous": check.IsDangerous,
	}).Info("Location check completed")
	return result, nil
}

func (s *riskService) publishWarning(subjectID string, result *LocationRisk) {
	event, err := notify.NewEvent(notify.TopicGeofenceWarning, subjectID, result)
	if err != nil {
		s.logger.WithError(err).Error("Failed to build geofence warning")
		return
	}
	s.runner.Go("notify."+notify.TopicGeofenceWarning, func(ctx context.Context) error {
		return s.publisher.Publish(ctx, event)
	})
}

// GetStats возвращает количество уникальных туристов, проверивших
// местоположение за последние StatsTimeWindowMinutes минут
func (s *riskService) GetStats(ctx context.Context) (int, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "risk",
		"method":      "GetStats",
		"time_window": s.cfg.StatsTimeWindowMinutes,
	})

	count, err := s.checks.CountRecentSubjects(ctx, s.cfg.StatsTimeWindowMinutes)
	if err != nil {
		log.WithError(err).Error("Failed to get location check stats")
		return 0, fmt.Errorf("service: could not get stats: %w", err)
	}
	return count, nil
}

// CountCells считает ячейки с уровнем не ниже minLevel
func (s *riskService) CountCells(ctx context.Context, minLevel models.RiskLevel) (int, error) {
	if !minLevel.Valid() {
		return 0, apperr.Validation("risk", "unknown risk level %q", minLevel)
	}
	cells, err := s.ListCells(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, c := range cells {
		if c.Level.AtLeast(minLevel) {
			count++
		}
	}
	return count, nil
}

func containsCell(cells []*models.RiskCell, id string) bool {
	for _, c := range cells {
		if c.CellID == id {
			return true
		}
	}
	return false
}

func byDistance(from geogrid.Point, cells []*models.RiskCell) []NearbyCell {
	out := make([]NearbyCell, 0, len(cells))
	for _, c := range cells {
		out = append(out, NearbyCell{
			Cell:           c,
			DistanceMeters: geogrid.Distance(from, geogrid.Point{Lat: c.Latitude, Lng: c.Longitude}),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})
	return out
}
