package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/geogrid"
	"github.com/shenikar/tourist_safety/internal/metrics"
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/notify"
	"github.com/shenikar/tourist_safety/internal/risk"
)

// ErrRefreshInProgress - пересчет уже идет в этом или другом процессе
var ErrRefreshInProgress = &apperr.Error{Kind: apperr.ErrConflict, Op: "refresh", Msg: "risk refresh already in progress"}

const refreshLockKey = "risk_refresh_lock"

// Locker - распределенная блокировка
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Unlock(ctx context.Context, key, token string) error
}

// ZoneNamer возвращает человекочитаемое название точки
type ZoneNamer interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// RiskRefresher запускает прогон пересчета по запросу
type RiskRefresher interface {
	RunNow(ctx context.Context) (*RefreshSummary, error)
}

// RefreshSummary - итог одного прогона
type RefreshSummary struct {
	StartedAt  time.Time     `json:"started_at"`
	Candidates int           `json:"candidates"`
	Refreshed  int           `json:"refreshed"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
}

// RefreshDeps - зависимости RefreshJob
type RefreshDeps struct {
	Cells     RiskCellRepository
	Incidents IncidentRepository
	Alerts    AlertRepository
	Cache     RiskCache
	Locker    Locker
	Namer     ZoneNamer
	Publisher notify.Publisher
	Params    risk.Params
	Grid      geogrid.Grid
	Workers   int
	LockTTL   time.Duration
	Interval  time.Duration
	Logger    *logrus.Logger
	Metrics   *metrics.Metrics
}

// RefreshJob пересчитывает ячейки риска по инцидентам, тревогам и истории
type RefreshJob struct {
	deps    RefreshDeps
	running atomic.Bool
	// pending - во время прогона пришел запрос, который пришлось пропустить
	pending atomic.Bool
	trigger chan struct{}
	now     func() time.Time
}

func NewRefreshJob(deps RefreshDeps) *RefreshJob {
	if deps.Workers < 1 {
		deps.Workers = 1
	}
	return &RefreshJob{
		deps:    deps,
		trigger: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// Start запускает пересчет по таймеру и по Trigger до отмены ctx
func (j *RefreshJob) Start(ctx context.Context) {
	log := j.deps.Logger.WithField("component", "refresh")
	log.WithField("interval", j.deps.Interval).Info("Starting risk refresh scheduler")

	go func() {
		ticker := time.NewTicker(j.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("Risk refresh scheduler stopped")
				return
			case <-ticker.C:
			case <-j.trigger:
			}
			if _, err := j.RunNow(ctx); err != nil {
				if errors.Is(err, ErrRefreshInProgress) {
					log.Debug("Skipping refresh, another run is in progress")
					continue
				}
				log.WithError(err).Error("Risk refresh failed")
			}
		}
	}()
}

// Trigger просит планировщик пересчитать ячейки. Не блокирует;
// несколько вызовов подряд схлопываются в один прогон.
func (j *RefreshJob) Trigger() {
	select {
	case j.trigger <- struct{}{}:
	default:
	}
}

// RunNow синхронно выполняет один прогон. Возвращает ErrRefreshInProgress,
// если прогон уже идет; в этом случае после текущего прогона планировщик
// выполнит еще один.
func (j *RefreshJob) RunNow(ctx context.Context) (*RefreshSummary, error) {
	if !j.running.CompareAndSwap(false, true) {
		j.pending.Store(true)
		j.deps.Metrics.ObserveRefresh("skipped", 0, 0, 0)
		return nil, ErrRefreshInProgress
	}
	defer func() {
		j.running.Store(false)
		// пропущенный запрос мог прийти после загрузки сигналов, прогоняем еще раз
		if j.pending.Swap(false) {
			j.Trigger()
		}
	}()

	log := j.deps.Logger.WithFields(logrus.Fields{
		"service": "refresh",
		"method":  "RunNow",
	})

	token, ok, err := j.deps.Locker.TryLock(ctx, refreshLockKey, j.deps.LockTTL)
	if err != nil {
		log.WithError(err).Error("Failed to acquire refresh lock")
		j.deps.Metrics.ObserveRefresh("error", 0, 0, 0)
		return nil, apperr.Dependency("refresh", err)
	}
	if !ok {
		j.deps.Metrics.ObserveRefresh("skipped", 0, 0, 0)
		return nil, ErrRefreshInProgress
	}
	defer func() {
		// ctx может быть уже отменен, блокировку нужно снять все равно
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := j.deps.Locker.Unlock(unlockCtx, refreshLockKey, token); err != nil {
			log.WithError(err).Warn("Failed to release refresh lock")
		}
	}()

	summary, err := j.run(ctx, log)
	if err != nil {
		j.deps.Metrics.ObserveRefresh("error", 0, 0, 0)
		return nil, err
	}
	j.deps.Metrics.ObserveRefresh("ok", summary.Duration, summary.Refreshed, summary.Failed)
	return summary, nil
}

func (j *RefreshJob) run(ctx context.Context, log *logrus.Entry) (*RefreshSummary, error) {
	if err := j.checkResolution(ctx); err != nil {
		log.WithError(err).Error("Refusing to refresh with mixed grid resolutions")
		return nil, err
	}

	started := time.Now()
	now := j.now().UTC().Truncate(time.Microsecond)
	since := now.Add(-j.deps.Params.Lookback)
	summary := &RefreshSummary{StartedAt: now}
	log.WithField("now", now).Info("Starting risk refresh")

	incidents, err := j.deps.Incidents.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("service: could not load incidents for refresh: %w", err)
	}
	alerts, err := j.deps.Alerts.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("service: could not load alerts for refresh: %w", err)
	}
	stored, err := j.deps.Cells.ListCells(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: could not load stored cells for refresh: %w", err)
	}

	previous := make(map[string]*models.RiskCell, len(stored))
	for _, c := range stored {
		previous[c.CellID] = c
	}
	candidates := j.candidates(incidents, alerts, stored)
	summary.Candidates = len(candidates)

	var refreshed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.deps.Workers)
	for _, cell := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in := risk.Input{
				Cell:      cell,
				Incidents: incidentsNear(cell.Center, incidents, j.deps.Params.IncidentRadiusMeters),
				Alerts:    alertsNear(cell.Center, alerts, j.deps.Params.AlertRadiusMeters),
				Previous:  previous[cell.ID],
			}
			if err := j.refreshCell(gctx, in, now); err != nil {
				failed.Add(1)
				log.WithError(err).WithField("cell_id", cell.ID).Warn("Failed to refresh cell, skipping")
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("service: risk refresh interrupted: %w", err)
	}

	summary.Refreshed = int(refreshed.Load())
	summary.Failed = int(failed.Load())
	summary.Duration = time.Since(started)

	if err := j.deps.Cache.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("Failed to invalidate risk cell cache")
	}
	j.announce(ctx, log, summary)

	log.WithFields(logrus.Fields{
		"candidates": summary.Candidates,
		"refreshed":  summary.Refreshed,
		"failed":     summary.Failed,
	}).Info("Risk refresh finished")
	return summary, nil
}

// checkResolution не дает смешать ячейки разного размера
func (j *RefreshJob) checkResolution(ctx context.Context) error {
	resolutions, err := j.deps.Cells.CellResolutions(ctx)
	if err != nil {
		return fmt.Errorf("service: could not read stored resolutions: %w", err)
	}
	want := j.deps.Grid.Resolution()
	for _, r := range resolutions {
		if math.Abs(r-want) > 1e-9 {
			return apperr.Config("refresh", "stored cells use grid resolution %v, configured %v", r, want)
		}
	}
	return nil
}

// candidates - ячейки тревог и инцидентов окна плюс все сохраненные ячейки
func (j *RefreshJob) candidates(incidents []*models.IncidentReport, alerts []*models.EmergencyAlert, stored []*models.RiskCell) []geogrid.Cell {
	seen := make(map[string]struct{})
	out := make([]geogrid.Cell, 0, len(stored))
	add := func(c geogrid.Cell) {
		if _, ok := seen[c.ID]; ok {
			return
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}

	for _, a := range alerts {
		add(j.deps.Grid.CellOf(a.Latitude, a.Longitude))
	}
	for _, inc := range incidents {
		add(j.deps.Grid.CellOf(inc.Latitude, inc.Longitude))
	}
	for _, c := range stored {
		add(j.deps.Grid.CellOf(c.Latitude, c.Longitude))
	}
	return out
}

func (j *RefreshJob) refreshCell(ctx context.Context, in risk.Input, now time.Time) error {
	res := risk.Score(j.deps.Params, in, now)

	cell := &models.RiskCell{
		CellID:     in.Cell.ID,
		Latitude:   in.Cell.Center.Lat,
		Longitude:  in.Cell.Center.Lng,
		Score:      res.Score,
		Level:      res.Level,
		ZoneName:   j.zoneName(ctx, in.Cell, in.Previous),
		Resolution: j.deps.Grid.Resolution(),
		BasisScore: res.BasisScore,
		BasisAt:    res.BasisAt,
		UpdatedAt:  now,
	}
	if err := j.deps.Cells.UpsertCell(ctx, cell); err != nil {
		return fmt.Errorf("could not store cell: %w", err)
	}
	return nil
}

// zoneName берет сохраненное название, затем геокодер, затем заглушку
func (j *RefreshJob) zoneName(ctx context.Context, cell geogrid.Cell, prev *models.RiskCell) string {
	if prev != nil && !risk.IsPlaceholderName(prev.ZoneName) {
		return prev.ZoneName
	}
	if j.deps.Namer != nil {
		name, err := j.deps.Namer.ReverseGeocode(ctx, cell.Center.Lat, cell.Center.Lng)
		if err == nil && name != "" {
			return name
		}
		j.deps.Logger.WithError(err).WithField("cell_id", cell.ID).Debug("Reverse geocoding failed, using placeholder")
	}
	j.deps.Metrics.IncGeocodeFallback()
	return risk.PlaceholderName(cell.Center)
}

func (j *RefreshJob) announce(ctx context.Context, log *logrus.Entry, summary *RefreshSummary) {
	if j.deps.Publisher == nil {
		return
	}
	event, err := notify.NewEvent(notify.TopicRiskRefreshed, "", summary)
	if err != nil {
		log.WithError(err).Warn("Failed to build refresh event")
		return
	}
	if err := j.deps.Publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Warn("Failed to publish refresh event")
	}
}

func incidentsNear(center geogrid.Point, incidents []*models.IncidentReport, radius float64) []*models.IncidentReport {
	var out []*models.IncidentReport
	for _, inc := range incidents {
		if geogrid.Distance(center, geogrid.Point{Lat: inc.Latitude, Lng: inc.Longitude}) <= radius {
			out = append(out, inc)
		}
	}
	return out
}

func alertsNear(center geogrid.Point, alerts []*models.EmergencyAlert, radius float64) []*models.EmergencyAlert {
	var out []*models.EmergencyAlert
	for _, a := range alerts {
		if geogrid.Distance(center, geogrid.Point{Lat: a.Latitude, Lng: a.Longitude}) <= radius {
			out = append(out, a)
		}
	}
	return out
}
