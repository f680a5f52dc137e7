package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/audit"
	"github.com/shenikar/tourist_safety/internal/geogrid"
	"github.com/shenikar/tourist_safety/internal/metrics"
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/notify"
)

// AlertRepository определяет контракт хранилища тревог.
// Update выполняет mutate под блокировкой строки и сохраняет результат.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.EmergencyAlert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EmergencyAlert, error)
	Update(ctx context.Context, id uuid.UUID, mutate func(alert *models.EmergencyAlert) error) (*models.EmergencyAlert, error)
	UpdateLedger(ctx context.Context, id uuid.UUID, ledger models.LedgerAudit) error
	ListByStatus(ctx context.Context, statuses []models.AlertStatus) ([]*models.EmergencyAlert, error)
	ListSince(ctx context.Context, since time.Time) ([]*models.EmergencyAlert, error)
	CountByStatus(ctx context.Context) (map[models.AlertStatus]int, error)
}

// LedgerClient - клиент внешнего реестра аудита
type LedgerClient interface {
	Submit(ctx context.Context, eventID, payloadHash string) (string, error)
	Verify(ctx context.Context, eventID, payloadHash string) (bool, error)
}

// CreateAlertInput - данные новой тревоги
type CreateAlertInput struct {
	SubjectID    string   `validate:"required,max=128"`
	Latitude     *float64 `validate:"required,latitude"`
	Longitude    *float64 `validate:"required,longitude"`
	LocationName string   `validate:"max=255"`
	SafetyScore  float64  `validate:"gte=0,lte=100"`
	Reason       string   `validate:"required,max=1000"`
}

// AuthorityInput - сотрудник, выполняющий действие
type AuthorityInput struct {
	AuthorityID string `validate:"required"`
	FullName    string `validate:"required"`
	Role        string `validate:"required"`
}

// HeatmapPoint - активные тревоги одной ячейки
type HeatmapPoint struct {
	CellID    string  `json:"cell_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
	Intensity float64 `json:"intensity"`
}

// Фильтры списка тревог
const (
	FilterOpen   = "open"
	FilterActive = "active"
)

// AlertService определяет контракт жизненного цикла тревог
type AlertService interface {
	Create(ctx context.Context, input CreateAlertInput) (*models.EmergencyAlert, error)
	Get(ctx context.Context, id uuid.UUID) (*models.EmergencyAlert, error)
	ListByStatus(ctx context.Context, filter string) ([]*models.EmergencyAlert, error)
	Acknowledge(ctx context.Context, id uuid.UUID, by AuthorityInput) (*models.EmergencyAlert, error)
	Assign(ctx context.Context, id uuid.UUID, by AuthorityInput, responseTime string) (*models.EmergencyAlert, error)
	Resolve(ctx context.Context, id uuid.UUID) (*models.EmergencyAlert, error)
	Close(ctx context.Context, id uuid.UUID) (*models.EmergencyAlert, error)
	Counts(ctx context.Context) (map[models.AlertStatus]int, error)
	Heatmap(ctx context.Context) ([]HeatmapPoint, error)
}

type alertService struct {
	repo      AlertRepository
	ledger    LedgerClient
	publisher notify.Publisher
	runner    TaskRunner
	grid      geogrid.Grid
	validate  *validator.Validate
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewAlertService(repo AlertRepository, ledger LedgerClient, publisher notify.Publisher, runner TaskRunner, grid geogrid.Grid, logger *logrus.Logger, m *metrics.Metrics) AlertService {
	return &alertService{
		repo:      repo,
		ledger:    ledger,
		publisher: publisher,
		runner:    runner,
		grid:      grid,
		validate:  validator.New(),
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Create сохраняет тревогу в статусе new. Запись в реестр и оповещение
// выполняются в фоне и не задерживают ответ.
func (s *alertService) Create(ctx context.Context, input CreateAlertInput) (*models.EmergencyAlert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "alert",
		"method":     "Create",
		"subject_id": input.SubjectID,
	})
	log.Info("Attempting to create a new alert")

	input.SubjectID = strings.TrimSpace(input.SubjectID)
	input.LocationName = strings.TrimSpace(input.LocationName)
	input.Reason = strings.TrimSpace(input.Reason)
	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.Validation("alert", "%s", validationMessage(err))
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	alert := &models.EmergencyAlert{
		ID:           uuid.New(),
		SubjectID:    input.SubjectID,
		Latitude:     *input.Latitude,
		Longitude:    *input.Longitude,
		LocationName: input.LocationName,
		SafetyScore:  input.SafetyScore,
		Reason:       input.Reason,
		Status:       models.StatusNew,
		Assignments:  []models.AuthorityRef{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	alert.Ledger = models.LedgerAudit{
		EventID:     audit.NewEventID(alert.SubjectID),
		PayloadHash: alertFields(alert).Hash(),
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to create alert in repository")
		return nil, fmt.Errorf("service: could not create alert: %w", err)
	}
	s.metrics.IncAlertTransition(string(models.StatusNew))

	id, ledger := alert.ID, alert.Ledger
	s.runner.Go("ledger.submit.alert", func(ctx context.Context) error {
		return s.submitToLedger(ctx, id, ledger)
	})
	s.announce(notify.TopicAlertCreated, alert)

	log.WithField("alert_id", alert.ID).Info("Alert created successfully")
	return alert, nil
}

func (s *alertService) submitToLedger(ctx context.Context, id uuid.UUID, ledger models.LedgerAudit) error {
	tx, err := s.ledger.Submit(ctx, ledger.EventID, ledger.PayloadHash)
	if err != nil {
		s.metrics.IncLedgerSubmit("alert", "failed")
		s.logger.WithError(err).WithField("alert_id", id).Warn("Ledger submission failed, alert marked as not recorded")
		ledger.TxRef = models.LedgerNotRecorded
		ledger.OnChain = false
	} else {
		s.metrics.IncLedgerSubmit("alert", "ok")
		ledger.TxRef = tx
		ledger.OnChain = true
	}
	if err := s.repo.UpdateLedger(ctx, id, ledger); err != nil {
		return fmt.Errorf("service: could not store ledger reference for alert %s: %w", id, err)
	}
	return nil
}

// Get возвращает тревогу по id
func (s *alertService) Get(ctx context.Context, id uuid.UUID) (*models.EmergencyAlert, error) {
	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":  "alert",
			"method":   "Get",
			"alert_id": id,
		}).WithError(err).Warn("Failed to get alert")
		return nil, fmt.Errorf("service: could not get alert: %w", err)
	}
	return alert, nil
}

// ListByStatus принимает open, active или один из статусов
func (s *alertService) ListByStatus(ctx context.Context, filter string) ([]*models.EmergencyAlert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "ListByStatus",
		"filter":  filter,
	})

	var statuses []models.AlertStatus
	switch filter {
	case FilterOpen, "":
		statuses = models.OpenStatuses
	case FilterActive:
		statuses = models.ActiveStatuses
	default:
		status := models.AlertStatus(filter)
		if !status.Valid() {
			return nil, apperr.Validation("alert", "unknown status filter %q", filter)
		}
		statuses = []models.AlertStatus{status}
	}

	alerts, err := s.repo.ListByStatus(ctx, statuses)
	if err != nil {
		log.WithError(err).Error("Failed to list alerts from repository")
		return nil, fmt.Errorf("service: could not list alerts: %w", err)
	}
	log.WithField("count", len(alerts)).Info("Alerts listed successfully")
	return alerts, nil
}

// Acknowledge переводит new в acknowledged
func (s *alertService) Acknowledge(ctx context.Context, id uuid.UUID, by AuthorityInput) (*models.EmergencyAlert, error) {
	if err := s.validate.Struct(by); err != nil {
		return nil, apperr.Validation("alert", "%s", validationMessage(err))
	}
	return s.transition(ctx, "Acknowledge", id, notify.TopicAlertAcknowledged, func(a *models.EmergencyAlert, now time.Time) error {
		return a.Acknowledge(now)
	})
}

// Assign назначает сотрудника. responseTime необязателен.
func (s *alertService) Assign(ctx context.Context, id uuid.UUID, by AuthorityInput, responseTime string) (*models.EmergencyAlert, error) {
	if err := s.validate.Struct(by); err != nil {
		return nil, apperr.Validation("alert", "%s", validationMessage(err))
	}
	return s.transition(ctx, "Assign", id, notify.TopicAlertAssigned, func(a *models.EmergencyAlert, now time.Time) error {
		ref := models.AuthorityRef{
			AuthorityID: by.AuthorityID,
			FullName:    by.FullName,
			Role:        by.Role,
			AssignedAt:  now,
		}
		return a.Assign(ref, responseTime, now)
	})
}

// Resolve завершает реагирование
func (s *alertService) Resolve(ctx context.Context, id uuid.UUID) (*models.EmergencyAlert, error) {
	return s.transition(ctx, "Resolve", id, notify.TopicAlertResolved, func(a *models.EmergencyAlert, now time.Time) error {
		return a.Resolve(now)
	})
}

// Close архивирует решенную тревогу
func (s *alertService) Close(ctx context.Context, id uuid.UUID) (*models.EmergencyAlert, error) {
	return s.transition(ctx, "Close", id, notify.TopicAlertClosed, func(a *models.EmergencyAlert, now time.Time) error {
		return a.Close(now)
	})
}

// transition меняет тревогу под блокировкой строки. Реестр и оповещения
// вызываются уже после фиксации.
func (s *alertService) transition(ctx context.Context, method string, id uuid.UUID, topic string, mutate func(a *models.EmergencyAlert, now time.Time) error) (*models.EmergencyAlert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   method,
		"alert_id": id,
	})
	log.Info("Attempting alert transition")

	updated, err := s.repo.Update(ctx, id, func(a *models.EmergencyAlert) error {
		return mutate(a, s.now().UTC().Truncate(time.Microsecond))
	})
	if err != nil {
		log.WithError(err).Warn("Alert transition rejected")
		return nil, fmt.Errorf("service: could not %s alert: %w", strings.ToLower(method), err)
	}

	s.metrics.IncAlertTransition(string(updated.Status))
	s.announce(topic, updated)

	log.WithField("status", updated.Status).Info("Alert transition applied")
	return updated, nil
}

func (s *alertService) announce(topic string, alert *models.EmergencyAlert) {
	event, err := notify.NewEvent(topic, alert.SubjectID, alert)
	if err != nil {
		s.logger.WithError(err).WithField("topic", topic).Error("Failed to build alert event")
		return
	}
	s.runner.Go("notify."+topic, func(ctx context.Context) error {
		return s.publisher.Publish(ctx, event)
	})
}

// Counts возвращает количество тревог по статусам. Отсутствующие статусы равны нулю.
func (s *alertService) Counts(ctx context.Context) (map[models.AlertStatus]int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "alert",
			"method":  "Counts",
		}).WithError(err).Error("Failed to count alerts")
		return nil, fmt.Errorf("service: could not count alerts: %w", err)
	}
	out := make(map[models.AlertStatus]int, len(counts))
	for _, st := range []models.AlertStatus{models.StatusNew, models.StatusAcknowledged, models.StatusResponding, models.StatusResolved, models.StatusClosed} {
		out[st] = counts[st]
	}
	return out, nil
}

// Heatmap группирует активные тревоги по ячейкам сетки.
// Intensity - доля от самой нагруженной ячейки.
func (s *alertService) Heatmap(ctx context.Context) ([]HeatmapPoint, error) {
	alerts, err := s.repo.ListByStatus(ctx, models.ActiveStatuses)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "alert",
			"method":  "Heatmap",
		}).WithError(err).Error("Failed to list active alerts")
		return nil, fmt.Errorf("service: could not build alert heatmap: %w", err)
	}

	byCell := make(map[string]*HeatmapPoint)
	maxCount := 0
	for _, a := range alerts {
		cell := s.grid.CellOf(a.Latitude, a.Longitude)
		p, ok := byCell[cell.ID]
		if !ok {
			p = &HeatmapPoint{CellID: cell.ID, Latitude: cell.Center.Lat, Longitude: cell.Center.Lng}
			byCell[cell.ID] = p
		}
		p.Count++
		if p.Count > maxCount {
			maxCount = p.Count
		}
	}

	points := make([]HeatmapPoint, 0, len(byCell))
	for _, p := range byCell {
		p.Intensity = math.Round(float64(p.Count)/float64(maxCount)*1000) / 1000
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Count != points[j].Count {
			return points[i].Count > points[j].Count
		}
		return points[i].CellID < points[j].CellID
	})
	return points, nil
}

func alertFields(a *models.EmergencyAlert) audit.AlertFields {
	return audit.AlertFields{
		AlertID:   a.ID.String(),
		SubjectID: a.SubjectID,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
		Reason:    a.Reason,
		CreatedAt: a.CreatedAt,
	}
}

// validationMessage собирает ошибки валидатора в одну строку
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
