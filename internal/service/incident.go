package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/models"
)

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, report *models.IncidentReport) error
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.IncidentReport, error)
	ListSince(ctx context.Context, since time.Time) ([]*models.IncidentReport, error)
}

// RefreshTrigger запрашивает внеочередной пересчет риска
type RefreshTrigger interface {
	Trigger()
}

// ReportIncidentInput - данные сообщения об инциденте
type ReportIncidentInput struct {
	Title     string   `validate:"max=255"`
	Category  string   `validate:"required"`
	Latitude  *float64 `validate:"required,latitude"`
	Longitude *float64 `validate:"required,longitude"`
	Severity  *float64
	Source    string `validate:"max=64"`
}

// IncidentService определяет контракт для приема сообщений об инцидентах
type IncidentService interface {
	ReportIncident(ctx context.Context, input ReportIncidentInput) (*models.IncidentReport, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.IncidentReport, error)
}

type incidentService struct {
	repo     IncidentRepository
	refresh  RefreshTrigger
	validate *validator.Validate
	logger   *logrus.Logger
	now      func() time.Time
}

func NewIncidentService(repo IncidentRepository, refresh RefreshTrigger, logger *logrus.Logger) IncidentService {
	return &incidentService{
		repo:     repo,
		refresh:  refresh,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// ReportIncident сохраняет инцидент и запрашивает пересчет риска
func (s *incidentService) ReportIncident(ctx context.Context, input ReportIncidentInput) (*models.IncidentReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "ReportIncident",
		"category": input.Category,
	})
	log.Info("Attempting to report a new incident")

	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.Validation("incident", "%s", validationMessage(err))
	}

	category := models.ParseIncidentCategory(input.Category)
	if !category.Valid() {
		return nil, apperr.Validation("incident", "unknown category %q", input.Category)
	}

	severity := models.DefaultIncidentSeverity
	if input.Severity != nil {
		if math.IsNaN(*input.Severity) || math.IsInf(*input.Severity, 0) {
			return nil, apperr.Validation("incident", "severity must be a finite number")
		}
		severity = math.Min(math.Max(*input.Severity, 0), 1)
	}

	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = models.DefaultIncidentSource
	}

	report := &models.IncidentReport{
		ID:         uuid.New(),
		Title:      strings.TrimSpace(input.Title),
		Category:   category,
		Latitude:   *input.Latitude,
		Longitude:  *input.Longitude,
		Severity:   severity,
		Source:     source,
		ReportedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	if err := s.repo.Create(ctx, report); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}

	if s.refresh != nil {
		s.refresh.Trigger()
	}

	log.WithFields(logrus.Fields{
		"incident_id": report.ID,
		"severity":    report.Severity,
	}).Info("Incident reported successfully")
	return report, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *incidentService) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.IncidentReport, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "ListIncidents",
		"page":      page,
		"page_size": pageSize,
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.ListIncidents(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}
