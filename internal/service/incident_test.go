package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/service"
	"github.com/shenikar/tourist_safety/internal/service/mocks"
)

// newTestIncidentService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T) (service.IncidentService, *mocks.MockIncidentRepository, *mocks.MockRefreshTrigger) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockIncidentRepository(ctrl)
	triggerMock := mocks.NewMockRefreshTrigger(ctrl)

	svc := service.NewIncidentService(repoMock, triggerMock, silentLogger())
	service.SetIncidentClock(svc, stepClock(baseTime))
	return svc, repoMock, triggerMock
}

func TestReportIncident_Success(t *testing.T) {
	// Подготовка
	svc, repoMock, triggerMock := newTestIncidentService(t)
	ctx := context.Background()

	// Ожидания
	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, r *models.IncidentReport) error {
			assert.NotEqual(t, uuid.Nil, r.ID)
			return nil
		}).
		Times(1)
	triggerMock.EXPECT().Trigger().Times(1)

	// Действие
	report, err := svc.ReportIncident(ctx, service.ReportIncidentInput{
		Title:     "Pickpocketing near gate",
		Category:  "Theft",
		Latitude:  ptr(27.1751),
		Longitude: ptr(78.0421),
		Severity:  ptr(0.9),
		Source:    "Police",
	})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.CategoryTheft, report.Category)
	assert.Equal(t, 0.9, report.Severity)
	assert.Equal(t, "Police", report.Source)
	assert.Equal(t, baseTime, report.ReportedAt)
}

func TestReportIncident_Defaults(t *testing.T) {
	svc, repoMock, triggerMock := newTestIncidentService(t)
	repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	triggerMock.EXPECT().Trigger().Times(1)

	report, err := svc.ReportIncident(context.Background(), service.ReportIncidentInput{
		Category:  "accident",
		Latitude:  ptr(0.0),
		Longitude: ptr(0.0),
	})

	require.NoError(t, err)
	assert.Equal(t, models.DefaultIncidentSeverity, report.Severity)
	assert.Equal(t, models.DefaultIncidentSource, report.Source)
}

func TestReportIncident_CategorySpellings(t *testing.T) {
	for _, raw := range []string{"natural-disaster", "natural_disaster", "Natural Disaster"} {
		t.Run(raw, func(t *testing.T) {
			svc, repoMock, triggerMock := newTestIncidentService(t)
			repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
			triggerMock.EXPECT().Trigger().Times(1)

			report, err := svc.ReportIncident(context.Background(), service.ReportIncidentInput{
				Category:  raw,
				Latitude:  ptr(1.0),
				Longitude: ptr(1.0),
			})

			require.NoError(t, err)
			assert.Equal(t, models.CategoryNaturalDisaster, report.Category)
		})
	}
}

func TestReportIncident_SeverityClamped(t *testing.T) {
	tests := []struct {
		name     string
		severity float64
		want     float64
	}{
		{name: "above one", severity: 4, want: 1},
		{name: "negative", severity: -0.3, want: 0},
		{name: "in range", severity: 0.25, want: 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repoMock, triggerMock := newTestIncidentService(t)
			repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
			triggerMock.EXPECT().Trigger().Times(1)

			report, err := svc.ReportIncident(context.Background(), service.ReportIncidentInput{
				Category:  "riot",
				Latitude:  ptr(10.0),
				Longitude: ptr(10.0),
				Severity:  ptr(tt.severity),
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Severity)
		})
	}
}

func TestReportIncident_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input service.ReportIncidentInput
	}{
		{name: "unknown category", input: service.ReportIncidentInput{Category: "ufo", Latitude: ptr(1.0), Longitude: ptr(1.0)}},
		{name: "missing category", input: service.ReportIncidentInput{Latitude: ptr(1.0), Longitude: ptr(1.0)}},
		{name: "missing latitude", input: service.ReportIncidentInput{Category: "theft", Longitude: ptr(1.0)}},
		{name: "latitude out of range", input: service.ReportIncidentInput{Category: "theft", Latitude: ptr(91.0), Longitude: ptr(1.0)}},
		{name: "nan severity", input: service.ReportIncidentInput{Category: "theft", Latitude: ptr(1.0), Longitude: ptr(1.0), Severity: ptr(math.NaN())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestIncidentService(t)

			report, err := svc.ReportIncident(context.Background(), tt.input)

			assert.Nil(t, report)
			assert.True(t, errors.Is(err, apperr.ErrValidation))
		})
	}
}

func TestReportIncident_RepositoryError(t *testing.T) {
	svc, repoMock, _ := newTestIncidentService(t)
	dbErr := errors.New("db error")
	repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dbErr).Times(1)

	_, err := svc.ReportIncident(context.Background(), service.ReportIncidentInput{
		Category:  "theft",
		Latitude:  ptr(1.0),
		Longitude: ptr(1.0),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}

func TestListIncidents_Success(t *testing.T) {
	// Подготовка
	svc, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()
	expected := []*models.IncidentReport{{ID: uuid.New()}, {ID: uuid.New()}}

	repoMock.EXPECT().ListIncidents(ctx, 1, 10).Return(expected, nil).Times(1)

	// Действие
	incidents, err := svc.ListIncidents(ctx, 1, 10)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, incidents)
}

func TestListIncidents_DefaultPagination(t *testing.T) {
	svc, repoMock, _ := newTestIncidentService(t)
	ctx := context.Background()

	repoMock.EXPECT().ListIncidents(ctx, 1, 20).Return([]*models.IncidentReport{}, nil).Times(1)

	_, err := svc.ListIncidents(ctx, 0, 1000)
	require.NoError(t, err)
}
