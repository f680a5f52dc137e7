package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/audit"
	"github.com/shenikar/tourist_safety/internal/background"
	"github.com/shenikar/tourist_safety/internal/geogrid"
	"github.com/shenikar/tourist_safety/internal/models"
	"github.com/shenikar/tourist_safety/internal/notify"
	notifymocks "github.com/shenikar/tourist_safety/internal/notify/mocks"
	"github.com/shenikar/tourist_safety/internal/service"
	"github.com/shenikar/tourist_safety/internal/service/mocks"
)

type alertFixture struct {
	svc       service.AlertService
	repo      *mocks.MockAlertRepository
	ledger    *mocks.MockLedgerClient
	publisher *notifymocks.MockPublisher
	runner    *background.Runner
}

// newTestAlertService - вспомогательная функция для создания сервиса с моками
func newTestAlertService(t *testing.T) *alertFixture {
	ctrl := gomock.NewController(t)
	grid, err := geogrid.NewGrid(geogrid.DefaultResolution)
	require.NoError(t, err)

	f := &alertFixture{
		repo:      mocks.NewMockAlertRepository(ctrl),
		ledger:    mocks.NewMockLedgerClient(ctrl),
		publisher: notifymocks.NewMockPublisher(ctrl),
		runner:    newRunner(t),
	}
	f.svc = service.NewAlertService(f.repo, f.ledger, f.publisher, f.runner, grid, silentLogger(), nil)
	return f
}

// inMemoryUpdate имитирует Update репозитория: mutate над копией, сохранение при успехе
func (f *alertFixture) inMemoryUpdate(stored *models.EmergencyAlert) {
	var mu sync.Mutex
	f.repo.EXPECT().
		Update(gomock.Any(), stored.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, mutate func(*models.EmergencyAlert) error) (*models.EmergencyAlert, error) {
			mu.Lock()
			defer mu.Unlock()
			cp := *stored
			cp.Assignments = append([]models.AuthorityRef(nil), stored.Assignments...)
			if err := mutate(&cp); err != nil {
				return nil, err
			}
			*stored = cp
			out := cp
			return &out, nil
		}).
		AnyTimes()
}

func validAlertInput() service.CreateAlertInput {
	return service.CreateAlertInput{
		SubjectID:    "tourist-42",
		Latitude:     ptr(27.1751),
		Longitude:    ptr(78.0421),
		LocationName: "Taj Mahal",
		SafetyScore:  72,
		Reason:       "lost in crowd",
	}
}

func TestCreateAlert_Success(t *testing.T) {
	// Подготовка
	f := newTestAlertService(t)
	service.SetAlertClock(f.svc, stepClock(baseTime))
	ctx := context.Background()

	var created *models.EmergencyAlert
	f.repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, a *models.EmergencyAlert) error {
			created = a
			return nil
		}).
		Times(1)
	f.ledger.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("0xfeed", nil).
		Times(1)
	ledgerStored := make(chan models.LedgerAudit, 1)
	f.repo.EXPECT().
		UpdateLedger(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, l models.LedgerAudit) error {
			ledgerStored <- l
			return nil
		}).
		Times(1)
	f.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e notify.Event) error {
			assert.Equal(t, notify.TopicAlertCreated, e.Topic)
			assert.Equal(t, "tourist-42", e.SubjectID)
			return nil
		}).
		Times(1)

	// Действие
	alert, err := f.svc.Create(ctx, validAlertInput())
	f.runner.Wait()

	// Проверки
	require.NoError(t, err)
	assert.Same(t, created, alert)
	assert.Equal(t, models.StatusNew, alert.Status)
	assert.Equal(t, baseTime, alert.CreatedAt)
	assert.Empty(t, alert.Assignments)
	assert.Len(t, alert.Ledger.EventID, 64)

	want := audit.AlertFields{
		AlertID:   alert.ID.String(),
		SubjectID: "tourist-42",
		Latitude:  27.1751,
		Longitude: 78.0421,
		Reason:    "lost in crowd",
		CreatedAt: baseTime,
	}.Hash()
	assert.Equal(t, want, alert.Ledger.PayloadHash)

	l := <-ledgerStored
	assert.Equal(t, "0xfeed", l.TxRef)
	assert.True(t, l.OnChain)
	assert.Equal(t, alert.Ledger.EventID, l.EventID)
}

func TestCreateAlert_ValidationError(t *testing.T) {
	f := newTestAlertService(t)
	input := validAlertInput()
	input.Latitude = nil

	alert, err := f.svc.Create(context.Background(), input)

	require.Error(t, err)
	assert.Nil(t, alert)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateAlert_OutOfRangeCoordinates(t *testing.T) {
	f := newTestAlertService(t)
	input := validAlertInput()
	input.Longitude = ptr(181.0)

	_, err := f.svc.Create(context.Background(), input)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateAlert_BlankReasonRejected(t *testing.T) {
	// Create не ожидается: пустая после обрезки причина не доходит до репозитория
	f := newTestAlertService(t)
	input := validAlertInput()
	input.Reason = "   \t "

	alert, err := f.svc.Create(context.Background(), input)

	require.Error(t, err)
	assert.Nil(t, alert)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCreateAlert_RepositoryError(t *testing.T) {
	f := newTestAlertService(t)
	dbErr := errors.New("db down")
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(dbErr).Times(1)

	alert, err := f.svc.Create(context.Background(), validAlertInput())
	f.runner.Wait()

	require.Error(t, err)
	assert.Nil(t, alert)
	assert.ErrorIs(t, err, dbErr)
}

// Реестр недоступен: тревога создана, запись помечена not-recorded
func TestCreateAlert_LedgerUnavailable(t *testing.T) {
	f := newTestAlertService(t)
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	f.ledger.EXPECT().
		Submit(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", apperr.Dependency("ledger", errors.New("connection refused"))).
		Times(1)
	f.repo.EXPECT().
		UpdateLedger(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, l models.LedgerAudit) error {
			assert.Equal(t, models.LedgerNotRecorded, l.TxRef)
			assert.False(t, l.OnChain)
			return nil
		}).
		Times(1)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	alert, err := f.svc.Create(context.Background(), validAlertInput())
	f.runner.Wait()

	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, alert.Status)
}

func TestAlertLifecycle_AssignTwiceThenResolve(t *testing.T) {
	f := newTestAlertService(t)
	stored := &models.EmergencyAlert{
		ID:          uuid.New(),
		SubjectID:   "tourist-42",
		Status:      models.StatusNew,
		Assignments: []models.AuthorityRef{},
		CreatedAt:   baseTime,
	}
	f.inMemoryUpdate(stored)

	var mu sync.Mutex
	var topics []string
	f.publisher.EXPECT().
		Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e notify.Event) error {
			mu.Lock()
			topics = append(topics, e.Topic)
			mu.Unlock()
			return nil
		}).
		Times(3)

	service.SetAlertClock(f.svc, stepClock(
		baseTime.Add(2*time.Minute),
		baseTime.Add(10*time.Minute),
		baseTime.Add(time.Hour),
	))
	ctx := context.Background()
	a1 := service.AuthorityInput{AuthorityID: "A1", FullName: "Officer One", Role: "police"}
	a2 := service.AuthorityInput{AuthorityID: "A2", FullName: "Officer Two", Role: "medic"}

	first, err := f.svc.Assign(ctx, stored.ID, a1, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusResponding, first.Status)
	require.NotNil(t, first.ResponseAt)
	responseAt := *first.ResponseAt

	second, err := f.svc.Assign(ctx, stored.ID, a2, "")
	require.NoError(t, err)
	assert.Len(t, second.Assignments, 2)
	assert.Equal(t, responseAt, *second.ResponseAt)

	resolved, err := f.svc.Resolve(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, resolved.Status)
	assert.True(t, resolved.ResponseAt.Before(*resolved.ResolvedAt))
	assert.True(t, resolved.ResponseAt.After(resolved.CreatedAt))

	_, err = f.svc.Assign(ctx, stored.ID, a1, "")
	assert.True(t, errors.Is(err, apperr.ErrStateTransition))
	_, err = f.svc.Resolve(ctx, stored.ID)
	assert.True(t, errors.Is(err, apperr.ErrStateTransition))

	f.runner.Wait()
	assert.ElementsMatch(t, []string{notify.TopicAlertAssigned, notify.TopicAlertAssigned, notify.TopicAlertResolved}, topics)
}

func TestAlertLifecycle_AssignOnceThenResolve(t *testing.T) {
	f := newTestAlertService(t)
	stored := &models.EmergencyAlert{
		ID:        uuid.New(),
		SubjectID: "tourist-7",
		Status:    models.StatusNew,
		CreatedAt: baseTime,
	}
	f.inMemoryUpdate(stored)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	service.SetAlertClock(f.svc, stepClock(baseTime.Add(time.Minute), baseTime.Add(30*time.Minute)))
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, stored.ID, service.AuthorityInput{AuthorityID: "A1", FullName: "Officer One", Role: "police"}, "")
	require.NoError(t, err)
	final, err := f.svc.Resolve(ctx, stored.ID)
	require.NoError(t, err)
	f.runner.Wait()

	assert.Equal(t, models.StatusResolved, final.Status)
	assert.Len(t, final.Assignments, 1)
	assert.True(t, final.ResponseAt.Before(*final.ResolvedAt))
	assert.True(t, final.ResponseAt.After(final.CreatedAt))
	assert.True(t, final.ResolvedAt.After(final.CreatedAt))
}

func TestAcknowledgeAndClose(t *testing.T) {
	f := newTestAlertService(t)
	stored := &models.EmergencyAlert{ID: uuid.New(), Status: models.StatusNew, CreatedAt: baseTime}
	f.inMemoryUpdate(stored)
	f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	ctx := context.Background()
	by := service.AuthorityInput{AuthorityID: "A1", FullName: "Officer One", Role: "police"}

	acked, err := f.svc.Acknowledge(ctx, stored.ID, by)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAcknowledged, acked.Status)

	_, err = f.svc.Close(ctx, stored.ID)
	assert.True(t, errors.Is(err, apperr.ErrStateTransition))

	_, err = f.svc.Resolve(ctx, stored.ID)
	require.NoError(t, err)
	closed, err := f.svc.Close(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, closed.Status)
	f.runner.Wait()
}

func TestAssign_InvalidAuthority(t *testing.T) {
	f := newTestAlertService(t)

	_, err := f.svc.Assign(context.Background(), uuid.New(), service.AuthorityInput{AuthorityID: "A1"}, "")

	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestResolve_NotFound(t *testing.T) {
	f := newTestAlertService(t)
	id := uuid.New()
	f.repo.EXPECT().
		Update(gomock.Any(), id, gomock.Any()).
		Return(nil, apperr.NotFound("alert", "alert %s not found", id)).
		Times(1)

	_, err := f.svc.Resolve(context.Background(), id)

	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListByStatus(t *testing.T) {
	tests := []struct {
		name   string
		filter string
		want   []models.AlertStatus
	}{
		{name: "open", filter: "open", want: models.OpenStatuses},
		{name: "empty means open", filter: "", want: models.OpenStatuses},
		{name: "active", filter: "active", want: models.ActiveStatuses},
		{name: "single status", filter: "responding", want: []models.AlertStatus{models.StatusResponding}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestAlertService(t)
			expected := []*models.EmergencyAlert{{ID: uuid.New()}}
			f.repo.EXPECT().ListByStatus(gomock.Any(), tt.want).Return(expected, nil).Times(1)

			alerts, err := f.svc.ListByStatus(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Equal(t, expected, alerts)
		})
	}
}

func TestListByStatus_UnknownFilter(t *testing.T) {
	f := newTestAlertService(t)

	_, err := f.svc.ListByStatus(context.Background(), "pending")

	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCounts_FillsMissingStatuses(t *testing.T) {
	f := newTestAlertService(t)
	f.repo.EXPECT().
		CountByStatus(gomock.Any()).
		Return(map[models.AlertStatus]int{models.StatusNew: 3, models.StatusResolved: 1}, nil).
		Times(1)

	counts, err := f.svc.Counts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[models.AlertStatus]int{
		models.StatusNew:          3,
		models.StatusAcknowledged: 0,
		models.StatusResponding:   0,
		models.StatusResolved:     1,
		models.StatusClosed:       0,
	}, counts)
}

func TestHeatmap_GroupsByCell(t *testing.T) {
	f := newTestAlertService(t)
	alerts := []*models.EmergencyAlert{
		{ID: uuid.New(), Latitude: 27.1751, Longitude: 78.0421},
		{ID: uuid.New(), Latitude: 27.1752, Longitude: 78.0422},
		{ID: uuid.New(), Latitude: 28.6139, Longitude: 77.2090},
	}
	f.repo.EXPECT().ListByStatus(gomock.Any(), models.ActiveStatuses).Return(alerts, nil).Times(1)

	points, err := f.svc.Heatmap(context.Background())

	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 2, points[0].Count)
	assert.Equal(t, 1.0, points[0].Intensity)
	assert.Equal(t, 1, points[1].Count)
	assert.Equal(t, 0.5, points[1].Intensity)
}
