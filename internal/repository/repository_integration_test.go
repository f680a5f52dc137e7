//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/shenikar/tourist_safety/internal/apperr"
	"github.com/shenikar/tourist_safety/internal/geogrid"
	"github.com/shenikar/tourist_safety/internal/models"
)

var (
	testPool  *pgxpool.Pool
	testRedis *redis.Client
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	pg, err := tcpostgres.Run(ctx, "postgis/postgis:16-3.4-alpine",
		tcpostgres.WithDatabase("tourist_safety"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgis container: %v\n", err)
		os.Exit(1)
	}
	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get postgres connection string: %v\n", err)
		os.Exit(1)
	}

	mg, err := migrate.New("file://../../migrations", strings.Replace(dsn, "postgres://", "pgx5://", 1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create migrate instance: %v\n", err)
		os.Exit(1)
	}
	if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to postgres: %v\n", err)
		os.Exit(1)
	}

	rc, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start redis container: %v\n", err)
		os.Exit(1)
	}
	addr, err := rc.ConnectionString(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis connection string: %v\n", err)
		os.Exit(1)
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse redis URL: %v\n", err)
		os.Exit(1)
	}
	testRedis = redis.NewClient(opts)

	code := m.Run()

	testPool.Close()
	_ = testRedis.Close()
	_ = testcontainers.TerminateContainer(pg)
	_ = testcontainers.TerminateContainer(rc)
	os.Exit(code)
}

var now = time.Date(2025, 3, 1, 10, 0, 0, 123456000, time.UTC)

func TestRiskCellRepository_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	repo := NewRiskCellRepository(testPool)
	grid, err := geogrid.NewGrid(geogrid.DefaultResolution)
	require.NoError(t, err)

	c := grid.CellOf(27.1751, 78.0421)
	cell := &models.RiskCell{
		CellID:     c.ID,
		Latitude:   c.Center.Lat,
		Longitude:  c.Center.Lng,
		Score:      0.72,
		Level:      models.RiskHigh,
		ZoneName:   "Taj Ganj",
		Resolution: grid.Resolution(),
		BasisScore: 0.4,
		BasisAt:    now.Add(-time.Hour),
		UpdatedAt:  now,
	}
	require.NoError(t, repo.UpsertCell(ctx, cell))

	got, err := repo.GetCell(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cell, got)

	// повторная запись заменяет строку
	cell.Score = 0.31
	cell.Level = models.RiskMedium
	cell.BasisAt = time.Time{}
	require.NoError(t, repo.UpsertCell(ctx, cell))
	got, err = repo.GetCell(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.31, got.Score)
	assert.True(t, got.BasisAt.IsZero())

	near, err := repo.CellsWithin(ctx, 27.1751, 78.0421, 1000)
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, c.ID, near[0].CellID)

	far, err := repo.CellsWithin(ctx, 28.6139, 77.2090, 1000)
	require.NoError(t, err)
	assert.Empty(t, far)

	resolutions, err := repo.CellResolutions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{geogrid.DefaultResolution}, resolutions)

	_, err = repo.GetCell(ctx, "0.00225_0.00225")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestIncidentRepository_ListSince(t *testing.T) {
	ctx := context.Background()
	repo := NewIncidentRepository(testPool)

	old := &models.IncidentReport{ID: uuid.New(), Category: models.CategoryTheft, Latitude: 10, Longitude: 10, Severity: 0.5, Source: "User", ReportedAt: now.Add(-10 * 24 * time.Hour)}
	recent := &models.IncidentReport{ID: uuid.New(), Title: "Flood", Category: models.CategoryNaturalDisaster, Latitude: 10.001, Longitude: 10.001, Severity: 0.9, Source: "Police", ReportedAt: now}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, recent))

	got, err := repo.ListSince(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Contains(t, ids, recent.ID)
	assert.NotContains(t, ids, old.ID)

	page, err := repo.ListIncidents(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestAlertRepository_ConcurrentAssignsAreSerialized(t *testing.T) {
	ctx := context.Background()
	repo := NewAlertRepository(testPool)

	alert := &models.EmergencyAlert{
		ID:          uuid.New(),
		SubjectID:   "tourist-1",
		Latitude:    27.1751,
		Longitude:   78.0421,
		Reason:      "medical",
		Status:      models.StatusNew,
		Assignments: []models.AuthorityRef{},
		CreatedAt:   now,
		UpdatedAt:   now,
		Ledger:      models.LedgerAudit{EventID: "e1", PayloadHash: "0xabc"},
	}
	require.NoError(t, repo.Create(ctx, alert))

	const n = 10
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			at := now.Add(time.Duration(i+1) * time.Minute)
			_, err := repo.Update(ctx, alert.ID, func(a *models.EmergencyAlert) error {
				return a.Assign(models.AuthorityRef{AuthorityID: fmt.Sprintf("A%d", i), FullName: "Officer", Role: "police"}, "", at)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResponding, got.Status)
	assert.Len(t, got.Assignments, n)
	require.NotNil(t, got.ResponseAt)
	assert.Equal(t, got.Assignments[0].AssignedAt, *got.ResponseAt)

	_, err = repo.Update(ctx, alert.ID, func(a *models.EmergencyAlert) error { return a.Resolve(now.Add(time.Hour)) })
	require.NoError(t, err)
	_, err = repo.Update(ctx, alert.ID, func(a *models.EmergencyAlert) error { return a.Resolve(now.Add(2 * time.Hour)) })
	assert.True(t, errors.Is(err, apperr.ErrStateTransition))

	require.NoError(t, repo.UpdateLedger(ctx, alert.ID, models.LedgerAudit{TxRef: "0xtx", OnChain: true}))
	got, err = repo.GetByID(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "0xtx", got.Ledger.TxRef)
	assert.Equal(t, "0xabc", got.Ledger.PayloadHash)
	assert.Equal(t, now, got.CreatedAt)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts[models.StatusResolved], 1)

	resolved, err := repo.ListByStatus(ctx, []models.AlertStatus{models.StatusResolved})
	require.NoError(t, err)
	assert.NotEmpty(t, resolved)

	_, err = repo.Update(ctx, uuid.New(), func(*models.EmergencyAlert) error { return nil })
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSubjectRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSubjectRepository(testPool)

	subject := &models.Subject{
		SubjectID:      "tourist-" + uuid.NewString(),
		NaturalKeyHash: "nk",
		Audit: models.AuditRecord{
			PayloadHash:     "ph",
			EventID:         "ev",
			ContentHash:     "ch",
			RegisteredAtISO: "2025-03-01T10:00:00.000Z",
		},
		CreatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, subject))

	err := repo.Create(ctx, subject)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	require.NoError(t, repo.UpdateTxRef(ctx, subject.SubjectID, models.LedgerNotRecorded))
	got, err := repo.GetByID(ctx, subject.SubjectID)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerNotRecorded, got.Audit.TxRef)
	assert.Equal(t, "ph", got.Audit.PayloadHash)

	_, err = repo.GetByID(ctx, "ghost")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestLocationCheckRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLocationCheckRepository(testPool)

	for _, subject := range []string{"s1", "s2", "s1"} {
		check := &models.LocationCheck{SubjectID: subject, Latitude: 1, Longitude: 1, CellID: "0.99900_0.99900", RiskLevel: models.RiskLow}
		require.NoError(t, repo.SaveLocationCheck(ctx, check))
		assert.NotZero(t, check.ID)
	}

	count, err := repo.CountRecentSubjects(ctx, 60)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 2)
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	locker := NewRedisLocker(testRedis)
	key := "lock:" + uuid.NewString()

	token, ok, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// чужой токен не снимает блокировку
	require.NoError(t, locker.Unlock(ctx, key, "someone-else"))
	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Unlock(ctx, key, token))
	_, ok, err = locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRiskCache(t *testing.T) {
	ctx := context.Background()
	cache := NewRiskCache(testRedis, time.Minute)
	require.NoError(t, cache.Invalidate(ctx))

	_, hit, err := cache.GetCells(ctx)
	require.NoError(t, err)
	assert.False(t, hit)

	cells := []*models.RiskCell{{
		CellID: "1.00125_1.00125", Latitude: 1.00125, Longitude: 1.00125,
		Score: 0.5, Level: models.RiskMedium, ZoneName: "Zone", Resolution: geogrid.DefaultResolution,
		BasisScore: 0.2, BasisAt: now.Add(-time.Hour), UpdatedAt: now,
	}}
	require.NoError(t, cache.SetCells(ctx, cells))

	got, hit, err := cache.GetCells(ctx)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, cells, got)

	require.NoError(t, cache.Invalidate(ctx))
	_, hit, err = cache.GetCells(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
}
