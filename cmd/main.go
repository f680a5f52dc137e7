package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenikar/tourist_safety/internal/background"
	"github.com/shenikar/tourist_safety/internal/config"
	"github.com/shenikar/tourist_safety/internal/geocode"
	"github.com/shenikar/tourist_safety/internal/geogrid"
	v1 "github.com/shenikar/tourist_safety/internal/handler/http/v1"
	"github.com/shenikar/tourist_safety/internal/ledger"
	"github.com/shenikar/tourist_safety/internal/metrics"
	"github.com/shenikar/tourist_safety/internal/notify"
	"github.com/shenikar/tourist_safety/internal/repository"
	"github.com/shenikar/tourist_safety/internal/service"
	"github.com/shenikar/tourist_safety/pkg/logger"
	"github.com/shenikar/tourist_safety/pkg/postgres"
	redisclient "github.com/shenikar/tourist_safety/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/tourist_safety/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	observerBuffer    = 64
	backgroundTimeout = 30 * time.Second
	drainTimeout      = 10 * time.Second
)

// @title Tourist Safety API
// @version 1.0
// @description Risk cells, geofence checks, emergency alerts and audit trail for tourist safety.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	grid, err := geogrid.NewGrid(cfg.Risk.GridResolution)
	if err != nil {
		log.Fatalf("Invalid grid configuration: %v", err)
	}

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	m := metrics.New()

	// Фоновые задачи живут дольше ctx, чтобы успеть завершиться при остановке
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	runner := background.NewRunner(bgCtx, log, backgroundTimeout)

	// Оповещения: наблюдатели, очередь Redis, Kafka
	registry := notify.NewRegistry(log, observerBuffer)
	go registry.Run(ctx)

	queue := notify.NewRedisQueue(redisClient)
	var sink notify.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		writer := notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaAlertsTopic)
		defer func() {
			if err := writer.Close(); err != nil {
				log.WithError(err).Warn("Failed to close Kafka writer")
			}
		}()
		sink = notify.NewKafkaSink(writer)
		log.WithField("topic", cfg.KafkaAlertsTopic).Info("Kafka event sink enabled")
	}
	broadcaster := notify.NewBroadcaster(registry, queue, sink, log, m)

	notifyWorker := notify.NewWorker(queue, registry, log, cfg, m)
	notifyWorker.Start(ctx)

	ledgerClient := ledger.NewClient(cfg.LedgerURL, cfg.LedgerAPIKey, cfg.LedgerTimeout)
	geocoder := geocode.NewMapbox(cfg.MapboxBaseURL, cfg.MapboxToken, cfg.GeocodeTimeout)

	// Инициализация репозиториев
	cellRepo := repository.NewRiskCellRepository(dbpool)
	incidentRepo := repository.NewIncidentRepository(dbpool)
	alertRepo := repository.NewAlertRepository(dbpool)
	subjectRepo := repository.NewSubjectRepository(dbpool)
	checkRepo := repository.NewLocationCheckRepository(dbpool)
	riskCache := repository.NewRiskCache(redisClient, cfg.RiskCacheTTL)
	locker := repository.NewRedisLocker(redisClient)

	// Инициализация сервисов
	refreshJob := service.NewRefreshJob(service.RefreshDeps{
		Cells:     cellRepo,
		Incidents: incidentRepo,
		Alerts:    alertRepo,
		Cache:     riskCache,
		Locker:    locker,
		Namer:     geocoder,
		Publisher: broadcaster,
		Params:    cfg.Risk,
		Grid:      grid,
		Workers:   cfg.RefreshWorkers,
		LockTTL:   cfg.RefreshLockTTL,
		Interval:  cfg.RefreshInterval,
		Logger:    log,
		Metrics:   m,
	})
	refreshJob.Start(ctx)

	riskService := service.NewRiskService(cellRepo, riskCache, checkRepo, broadcaster, runner, grid, cfg, log)
	incidentService := service.NewIncidentService(incidentRepo, refreshJob, log)
	alertService := service.NewAlertService(alertRepo, ledgerClient, broadcaster, runner, grid, log, m)
	auditService := service.NewAuditService(subjectRepo, alertRepo, ledgerClient, runner, cfg.AuditSalt, log, m)

	// Инициализация хэндлеров
	handler := v1.NewHandler(v1.Services{
		Risk:      riskService,
		Refresher: refreshJob,
		Incidents: incidentService,
		Alerts:    alertService,
		Audit:     auditService,
		Observers: registry,
	}, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Останавливаем планировщик, воркер и реестр; SSE-потоки закрываются вместе с реестром
	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	// Ждем запись в реестр и публикации событий
	drained := make(chan struct{})
	go func() {
		runner.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		log.Info("Background tasks finished")
	case <-time.After(drainTimeout):
		log.Warn("Background tasks did not finish in time, cancelling")
		bgCancel()
		<-drained
	}

	log.Info("Server gracefully stopped")
}
