package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shenikar/tourist_safety/internal/risk"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Stats Config
	StatsTimeWindowMinutes int `env:"STATS_TIME_WINDOW_MINUTES" envDefault:"60"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`

	// JWT Config
	JWTSecret string `env:"JWT_SECRET"`
	JWTIssuer string `env:"JWT_ISSUER"`

	// Risk Config
	Risk            risk.Params
	RefreshInterval time.Duration `env:"RISK_REFRESH_INTERVAL" envDefault:"30m"`
	RefreshWorkers  int           `env:"RISK_REFRESH_WORKERS" envDefault:"8"`
	RefreshLockTTL  time.Duration `env:"RISK_REFRESH_LOCK_TTL" envDefault:"10m"`
	WarningRadius   float64       `env:"GEOFENCE_WARNING_RADIUS_METERS" envDefault:"1000"`
	RiskCacheTTL    time.Duration `env:"RISK_CACHE_TTL" envDefault:"5m"`

	// Ledger Config
	LedgerURL     string        `env:"LEDGER_URL"`
	LedgerAPIKey  string        `env:"LEDGER_API_KEY"`
	LedgerTimeout time.Duration `env:"LEDGER_TIMEOUT" envDefault:"10s"`
	AuditSalt     string        `env:"AUDIT_SALT"`

	// Geocoder Config
	MapboxToken    string        `env:"MAPBOX_TOKEN"`
	MapboxBaseURL  string        `env:"MAPBOX_BASE_URL" envDefault:"https://api.mapbox.com"`
	GeocodeTimeout time.Duration `env:"GEOCODE_TIMEOUT" envDefault:"5s"`

	// Kafka Config
	KafkaBrokers     []string `env:"KAFKA_BROKERS"`
	KafkaAlertsTopic string   `env:"KAFKA_ALERTS_TOPIC" envDefault:"tourist-safety.events"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:              os.Getenv("REDIS_PASSWORD"),
		RedisDB:                getEnvAsInt("REDIS_DB", 0),
		WebhookURL:             os.Getenv("WEBHOOK_URL"),
		WebhookSecret:          os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:         getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:      getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:       getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		StatsTimeWindowMinutes: getEnvAsInt("STATS_TIME_WINDOW_MINUTES", 60),
		APIKeys:                getEnvAsList("API_KEYS"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		JWTIssuer:              os.Getenv("JWT_ISSUER"),
		Risk:                   loadRiskParams(),
		RefreshInterval:        getEnvAsDuration("RISK_REFRESH_INTERVAL", 30*time.Minute),
		RefreshWorkers:         getEnvAsInt("RISK_REFRESH_WORKERS", 8),
		RefreshLockTTL:         getEnvAsDuration("RISK_REFRESH_LOCK_TTL", 10*time.Minute),
		WarningRadius:          getEnvAsFloat("GEOFENCE_WARNING_RADIUS_METERS", 1000),
		RiskCacheTTL:           getEnvAsDuration("RISK_CACHE_TTL", 5*time.Minute),
		LedgerURL:              os.Getenv("LEDGER_URL"),
		LedgerAPIKey:           os.Getenv("LEDGER_API_KEY"),
		LedgerTimeout:          getEnvAsDuration("LEDGER_TIMEOUT", 10*time.Second),
		AuditSalt:              os.Getenv("AUDIT_SALT"),
		MapboxToken:            os.Getenv("MAPBOX_TOKEN"),
		MapboxBaseURL:          getEnv("MAPBOX_BASE_URL", "https://api.mapbox.com"),
		GeocodeTimeout:         getEnvAsDuration("GEOCODE_TIMEOUT", 5*time.Second),
		KafkaBrokers:           getEnvAsList("KAFKA_BROKERS"),
		KafkaAlertsTopic:       getEnv("KAFKA_ALERTS_TOPIC", "tourist-safety.events"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if cfg.AuditSalt == "" {
		return nil, fmt.Errorf("AUDIT_SALT environment variable is required")
	}

	if cfg.RefreshWorkers < 1 {
		cfg.RefreshWorkers = 1
	}

	if err := cfg.Risk.Validate(); err != nil {
		return nil, fmt.Errorf("invalid risk configuration: %w", err)
	}

	return cfg, nil
}

// loadRiskParams читает параметры модели риска поверх значений по умолчанию
func loadRiskParams() risk.Params {
	p := risk.DefaultParams()
	p.GridResolution = getEnvAsFloat("RISK_GRID_RESOLUTION", p.GridResolution)
	p.Lookback = getEnvAsDuration("RISK_LOOKBACK", p.Lookback)
	p.IncidentRadiusMeters = getEnvAsFloat("RISK_INCIDENT_RADIUS_METERS", p.IncidentRadiusMeters)
	p.AlertRadiusMeters = getEnvAsFloat("RISK_ALERT_RADIUS_METERS", p.AlertRadiusMeters)
	p.AlertSaturation = getEnvAsInt("RISK_ALERT_SATURATION", p.AlertSaturation)
	p.IncidentDecay = getEnvAsFloat("RISK_INCIDENT_DECAY", p.IncidentDecay)
	p.HistoryDecay = getEnvAsFloat("RISK_HISTORY_DECAY", p.HistoryDecay)
	p.IncidentWeight = getEnvAsFloat("RISK_INCIDENT_WEIGHT", p.IncidentWeight)
	p.AlertWeight = getEnvAsFloat("RISK_ALERT_WEIGHT", p.AlertWeight)
	p.HistoryWeight = getEnvAsFloat("RISK_HISTORY_WEIGHT", p.HistoryWeight)
	return p
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat возвращает значение переменной окружения как float64 или значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую, пустые элементы пропускаются
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
