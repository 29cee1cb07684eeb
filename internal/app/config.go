package app

import (
	"time"

	"github.com/yungbote/pdataviewer-backend/internal/data/db"
	"github.com/yungbote/pdataviewer-backend/internal/observability"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/envutil"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
	"github.com/yungbote/pdataviewer-backend/internal/services"
)

type Config struct {
	Port string
	DB   db.Config

	AdminUsername string
	AdminPassword string

	RedisAddr string
	CacheTTL  time.Duration

	WorkerEnabled     bool
	WorkerConcurrency int
	PollInterval      time.Duration
	MaxUploadBytes    int64

	CORSOrigins    []string
	MetricsEnabled bool
	Otel           observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	ratio := float64(envutil.GetEnvAsInt("OTEL_SAMPLER_PERCENT", 10, log)) / 100
	return Config{
		Port: envutil.GetEnv("PORT", "8000", log),
		DB: db.Config{
			Driver:           envutil.GetEnv("DB_DRIVER", "postgres", log),
			PostgresHost:     envutil.GetEnv("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.GetEnv("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.GetEnv("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.GetEnv("POSTGRES_PASSWORD", "postgres", log),
			PostgresName:     envutil.GetEnv("POSTGRES_NAME", "pdataviewer", log),
			PostgresSSLMode:  envutil.GetEnv("POSTGRES_SSLMODE", "disable", log),
			SQLitePath:       envutil.GetEnv("SQLITE_PATH", "pdataviewer.db", log),
			MaxOpenConns:     envutil.GetEnvAsInt("DB_MAX_OPEN_CONNS", 20, log),
			MaxIdleConns:     envutil.GetEnvAsInt("DB_MAX_IDLE_CONNS", 5, log),
		},
		AdminUsername: envutil.GetEnv("ADMIN_USERNAME", envutil.GetEnv("PDATAVIEWER_ADMIN_USERNAME", "", log), log),
		AdminPassword: envutil.GetEnv("ADMIN_PASSWORD", envutil.GetEnv("PDATAVIEWER_ADMIN_PASSWORD", "", log), log),

		RedisAddr: envutil.GetEnv("REDIS_ADDR", "", log),
		CacheTTL:  time.Duration(envutil.GetEnvAsInt("CACHE_TTL_SECONDS", 3600, log)) * time.Second,

		WorkerEnabled:     envutil.GetEnvAsBool("IMPORT_WORKER_ENABLED", true, log),
		WorkerConcurrency: envutil.GetEnvAsInt("IMPORT_WORKER_CONCURRENCY", 1, log),
		PollInterval:      time.Duration(envutil.GetEnvAsInt("IMPORT_POLL_INTERVAL_MS", 1000, log)) * time.Millisecond,
		MaxUploadBytes:    int64(envutil.GetEnvAsInt("IMPORT_MAX_UPLOAD_MB", 100, log)) << 20,

		CORSOrigins:    envutil.GetEnvAsList("CORS_ALLOW_ORIGINS", []string{"*"}),
		MetricsEnabled: envutil.GetEnvAsBool("METRICS_ENABLED", true, log),
		Otel: observability.OtelConfig{
			Enabled:     envutil.GetEnvAsBool("OTEL_ENABLED", false, log),
			ServiceName: envutil.GetEnv("OTEL_SERVICE_NAME", "pdataviewer", log),
			Environment: envutil.GetEnv("APP_ENV", "development", log),
			Version:     services.Version,
			Endpoint:    envutil.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     observability.ParseHeaders(envutil.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log)),
			Insecure:    envutil.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: ratio,
		},
	}
}
