package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/pdataviewer-backend/internal/cache"
	"github.com/yungbote/pdataviewer-backend/internal/data/db"
	server "github.com/yungbote/pdataviewer-backend/internal/http"
	"github.com/yungbote/pdataviewer-backend/internal/observability"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Cache    *cache.ViewCache
	Metrics  *observability.Metrics

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown, err := observability.InitOTel(context.Background(), log, cfg.Otel)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	theDB, err := db.Open(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}

	viewCache, err := cache.New(log, cfg.RedisAddr, cfg.CacheTTL)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init view cache: %w", err)
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, viewCache, metrics)
	if err != nil {
		log.Sync()
		return nil, err
	}

	if err := bootstrapAdmin(log, cfg, serviceset); err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, serviceset)
	auth := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, auth, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Cache:        viewCache,
		Metrics:      metrics,
		otelShutdown: otelShutdown,
	}, nil
}

func bootstrapAdmin(log *logger.Logger, cfg Config, s Services) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		log.Warn("ADMIN_USERNAME or ADMIN_PASSWORD not set; no admin user bootstrapped")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.Auth.EnsureUser(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil && !errors.Is(err, apperr.ErrInvalidArgument) {
		return fmt.Errorf("bootstrap admin user: %w", err)
	}
	return nil
}

// Run serves HTTP and, when enabled, the import worker until ctx is done or
// either of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	g, ctx := errgroup.WithContext(ctx)

	srv := &server.Server{Engine: a.Router}
	addr := ":" + a.Cfg.Port
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", addr)
		return srv.Run(ctx, addr)
	})
	if a.Services.Worker != nil {
		g.Go(func() error { return a.Services.Worker.Run(ctx) })
	}
	a.Metrics.StartJobQueueCollector(ctx, a.Log, a.DB, 15*time.Second)

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("Flushing spans failed", "error", err)
		}
		cancel()
	}
	if err := a.Cache.Close(); err != nil && a.Log != nil {
		a.Log.Warn("Closing view cache failed", "error", err)
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
