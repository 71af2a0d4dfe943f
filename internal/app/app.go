package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/iapss/iapss-backend/internal/data/db"
	httpServer "github.com/iapss/iapss-backend/internal/http"
	"github.com/iapss/iapss-backend/internal/observability"
	"github.com/iapss/iapss-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *httpServer.Server
	Cfg      Config
	Repos    Repos
	Services Services

	dbService     *db.Service
	redis         *goredis.Client
	traceShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
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
	if err := cfg.Validate(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("config: %w", err)
	}

	traceShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.Init(log)
	}

	dbService, err := db.NewService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := dbService.DB()

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(ctx, log, cfg, reposet)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}
	limiter, rdb := wireLimiter(ctx, log, cfg.RateLimit)
	server := wireServer(log, cfg, serviceset, reposet, dbService, limiter, metrics)

	return &App{
		Log:           log,
		DB:            theDB,
		Server:        server,
		Cfg:           cfg,
		Repos:         reposet,
		Services:      serviceset,
		dbService:     dbService,
		redis:         rdb,
		traceShutdown: traceShutdown,
	}, nil
}

// Start launches background workers. Call before Run.
func (a *App) Start() {
	a.Services.Queue.Start()
	if a.Services.Warmer != nil {
		a.Services.Warmer.Start()
	}
}

// Run serves HTTP until Shutdown.
func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "port", a.Cfg.Port)
	return a.Server.Run()
}

// Shutdown stops accepting requests, then drains the recorder queue so analyses that
// were already answered still reach history, then stops the rest.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.Services.Warmer != nil {
		if err := a.Services.Warmer.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("warmer stop: %w", err))
		}
	}
	if err := a.Services.Queue.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("recorder queue stop: %w", err))
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if err := a.traceShutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}
	if err := a.dbService.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	a.Log.Sync()
	return errors.Join(errs...)
}
