package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridcast-io/gridcast/internal/application"
	"github.com/gridcast-io/gridcast/internal/domain"
	"github.com/gridcast-io/gridcast/internal/infrastructure/api"
	"github.com/gridcast-io/gridcast/internal/infrastructure/auth"
	"github.com/gridcast-io/gridcast/internal/infrastructure/cache"
	"github.com/gridcast-io/gridcast/internal/infrastructure/config"
	"github.com/gridcast-io/gridcast/internal/infrastructure/database"
	"github.com/gridcast-io/gridcast/internal/infrastructure/ingest"
	"github.com/gridcast-io/gridcast/internal/infrastructure/logging"
	"github.com/gridcast-io/gridcast/internal/infrastructure/metrics"
	"github.com/gridcast-io/gridcast/internal/infrastructure/postgres"
	"github.com/gridcast-io/gridcast/internal/infrastructure/worker"
)

// clockCacheSize bounds the per-zone timestamp breakdown cache.
const clockCacheSize = 4096

// memoryCacheSize bounds the in-process report cache used when redis
// is not configured.
const memoryCacheSize = 64

func main() {
	logger := logging.New()
	logger.Info("gridcast starting up")

	if err := run(logger); err != nil {
		logger.Error("application failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(logger *logging.Logger) error {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err.Error())
		return err
	}

	// establish database connection
	conn, err := database.New(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	// run migrations
	migrator := database.NewMigrator(conn, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migrator.Run(ctx); err != nil {
		return err
	}

	// verify health after migrations
	if err := conn.HealthCheck(ctx); err != nil {
		return err
	}

	logger.Info("gridcast infrastructure ready", "schema", conn.Schema())

	// initialize prometheus metrics
	appMetrics := metrics.New()
	logger.Info("prometheus metrics initialized")

	// initialize jwt validator (nil leaves write endpoints open)
	var jwtValidator *auth.JWTValidator
	if cfg.Auth.JWTSecret != "" {
		jwtValidator = auth.NewJWTValidator(cfg.Auth.JWTSecret)
	}

	// timezone and window catalog from configuration
	zone, err := domain.LoadZone(cfg.Report.Timezone)
	if err != nil {
		logger.Error("failed to load timezone", "timezone", cfg.Report.Timezone, "error", err.Error())
		return err
	}
	zone = zone.WithCache(domain.NewClockLRU(clockCacheSize))

	catalog := domain.NewCatalog(zone).
		WithAnchors(cfg.Report.AnchorA, cfg.Report.AnchorB).
		WithDays(cfg.Report.WindowDays)

	forecastCfg := domain.ForecastConfig{
		MomentumLookbackHours: cfg.Report.MomentumLookbackHours,
		TrendUp:               cfg.Report.TrendUp,
		TrendDown:             cfg.Report.TrendDown,
		MomentumWeight:        cfg.Report.MomentumWeight,
		TrendWeight:           cfg.Report.TrendWeight,
		ConfidencePct:         cfg.Report.ConfidencePct,
		MarginMultiplier:      cfg.Report.MarginMultiplier,
	}

	// initialize repositories
	eventRepo := postgres.NewEventRepository(conn.Pool())

	// initialize report cache: redis when configured, in-process otherwise
	var reportCache application.ReportCache = cache.NewMemoryReportCache(memoryCacheSize)

	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewRedisClient(cache.RedisConfig{URL: cfg.Redis.URL}, logger)
		if err != nil {
			logger.Error("failed to create redis client", "error", err.Error())
			return err
		}

		if err := redisClient.Connect(ctx); err != nil {
			logger.Warn("redis connection failed, falling back to memory cache", "error", err.Error())
		} else {
			defer redisClient.Close()
			reportCache = cache.NewRedisReportCache(redisClient, cfg.Redis.TTL, logger)
			logger.Info("redis report cache enabled", "ttl", cfg.Redis.TTL.String())
		}
	}

	// initialize use cases
	buildReportUseCase := application.NewBuildReportUseCase(
		eventRepo,
		zone,
		catalog,
		forecastCfg,
		cfg.Report.WeeksBack,
		logger,
	).WithCache(reportCache).WithMetrics(appMetrics)

	ingestEventsUseCase := application.NewIngestEventsUseCase(
		eventRepo,
		ingest.NewParser(zone),
		logger,
	).WithMetrics(appMetrics)

	// start the background report refresher
	workerCtx, workerCancel := context.WithCancel(context.Background())

	refreshConfig := worker.DefaultRefreshWorkerConfig()
	refreshConfig.Interval = cfg.Report.RefreshInterval
	refreshWorker := worker.NewRefreshWorker(buildReportUseCase, refreshConfig, logger)
	refreshWorker.Start(workerCtx)

	// initialize http server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout
	serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout

	server := api.NewServer(serverConfig, logger)

	// register routes
	api.RegisterRoutes(server.Echo(), api.RouterConfig{
		BuildReportUseCase:  buildReportUseCase,
		IngestEventsUseCase: ingestEventsUseCase,
		JWTValidator:        jwtValidator,
		Database:            conn,
		Logger:              logger,
		Metrics:             appMetrics,
	})

	// start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("http server error", "error", err.Error())
		}
	}()

	// wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("gridcast shutting down")

	// stop background workers
	workerCancel()
	refreshWorker.Stop()

	// graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err.Error())
		return err
	}

	logger.Info("gridcast shutdown complete")
	return nil
}
