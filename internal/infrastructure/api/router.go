package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridcast-io/gridcast/internal/application"
	"github.com/gridcast-io/gridcast/internal/infrastructure/auth"
	"github.com/gridcast-io/gridcast/internal/infrastructure/logging"
	"github.com/gridcast-io/gridcast/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for route registration.
type RouterConfig struct {
	BuildReportUseCase  *application.BuildReportUseCase
	IngestEventsUseCase *application.IngestEventsUseCase
	JWTValidator        *auth.JWTValidator
	Database            HealthChecker
	Logger              *logging.Logger
	Metrics             *metrics.Metrics
}

// RegisterRoutes sets up all API routes on the server.
func RegisterRoutes(e *echo.Echo, config RouterConfig) {
	// prometheus metrics endpoint (no auth, standard scraping path)
	if config.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
			config.Metrics.Registry,
			promhttp.HandlerOpts{
				Registry:          config.Metrics.Registry,
				EnableOpenMetrics: true,
			},
		)))

		// apply metrics middleware to all routes
		e.Use(metrics.Middleware(config.Metrics))
	}

	// health endpoints (no auth required)
	RegisterHealthRoutes(e, config.Database)

	v1 := e.Group("/api/v1")

	// auth applies to uploads only; the validator is nil when no
	// JWT secret is configured, which leaves everything open
	authConfig := AuthConfig{
		Validator: config.JWTValidator,
	}

	if config.BuildReportUseCase != nil {
		reportHandler := NewReportHandler(config.BuildReportUseCase)
		reportHandler.RegisterRoutes(v1)
	}

	if config.IngestEventsUseCase != nil {
		eventHandler := NewEventHandler(config.IngestEventsUseCase)
		eventHandler.RegisterRoutes(v1, authConfig)
	}

	metricsEnabled := config.Metrics != nil
	authEnabled := config.JWTValidator != nil
	config.Logger.Info("api routes registered",
		"version", "v1",
		"health_endpoints", []string{"/health", "/ready"},
		"metrics_enabled", metricsEnabled,
		"auth_enabled", authEnabled,
		"api_prefix", "/api/v1",
	)
}
