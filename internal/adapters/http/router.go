package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/viewident/viewident/internal/adapters/http/handlers"
	"github.com/viewident/viewident/internal/adapters/http/middleware"
	"github.com/viewident/viewident/internal/app"
	"github.com/viewident/viewident/internal/platform/config"
	"github.com/viewident/viewident/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// GuardConfig configures the authorization stage.
	GuardConfig *config.GuardConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// Journal keys per-request state by canonical identity.
	Journal *app.Journal

	// JournalMetrics counts entries through the pipeline. May be nil.
	JournalMetrics *telemetry.JournalMetrics

	// IntrospectionEnabled exposes the current request's journal entry
	// over the API when true.
	IntrospectionEnabled bool

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. Scope - open the journal entry keyed by canonical request identity
//  7. Guard - admit the request, annotating the entry through its own view
//  8. Timeout - request deadline (applied per-route group)
//
// Route groups:
//   - /-/ (internal): Health endpoints, no guard, no journal
//   - /api/v1/ (public API): Journaled, guarded endpoints
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Health endpoints sit outside the journal: probes are not requests
	// worth tracking and must not depend on the pipeline.
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(
		middleware.Scope(cfg.Journal, cfg.JournalMetrics),
		middleware.Guard(cfg.GuardConfig, cfg.Journal),
	)

	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	requestsHandler := handlers.NewRequestsHandler(cfg.Journal, cfg.IntrospectionEnabled)
	requestsHandler.RegisterRequestRoutes(apiV1)
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}
