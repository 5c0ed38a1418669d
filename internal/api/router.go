package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/dealerhub/dealer-admin/docs"
	"github.com/dealerhub/dealer-admin/internal/api/handler"
	"github.com/dealerhub/dealer-admin/internal/api/middleware"
	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
	"github.com/dealerhub/dealer-admin/internal/infrastructure/config"
	"github.com/dealerhub/dealer-admin/internal/infrastructure/http/handlers"
)

const rateLimitEntryTTL = 3 * time.Minute

// Services are the core operations exposed over HTTP.
type Services struct {
	Auth    ports.AuthService
	Dealers ports.DealerService
	Stats   ports.StatsService
}

type RouterConfig struct {
	Logger    zerolog.Logger
	RateLimit config.RateLimitConfig
	// Health serves /health/ready. When nil only liveness is mounted.
	Health *handlers.HealthDependenciesHandler
	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, cfg RouterConfig) *echo.Echo {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(cfg.Logger))
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "dealer_admin",
		Registerer: cfg.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	dealerHandler := handler.NewDealerHandler(svc.Dealers)
	statsHandler := handler.NewStatsHandler(svc.Stats)
	authMiddleware := middleware.Auth(svc.Auth)
	staffOnly := middleware.RBAC(domain.RoleAdmin, domain.RoleUser)

	// --- Auth routes ---
	auth := e.Group("/api/auth", authRateLimiter(cfg.RateLimit))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", authHandler.Profile, authMiddleware)

	// --- Dealer routes ---
	dealers := e.Group("/api/dealers", authMiddleware, staffOnly)
	dealers.POST("", dealerHandler.Create)
	dealers.GET("", dealerHandler.List)
	dealers.GET("/stats", statsHandler.Dealers)
	dealers.GET("/:id", dealerHandler.Get)
	dealers.PUT("/:id", dealerHandler.Update)
	dealers.DELETE("/:id", dealerHandler.Delete)

	e.GET("/api/dashboard/stats", statsHandler.Dashboard, authMiddleware, staffOnly)

	// --- Health probes (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	if cfg.Health != nil {
		e.GET("/health/ready", cfg.Health.Readiness)
	}

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: cfg.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// authRateLimiter throttles the public auth endpoints per client IP.
func authRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.RPS),
		Burst:     cfg.Burst,
		ExpiresIn: rateLimitEntryTTL,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "unable to identify client").SetInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
		},
	})
}
