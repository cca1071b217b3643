package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/ledger-es/internal/adapter/http/handler"
	"github.com/iho/ledger-es/internal/adapter/http/middleware"
	"github.com/iho/ledger-es/internal/infrastructure/auth"
	"github.com/iho/ledger-es/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LedgerHandler    *handler.LedgerHandler
	DashboardHandler *handler.DashboardHandler
	HealthHandler    *handler.HealthHandler
	MetricsHandler   http.Handler
	HTTPMetrics      *middleware.HTTPMetrics
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	// TokenVerifier enables bearer auth on /api/v1 when set.
	TokenVerifier middleware.TokenVerifier
	Logger        zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	requireRole := func(role auth.Role) func(http.Handler) http.Handler {
		if cfg.TokenVerifier == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RequireRole(role)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.TokenVerifier != nil {
			r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
		}

		// Queries
		r.Group(func(r chi.Router) {
			r.Use(requireRole(auth.RoleReader))

			r.Get("/ledgers", cfg.LedgerHandler.List)
			r.Get("/ledgers/{id}", cfg.LedgerHandler.Get)
			r.Get("/ledgers/{id}/replay", cfg.LedgerHandler.Replay)
			r.Get("/dashboard", cfg.DashboardHandler.Dashboard)
			r.Get("/projections", cfg.DashboardHandler.Projections)
		})

		// Commands
		r.Group(func(r chi.Router) {
			r.Use(requireRole(auth.RoleWriter))
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
			}

			r.Post("/ledgers", cfg.LedgerHandler.Open)
			r.Post("/ledgers/{id}/receipts", cfg.LedgerHandler.Receipt)
			r.Post("/ledgers/{id}/payments", cfg.LedgerHandler.Payment)
			r.Post("/ledgers/{id}/close", cfg.LedgerHandler.Close)
		})
	})

	return r
}
