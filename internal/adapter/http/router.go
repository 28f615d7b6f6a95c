package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/bizledger/internal/adapter/http/handler"
	"github.com/iho/bizledger/internal/adapter/http/middleware"
	"github.com/iho/bizledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	InvoiceHandler   *handler.InvoiceHandler
	AccountHandler   *handler.AccountHandler
	BookHandler      *handler.BookHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	Logger           zerolog.Logger
	RateLimitRPS     float64
	RateLimitBurst   int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Invoices
		r.Route("/invoices", func(r chi.Router) {
			r.Post("/price", cfg.InvoiceHandler.Price)
			r.Post("/", cfg.InvoiceHandler.Post)
			r.Get("/{id}", cfg.InvoiceHandler.Get)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/summary", cfg.AccountHandler.Summary)
			r.Get("/{id}/invoices", cfg.AccountHandler.ListInvoices)
			r.Get("/{id}/aging", cfg.AccountHandler.Aging)
			r.Post("/{id}/payments", cfg.AccountHandler.PostPayment)
		})

		// Book-wide receivables
		r.Get("/receivables", cfg.BookHandler.ListReceivables)
		r.Get("/book/consistency", cfg.BookHandler.CheckConsistency)
	})

	return r
}
