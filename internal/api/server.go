// Package api assembles the Chi router: middleware stack, trigger and health
// routes, and the Swagger UI over an embedded OpenAPI document.
package api

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/hackneycourts/courtwatch/internal/api/handler"
	"github.com/hackneycourts/courtwatch/internal/check"
	"github.com/hackneycourts/courtwatch/internal/config"
	"github.com/hackneycourts/courtwatch/internal/db"
	"github.com/hackneycourts/courtwatch/internal/ledger"
	"github.com/hackneycourts/courtwatch/internal/schedule"
)

//go:embed openapi.json
var openapiSpec []byte

// NewRouter creates and configures the Chi router with all middleware and
// routes. pool may be nil when no database is configured.
func NewRouter(runner *check.Runner, led ledger.Ledger, pool *db.Pool, cfg *config.Config,
	window schedule.Window, loc *time.Location) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(runner, led, pool, cfg, window, loc)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
	})

	// Manual trigger. GET kept alongside POST for parity with the original
	// /run-check endpoint people curl by hand.
	r.Get("/run-check", h.RunCheck)
	r.Post("/run-check", h.RunCheck)

	// Status
	r.Get("/status", h.Status)

	// Swagger UI over the embedded spec
	r.Get("/docs/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(openapiSpec)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/openapi.json"),
	))

	return r
}
