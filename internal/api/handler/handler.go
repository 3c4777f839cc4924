// Package handler provides HTTP handlers for the watcher's trigger, health,
// and status endpoints. The manual trigger runs a check synchronously and
// returns its summary; health endpoints never scrape.
package handler

import (
	"net/http"
	"time"

	"github.com/hackneycourts/courtwatch/internal/api/respond"
	"github.com/hackneycourts/courtwatch/internal/check"
	"github.com/hackneycourts/courtwatch/internal/config"
	"github.com/hackneycourts/courtwatch/internal/db"
	"github.com/hackneycourts/courtwatch/internal/ledger"
	"github.com/hackneycourts/courtwatch/internal/schedule"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	runner *check.Runner
	led    ledger.Ledger
	pool   *db.Pool // nil when running with the in-memory ledger
	cfg    *config.Config
	window schedule.Window
	loc    *time.Location
}

// New creates a Handler with shared dependencies. pool may be nil.
func New(runner *check.Runner, led ledger.Ledger, pool *db.Pool, cfg *config.Config,
	window schedule.Window, loc *time.Location) *Handler {
	return &Handler{
		runner: runner,
		led:    led,
		pool:   pool,
		cfg:    cfg,
		window: window,
		loc:    loc,
	}
}

// Root serves service info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":   "courtwatch",
		"status": "running",
		"venue":  h.cfg.VenueBaseURL,
		"window": h.window.String(),
		"docs":   "/docs",
	})
}

// HealthCheck returns basic liveness; performs no scraping work.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies ledger store connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "not configured (in-memory ledger)",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// RunCheck runs one availability check synchronously and returns its result.
func (h *Handler) RunCheck(w http.ResponseWriter, r *http.Request) {
	result := h.runner.Run(r.Context())
	respond.WriteJSONObject(w, http.StatusOK, result)
}

// Status reports the configured window, the current target date, and ledger
// statistics.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(h.loc)
	stats, err := h.led.Stats(r.Context())
	if err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "LEDGER_UNAVAILABLE", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"window":           h.window.String(),
		"window_active":    h.window.Contains(now),
		"next_window_open": h.window.NextOpen(now).Format(time.RFC3339),
		"target_date":      h.runner.TargetDate().Format("2006-01-02"),
		"timezone":         h.loc.String(),
		"ledger":           stats,
		"notifications":    h.cfg.NotificationsConfigured(),
	})
}
