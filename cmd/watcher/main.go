// Command watcher is the courtwatch service: an HTTP API plus an in-process
// scheduler that checks the venue for newly opened court slots once a minute
// inside the nightly booking window.
//
// Usage:
//
//	courtwatch-watcher
//	API_PORT=8080 courtwatch-watcher
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/hackneycourts/courtwatch/internal/api"
	"github.com/hackneycourts/courtwatch/internal/check"
	"github.com/hackneycourts/courtwatch/internal/config"
	"github.com/hackneycourts/courtwatch/internal/db"
	"github.com/hackneycourts/courtwatch/internal/ledger"
	"github.com/hackneycourts/courtwatch/internal/maintenance"
	"github.com/hackneycourts/courtwatch/internal/notify"
	"github.com/hackneycourts/courtwatch/internal/prefs"
	"github.com/hackneycourts/courtwatch/internal/schedule"
	"github.com/hackneycourts/courtwatch/internal/scraper"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("Invalid venue timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	window, err := schedule.Parse(cfg.CheckWindow)
	if err != nil {
		logger.Error("Invalid check window", "window", cfg.CheckWindow, "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Dedup ledger: Postgres when a database is configured, otherwise
	// in-memory (dedup history is then lost on restart).
	var led ledger.Ledger
	var pool *db.Pool
	if cfg.DatabaseURL != "" {
		logger.Info("Connecting to database...")
		pool, err = db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		led = ledger.NewPostgres(pool.Pool)
		logger.Info("Ledger backend: postgres",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	} else {
		led = ledger.NewMemory()
		logger.Info("Ledger backend: memory (no DATABASE_URL; dedup resets on restart)")
	}

	// Collaborators
	fetcher := scraper.New(cfg.VenueBaseURL, cfg.ScrapeRPM, cfg.ScrapeTimeout, logger)
	sender := notify.NewPushover(cfg.PushoverUserKey, cfg.PushoverAPIToken, logger)
	if sender == nil {
		logger.Warn("Pushover credentials missing; notifications are logged and dropped")
	}

	runner := check.NewRunner(check.Deps{
		Fetcher:       fetcher,
		Rules:         prefs.Default(),
		Ledger:        led,
		Notifier:      sender,
		Location:      loc,
		LookaheadDays: cfg.LookaheadDays,
		ScrapeTimeout: cfg.ScrapeTimeout,
		Logger:        logger,
	})

	// Minute-cadence scheduler, gated on the nightly window
	go schedule.Run(ctx, window, loc, func(ctx context.Context) {
		runner.Run(ctx)
	}, logger)

	// Ledger pruning ticker
	go maintenance.Start(ctx, led, loc, maintenance.DefaultConfig(), logger)

	// Create router
	router := api.NewRouter(runner, led, pool, cfg, window, loc)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // /run-check blocks for a full scrape
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting courtwatch",
			"addr", addr,
			"environment", cfg.Environment,
			"venue", cfg.VenueBaseURL,
			"window", window.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
