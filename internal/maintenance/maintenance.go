// Package maintenance runs periodic background tasks as Go tickers.
// Currently just ledger pruning: the target date shifts forward daily, so
// keys for past dates can never match again and only cost memory (or table
// rows).
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/hackneycourts/courtwatch/internal/ledger"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	PruneInterval time.Duration
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{PruneInterval: 12 * time.Hour}
}

// Start launches the maintenance tickers. Blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, led ledger.Ledger, loc *time.Location, cfg Config, logger *slog.Logger) {
	if cfg.PruneInterval <= 0 {
		return
	}
	logger.Info("Maintenance ticker started", "prune_interval", cfg.PruneInterval)

	ticker := time.NewTicker(cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pruneStale(ctx, led, loc, logger)
		case <-ctx.Done():
			logger.Info("Maintenance ticker stopped")
			return
		}
	}
}

// pruneStale drops ledger entries for dates that have already passed in the
// venue timezone.
func pruneStale(ctx context.Context, led ledger.Ledger, loc *time.Location, logger *slog.Logger) {
	today := time.Now().In(loc).Format("2006-01-02")
	removed, err := led.Prune(ctx, today)
	if err != nil {
		logger.Warn("Ledger prune failed", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("Ledger pruned", "removed", removed, "before", today)
	}
}
