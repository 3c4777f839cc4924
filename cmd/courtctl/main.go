// Command courtctl is the courtwatch operations CLI.
//
// Usage:
//
//	courtctl check
//	courtctl check --date 2026-09-05
//	courtctl window
//	courtctl ledger prune
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hackneycourts/courtwatch/internal/check"
	"github.com/hackneycourts/courtwatch/internal/config"
	"github.com/hackneycourts/courtwatch/internal/db"
	"github.com/hackneycourts/courtwatch/internal/ledger"
	"github.com/hackneycourts/courtwatch/internal/notify"
	"github.com/hackneycourts/courtwatch/internal/prefs"
	"github.com/hackneycourts/courtwatch/internal/schedule"
	"github.com/hackneycourts/courtwatch/internal/scraper"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "courtctl",
		Short: "courtwatch operations CLI",
	}

	root.AddCommand(checkCmd())
	root.AddCommand(windowCmd())
	root.AddCommand(ledgerCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// check command
// --------------------------------------------------------------------------

func checkCmd() *cobra.Command {
	var date string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run one availability check now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, cfg *config.Config, led ledger.Ledger) error {
				loc, err := time.LoadLocation(cfg.Timezone)
				if err != nil {
					return fmt.Errorf("load timezone: %w", err)
				}

				lookahead := cfg.LookaheadDays
				now := time.Now
				if date != "" {
					target, err := time.ParseInLocation("2006-01-02", date, loc)
					if err != nil {
						return fmt.Errorf("parse --date: %w", err)
					}
					// Pin the clock so the runner lands on the requested date.
					now = func() time.Time { return target.AddDate(0, 0, -lookahead) }
				}

				var sender check.Notifier = notify.NewPushover(cfg.PushoverUserKey, cfg.PushoverAPIToken, logger)
				if dryRun {
					sender = notify.NewPushover("", "", logger) // nil sender logs and drops
				}

				runner := check.NewRunner(check.Deps{
					Fetcher:       scraper.New(cfg.VenueBaseURL, cfg.ScrapeRPM, cfg.ScrapeTimeout, logger),
					Rules:         prefs.Default(),
					Ledger:        led,
					Notifier:      sender,
					Location:      loc,
					LookaheadDays: lookahead,
					ScrapeTimeout: cfg.ScrapeTimeout,
					Logger:        logger,
					Now:           now,
				})

				result := runner.Run(ctx)
				logger.Info("Check finished", "summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("check error", "error", e)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "check a specific date (YYYY-MM-DD) instead of today+lookahead")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "match and mark but do not send notifications")
	return cmd
}

// --------------------------------------------------------------------------
// window command
// --------------------------------------------------------------------------

func windowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Show the configured check window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			loc, err := time.LoadLocation(cfg.Timezone)
			if err != nil {
				return fmt.Errorf("load timezone: %w", err)
			}
			w, err := schedule.Parse(cfg.CheckWindow)
			if err != nil {
				return err
			}
			now := time.Now().In(loc)
			fmt.Printf("window:     %s (%s)\n", w, cfg.Timezone)
			fmt.Printf("active:     %v\n", w.Contains(now))
			fmt.Printf("next open:  %s\n", w.NextOpen(now).Format(time.RFC3339))
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// ledger command
// --------------------------------------------------------------------------

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and maintain the dedup ledger",
	}
	cmd.AddCommand(ledgerPruneCmd())
	cmd.AddCommand(ledgerStatsCmd())
	return cmd
}

func ledgerPruneCmd() *cobra.Command {
	var before string
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop ledger entries for past dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, cfg *config.Config, led ledger.Ledger) error {
				cutoff := before
				if cutoff == "" {
					loc, err := time.LoadLocation(cfg.Timezone)
					if err != nil {
						return fmt.Errorf("load timezone: %w", err)
					}
					cutoff = time.Now().In(loc).Format("2006-01-02")
				}
				removed, err := led.Prune(ctx, cutoff)
				if err != nil {
					return err
				}
				logger.Info("Ledger pruned", "removed", removed, "before", cutoff)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "drop entries dated before this YYYY-MM-DD date (default: today)")
	return cmd
}

func ledgerStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(func(ctx context.Context, cfg *config.Config, led ledger.Ledger) error {
				stats, err := led.Stats(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("backend:  %s\nentries:  %d\n", stats.Backend, stats.Entries)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// withEnv loads config, connects the ledger backend, and runs fn with an
// interrupt-aware context.
func withEnv(fn func(ctx context.Context, cfg *config.Config, led ledger.Ledger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var led ledger.Ledger
	if cfg.DatabaseURL != "" {
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		led = ledger.NewPostgres(pool.Pool)
	} else {
		led = ledger.NewMemory()
		logger.Warn("No DATABASE_URL; using in-memory ledger (dedup does not persist)")
	}

	return fn(ctx, cfg, led)
}
