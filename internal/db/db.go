// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackneycourts/courtwatch/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Ensure the schema exists before preparing statements that reference
	// it; Prepare fails on a missing table.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if err := ensureSchema(ctx, conn); err != nil {
			return err
		}
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// ensureSchema creates the dedup ledger table if missing. Idempotent, runs
// once per new connection.
func ensureSchema(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS notified_slots (
			date         TEXT NOT NULL,
			court_id     TEXT NOT NULL,
			start_minute INT  NOT NULL,
			end_minute   INT  NOT NULL,
			notified_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (date, court_id, start_minute, end_minute)
		)`)
	if err != nil {
		return fmt.Errorf("ensure notified_slots table: %w", err)
	}
	return nil
}

// registerPreparedStatements registers the statements the ledger and health
// endpoints hit on every check.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Dedup ledger
		"ledger_seen": `SELECT 1 FROM notified_slots
			WHERE date = $1 AND court_id = $2
			  AND start_minute = $3 AND end_minute = $4`,
		"ledger_count": "SELECT COUNT(*) FROM notified_slots",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
