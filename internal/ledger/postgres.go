package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// Postgres is a ledger backed by the notified_slots table. ON CONFLICT
// DO NOTHING makes Mark a single race-safe round trip, so dedup holds even
// across restarts or multiple watcher processes sharing one database.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed ledger. The notified_slots table is
// created by the db package on connect.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Mark inserts the key, reporting whether it was newly recorded.
func (p *Postgres) Mark(ctx context.Context, key Key) (bool, error) {
	tag, err := p.pool.Exec(ctx, `
		INSERT INTO notified_slots (date, court_id, start_minute, end_minute)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`,
		key.Date, key.CourtID, key.StartMinute, key.EndMinute)
	if err != nil {
		return false, fmt.Errorf("mark notified slot: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Seen reports whether the key has been marked.
func (p *Postgres) Seen(ctx context.Context, key Key) (bool, error) {
	var n int
	err := p.pool.QueryRow(ctx, "ledger_seen",
		key.Date, key.CourtID, key.StartMinute, key.EndMinute).Scan(&n)
	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("check notified slot: %w", err)
	}
	return true, nil
}

// Prune drops entries dated before the given YYYY-MM-DD date.
func (p *Postgres) Prune(ctx context.Context, before string) (int, error) {
	tag, err := p.pool.Exec(ctx,
		"DELETE FROM notified_slots WHERE date < $1", before)
	if err != nil {
		return 0, fmt.Errorf("prune notified slots: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Stats returns entry counts.
func (p *Postgres) Stats(ctx context.Context) (Stats, error) {
	var n int
	if err := p.pool.QueryRow(ctx, "ledger_count").Scan(&n); err != nil {
		return Stats{}, fmt.Errorf("count notified slots: %w", err)
	}
	return Stats{Backend: "postgres", Entries: n}, nil
}
