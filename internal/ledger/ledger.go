// Package ledger tracks which slots have already produced a notification so
// repeated checks inside the nightly window never notify twice for the same
// physical slot.
//
// Two implementations: a Postgres-backed ledger that survives restarts and a
// mutex-guarded in-memory ledger for credential-less or single-run use.
// Mark is the atomic check-and-mark; callers notify only when it reports the
// key as new.
package ledger

import (
	"context"
	"fmt"

	"github.com/hackneycourts/courtwatch/internal/slot"
)

// Key uniquely identifies a physical slot across repeated checks.
type Key struct {
	Date        string
	CourtID     string
	StartMinute int
	EndMinute   int
}

// KeyFor derives the dedup key from a normalized slot. Deterministic:
// identical (date, court, start, end) always yields an identical key.
func KeyFor(s slot.NormalizedSlot) Key {
	return Key{
		Date:        s.Date,
		CourtID:     s.CourtID,
		StartMinute: s.StartMinute,
		EndMinute:   s.EndMinute,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%d|%d", k.Date, k.CourtID, k.StartMinute, k.EndMinute)
}

// Stats summarizes ledger contents for the status endpoint.
type Stats struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
}

// Ledger is the dedup store shared by every check path.
type Ledger interface {
	// Mark records the key and reports whether it was newly recorded.
	// Marking an already-present key is a no-op, not an error.
	Mark(ctx context.Context, key Key) (bool, error)

	// Seen reports whether the key has already been marked.
	Seen(ctx context.Context, key Key) (bool, error)

	// Prune drops entries whose target date is before the given
	// YYYY-MM-DD date. The target date shifts forward daily, so past
	// keys are garbage by construction.
	Prune(ctx context.Context, before string) (int, error)

	// Stats returns a summary for health/status reporting.
	Stats(ctx context.Context) (Stats, error)
}
