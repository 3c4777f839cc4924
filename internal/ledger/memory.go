package ledger

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process ledger. Dedup history is lost on restart, which is
// acceptable when restarts are rare and fall outside the check window; run
// with a DATABASE_URL to keep history across restarts instead.
type Memory struct {
	mu      sync.Mutex
	entries map[Key]time.Time
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{entries: make(map[Key]time.Time)}
}

// Mark records the key, reporting whether it was new. Safe for concurrent
// use; exactly one caller wins for any given key.
func (m *Memory) Mark(_ context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[key]; exists {
		return false, nil
	}
	m.entries[key] = time.Now()
	return true, nil
}

// Seen reports whether the key has been marked.
func (m *Memory) Seen(_ context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.entries[key]
	return exists, nil
}

// Prune drops entries dated before the given YYYY-MM-DD date. Lexicographic
// comparison is date order for this format.
func (m *Memory) Prune(_ context.Context, before string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k := range m.entries {
		if k.Date < before {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Stats returns entry counts.
func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Backend: "memory", Entries: len(m.entries)}, nil
}
