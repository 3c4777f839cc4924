// Package check runs one court availability check end to end: compute the
// target date, fetch raw availability, normalize, match preferences, dedup
// through the ledger, and notify.
//
// A Runner is stateless per call; all persistent state lives in the ledger.
// Runs are serialized so a manual trigger racing a scheduled tick cannot
// double-notify.
package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackneycourts/courtwatch/internal/ledger"
	"github.com/hackneycourts/courtwatch/internal/notify"
	"github.com/hackneycourts/courtwatch/internal/prefs"
	"github.com/hackneycourts/courtwatch/internal/scraper"
	"github.com/hackneycourts/courtwatch/internal/slot"
)

// Fetcher supplies raw availability for a target date and the booking link
// to put in notifications.
type Fetcher interface {
	FetchAvailability(ctx context.Context, targetDate time.Time) ([]slot.RawSlot, error)
	BookingURL(date string) string
}

// Notifier delivers one alert message.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// Deps are the collaborators a Runner needs.
type Deps struct {
	Fetcher  Fetcher
	Rules    *prefs.RuleSet
	Ledger   ledger.Ledger
	Notifier Notifier

	Location      *time.Location // venue timezone
	LookaheadDays int            // 0 treated as 7
	ScrapeTimeout time.Duration  // 0 treated as 45s

	Logger *slog.Logger
	Now    func() time.Time // test hook, defaults to time.Now
}

// Result summarizes one run.
type Result struct {
	RunID       string           `json:"run_id"`
	TargetDate  string           `json:"target_date"`
	Category    slot.DayCategory `json:"category"`
	SlotsFound  int              `json:"slots_found"`
	SlotsMatch  int              `json:"slots_matched"`
	Notified    int              `json:"notified"`
	Errors      []string         `json:"errors,omitempty"`
	DurationSec float64          `json:"duration_seconds"`
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("target=%s category=%s found=%d matched=%d notified=%d errors=%d dur=%.2fs",
		r.TargetDate, r.Category, r.SlotsFound, r.SlotsMatch, r.Notified,
		len(r.Errors), r.DurationSec)
}

// Runner executes checks. Safe for concurrent Run calls; they serialize.
type Runner struct {
	mu   sync.Mutex
	deps Deps
}

// NewRunner wires a Runner, filling defaults for optional Deps fields.
func NewRunner(deps Deps) *Runner {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.LookaheadDays == 0 {
		deps.LookaheadDays = 7
	}
	if deps.ScrapeTimeout == 0 {
		deps.ScrapeTimeout = 45 * time.Second
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Runner{deps: deps}
}

// TargetDate returns the booking date a check started now would inspect.
func (r *Runner) TargetDate() time.Time {
	return r.deps.Now().In(r.deps.Location).AddDate(0, 0, r.deps.LookaheadDays)
}

// Run performs one complete check. Failures never escape as panics or
// returned errors; everything lands in Result.Errors so a bad minute does
// not take down the host process and the next tick can retry.
func (r *Runner) Run(ctx context.Context) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := r.deps
	start := d.Now()
	target := r.TargetDate()
	dateStr := target.Format("2006-01-02")
	category := slot.CategoryFor(target)

	result := Result{
		RunID:      uuid.NewString(),
		TargetDate: dateStr,
		Category:   category,
	}
	logger := d.Logger.With("run_id", result.RunID, "target", dateStr)
	logger.Info("Availability check started", "category", category)

	fetchCtx, cancel := context.WithTimeout(ctx, d.ScrapeTimeout)
	defer cancel()

	raws, err := d.Fetcher.FetchAvailability(fetchCtx, target)
	if err != nil {
		// Transient or not, the run ends here; the next tick retries.
		var te *scraper.TransientError
		if errors.As(err, &te) {
			logger.Warn("Scrape failed, will retry next tick", "error", err)
		} else {
			logger.Error("Scrape failed", "error", err)
		}
		result.Errors = append(result.Errors, err.Error())
		result.DurationSec = d.Now().Sub(start).Seconds()
		return result
	}

	result.SlotsFound = len(raws)
	bookingURL := d.Fetcher.BookingURL(dateStr)

	for _, raw := range raws {
		norm, err := slot.Normalize(raw, target)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if !d.Rules.Matches(norm) {
			continue
		}
		result.SlotsMatch++

		key := ledger.KeyFor(norm)
		fresh, err := d.Ledger.Mark(ctx, key)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("ledger mark %s: %v", key, err))
			continue
		}
		if !fresh {
			continue // already notified on an earlier tick
		}

		msg := buildMessage(norm, bookingURL)
		if err := d.Notifier.Send(ctx, msg); err != nil {
			// The key stays marked; delivery is at most once per slot.
			logger.Warn("Notification delivery failed", "slot", key, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("notify %s: %v", key, err))
			continue
		}

		logger.Info("Slot notified", "court", norm.CourtID, "time", norm.TimeRange())
		result.Notified++
	}

	result.DurationSec = d.Now().Sub(start).Seconds()
	logger.Info("Availability check complete", "summary", result.Summary())
	return result
}

func buildMessage(s slot.NormalizedSlot, bookingURL string) notify.Message {
	return notify.Message{
		Title: fmt.Sprintf("Court available: %s at %s", s.Date, slot.MinutesToClock(s.StartMinute)),
		Body: fmt.Sprintf("Court free!\n\nDate: %s\nCourt: %s\nTime: %s",
			s.Date, s.CourtID, s.TimeRange()),
		URL: bookingURL,
	}
}
