// Package schedule decides when, within a day, availability checks are
// meaningful, and drives the minute-cadence loop that fires them.
//
// The venue releases courts for booking at a fixed evening time, so the
// watcher only works a short nightly window (21:55-22:05 venue time by
// default), checking once a minute inside it.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Window is a daily time range at minute granularity, in minutes since
// midnight. End is inclusive: a 21:55-22:05 window admits eleven ticks.
type Window struct {
	Start int
	End   int
}

// Parse reads a "HH:MM-HH:MM" window spec.
func Parse(spec string) (Window, error) {
	parts := strings.Split(spec, "-")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("window %q: want HH:MM-HH:MM", spec)
	}
	start, err := parseClock(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("window %q: %w", spec, err)
	}
	end, err := parseClock(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("window %q: %w", spec, err)
	}
	return Window{Start: start, End: end}, nil
}

func parseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("bad clock value %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// Contains reports whether t falls inside the window. Windows where End is
// before Start wrap past midnight.
func (w Window) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	if w.Start <= w.End {
		return m >= w.Start && m <= w.End
	}
	return m >= w.Start || m <= w.End
}

// NextOpen returns the next instant the window opens at or after t; t itself
// when already inside the window.
func (w Window) NextOpen(t time.Time) time.Time {
	if w.Contains(t) {
		return t
	}
	open := time.Date(t.Year(), t.Month(), t.Day(), w.Start/60, w.Start%60, 0, 0, t.Location())
	if open.Before(t) {
		open = open.AddDate(0, 0, 1)
	}
	return open
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// Run ticks once a minute and invokes fn whenever venue-local time is inside
// the window. Blocks until ctx is cancelled. Intended to be called with `go`.
func Run(ctx context.Context, w Window, loc *time.Location, fn func(context.Context), logger *slog.Logger) {
	logger.Info("Check scheduler started", "window", w.String(), "timezone", loc.String())
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			if !w.Contains(now.In(loc)) {
				continue
			}
			fn(ctx)
		case <-ctx.Done():
			logger.Info("Check scheduler stopped")
			return
		}
	}
}
