// Package slot defines the canonical in-memory representation of a bookable
// court slot and the normalization from raw scraped availability entries.
//
// Everything here is pure: no I/O, no clock access. The target booking date
// is passed in by the caller so the day category reflects the day being
// booked, not the day the check runs.
package slot

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformed marks raw availability entries that cannot be normalized.
// Callers skip these and continue with the rest of the batch.
var ErrMalformed = errors.New("malformed slot")

// DayCategory classifies a booking date for preference matching.
type DayCategory string

const (
	CategoryWednesday DayCategory = "wednesday"
	CategoryWeekday   DayCategory = "weekday"
	CategoryWeekend   DayCategory = "weekend"
)

// CategoryFor returns the day category of a booking date.
func CategoryFor(date time.Time) DayCategory {
	switch date.Weekday() {
	case time.Wednesday:
		return CategoryWednesday
	case time.Saturday, time.Sunday:
		return CategoryWeekend
	default:
		return CategoryWeekday
	}
}

// RawSlot is one availability entry as extracted from the booking page.
// Start and end are minutes since midnight on Date.
type RawSlot struct {
	Date        string `json:"date"` // YYYY-MM-DD
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	CourtID     string `json:"court_id"`
	Label       string `json:"label,omitempty"`
}

// NormalizedSlot is the canonical form consumed by the matcher and ledger.
type NormalizedSlot struct {
	Date        string      `json:"date"`
	StartMinute int         `json:"start_minute"`
	EndMinute   int         `json:"end_minute"`
	Duration    int         `json:"duration_minutes"`
	CourtID     string      `json:"court_id"`
	Category    DayCategory `json:"category"`
}

// Normalize converts a raw entry into its canonical form. The category is
// derived from targetDate, which must be the date being booked. Fails only
// when the entry's end does not come after its start.
func Normalize(raw RawSlot, targetDate time.Time) (NormalizedSlot, error) {
	if raw.EndMinute <= raw.StartMinute {
		return NormalizedSlot{}, fmt.Errorf("%w: end %d not after start %d (court %q)",
			ErrMalformed, raw.EndMinute, raw.StartMinute, raw.CourtID)
	}
	return NormalizedSlot{
		Date:        raw.Date,
		StartMinute: raw.StartMinute,
		EndMinute:   raw.EndMinute,
		Duration:    raw.EndMinute - raw.StartMinute,
		CourtID:     raw.CourtID,
		Category:    CategoryFor(targetDate),
	}, nil
}

// TimeRange returns the slot's interval as "HH:MM-HH:MM".
func (s NormalizedSlot) TimeRange() string {
	return MinutesToClock(s.StartMinute) + "-" + MinutesToClock(s.EndMinute)
}

// MinutesToClock formats minutes since midnight as "HH:MM".
func MinutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
