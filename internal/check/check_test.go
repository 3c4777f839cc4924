package check

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hackneycourts/courtwatch/internal/ledger"
	"github.com/hackneycourts/courtwatch/internal/notify"
	"github.com/hackneycourts/courtwatch/internal/prefs"
	"github.com/hackneycourts/courtwatch/internal/scraper"
	"github.com/hackneycourts/courtwatch/internal/slot"
)

// fakeFetcher serves a fixed slot set, or an error.
type fakeFetcher struct {
	raws  []slot.RawSlot
	err   error
	calls int
}

func (f *fakeFetcher) FetchAvailability(_ context.Context, _ time.Time) ([]slot.RawSlot, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.raws, nil
}

func (f *fakeFetcher) BookingURL(date string) string {
	return "https://venue.example/book#?date=" + date
}

// fakeNotifier records sent messages and can be made to fail.
type fakeNotifier struct {
	sent []notify.Message
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

// newRunner wires a Runner whose target date is always wantTarget.
func newRunner(t *testing.T, fetcher *fakeFetcher, notifier *fakeNotifier, wantTarget string) *Runner {
	t.Helper()
	target, err := time.Parse("2006-01-02", wantTarget)
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(Deps{
		Fetcher:       fetcher,
		Rules:         prefs.Default(),
		Ledger:        ledger.NewMemory(),
		Notifier:      notifier,
		Location:      time.UTC,
		LookaheadDays: 7,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:           func() time.Time { return target.AddDate(0, 0, -7) },
	})
}

func TestRunWednesdayLunchSlotNotifiedOnce(t *testing.T) {
	fetcher := &fakeFetcher{raws: []slot.RawSlot{
		{Date: "2026-09-02", StartMinute: 720, EndMinute: 780, CourtID: "3"},
	}}
	notifier := &fakeNotifier{}
	r := newRunner(t, fetcher, notifier, "2026-09-02") // a Wednesday

	result := r.Run(context.Background())

	if result.Category != slot.CategoryWednesday {
		t.Errorf("Category = %s, want wednesday", result.Category)
	}
	if result.SlotsFound != 1 || result.SlotsMatch != 1 || result.Notified != 1 {
		t.Errorf("found/matched/notified = %d/%d/%d, want 1/1/1",
			result.SlotsFound, result.SlotsMatch, result.Notified)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(notifier.sent))
	}
	msg := notifier.sent[0]
	if msg.URL != "https://venue.example/book#?date=2026-09-02" {
		t.Errorf("booking URL = %q", msg.URL)
	}
}

func TestRunStrictContainmentRejectsSpillover(t *testing.T) {
	// 08:00-09:30 overlaps the 08:00-09:00 Wednesday window but is not
	// contained in it (or any other), so no notification.
	fetcher := &fakeFetcher{raws: []slot.RawSlot{
		{Date: "2026-09-02", StartMinute: 480, EndMinute: 570, CourtID: "1"},
	}}
	notifier := &fakeNotifier{}
	r := newRunner(t, fetcher, notifier, "2026-09-02")

	result := r.Run(context.Background())
	if result.SlotsMatch != 0 || result.Notified != 0 {
		t.Errorf("matched/notified = %d/%d, want 0/0", result.SlotsMatch, result.Notified)
	}
}

func TestRunWeekendDurationCap(t *testing.T) {
	// Saturday 10:00-12:30 is inside the weekend window but 150 minutes.
	fetcher := &fakeFetcher{raws: []slot.RawSlot{
		{Date: "2026-09-05", StartMinute: 600, EndMinute: 750, CourtID: "2"},
	}}
	notifier := &fakeNotifier{}
	r := newRunner(t, fetcher, notifier, "2026-09-05") // a Saturday

	result := r.Run(context.Background())
	if result.Category != slot.CategoryWeekend {
		t.Errorf("Category = %s, want weekend", result.Category)
	}
	if result.Notified != 0 {
		t.Errorf("Notified = %d, want 0 (over duration cap)", result.Notified)
	}
}

func TestRunRepeatedChecksNotifyOnce(t *testing.T) {
	fetcher := &fakeFetcher{raws: []slot.RawSlot{
		{Date: "2026-09-02", StartMinute: 720, EndMinute: 780, CourtID: "3"},
	}}
	notifier := &fakeNotifier{}
	r := newRunner(t, fetcher, notifier, "2026-09-02")

	first := r.Run(context.Background())
	second := r.Run(context.Background())

	if first.Notified != 1 {
		t.Errorf("first run Notified = %d, want 1", first.Notified)
	}
	if second.Notified != 0 {
		t.Errorf("second run Notified = %d, want 0", second.Notified)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("total sent = %d, want exactly 1", len(notifier.sent))
	}
	// Still counted as a match on the second pass, just suppressed.
	if second.SlotsMatch != 1 {
		t.Errorf("second run SlotsMatch = %d, want 1", second.SlotsMatch)
	}
}

func TestRunTransientScrapeFailureIsRecoverable(t *testing.T) {
	fetcher := &fakeFetcher{err: &scraper.TransientError{Op: "fetch sessions", Err: context.DeadlineExceeded}}
	notifier := &fakeNotifier{}
	r := newRunner(t, fetcher, notifier, "2026-09-02")

	result := r.Run(context.Background())
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want one entry", result.Errors)
	}
	if result.Notified != 0 || len(notifier.sent) != 0 {
		t.Error("notifications sent despite scrape failure")
	}

	// Next tick succeeds and the slot is still notifiable.
	fetcher.err = nil
	fetcher.raws = []slot.RawSlot{{Date: "2026-09-02", StartMinute: 720, EndMinute: 780, CourtID: "3"}}
	result = r.Run(context.Background())
	if result.Notified != 1 {
		t.Errorf("recovery run Notified = %d, want 1", result.Notified)
	}
}

func TestRunSkipsMalformedEntries(t *testing.T) {
	fetcher := &fakeFetcher{raws: []slot.RawSlot{
		{Date: "2026-09-02", StartMinute: 780, EndMinute: 720, CourtID: "bad"},
		{Date: "2026-09-02", StartMinute: 720, EndMinute: 780, CourtID: "3"},
	}}
	notifier := &fakeNotifier{}
	r := newRunner(t, fetcher, notifier, "2026-09-02")

	result := r.Run(context.Background())
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, want one malformed entry", result.Errors)
	}
	if result.Notified != 1 {
		t.Errorf("Notified = %d, want 1 (good slot still processed)", result.Notified)
	}
}

func TestRunDeliveryFailureDoesNotUnmark(t *testing.T) {
	fetcher := &fakeFetcher{raws: []slot.RawSlot{
		{Date: "2026-09-02", StartMinute: 720, EndMinute: 780, CourtID: "3"},
	}}
	notifier := &fakeNotifier{err: context.DeadlineExceeded}
	r := newRunner(t, fetcher, notifier, "2026-09-02")

	result := r.Run(context.Background())
	if result.Notified != 0 || len(result.Errors) != 1 {
		t.Errorf("notified/errors = %d/%v, want 0/one entry", result.Notified, result.Errors)
	}

	// Delivery recovers, but the slot stays marked: at most once.
	notifier.err = nil
	result = r.Run(context.Background())
	if result.Notified != 0 || len(notifier.sent) != 0 {
		t.Error("slot re-notified after delivery failure; ledger mark must stick")
	}
}
