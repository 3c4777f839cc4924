// Package scraper fetches raw court availability from a ClubSpark venue
// booking page.
//
// The venue publishes its day schedule as JSON (resources → days → sessions,
// with session times as minutes since midnight). Rate limiting is handled via
// a token bucket limiter so repeated checks inside the nightly window stay
// polite.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hackneycourts/courtwatch/internal/slot"
)

// TransientError marks scrape failures worth retrying on the next tick:
// timeouts, transport errors, non-200 responses. A check that hits one is
// abandoned, not fatal.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("scrape %s: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// Client fetches availability for one venue.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a venue availability client with rate limiting. baseURL is the
// venue's BookByDate page; the sessions feed hangs off it.
func New(baseURL string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// venueSessions is the venue's day-schedule JSON shape.
type venueSessions struct {
	Resources []struct {
		ID   string `json:"ID"`
		Name string `json:"Name"`
		Days []struct {
			Date     string `json:"Date"`
			Sessions []struct {
				StartTime int    `json:"StartTime"` // minutes since midnight
				EndTime   int    `json:"EndTime"`
				Capacity  int    `json:"Capacity"`
				Name      string `json:"Name"`
			} `json:"Sessions"`
		} `json:"Days"`
	} `json:"Resources"`
}

// FetchAvailability returns every open slot for the target date. Sessions
// with no spare capacity are filtered out here; everything else is left for
// normalization and matching downstream.
func (c *Client) FetchAvailability(ctx context.Context, targetDate time.Time) ([]slot.RawSlot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransientError{Op: "rate limit wait", Err: err}
	}

	dateStr := targetDate.Format("2006-01-02")
	params := url.Values{}
	params.Set("startDate", dateStr)
	params.Set("endDate", dateStr)
	u := c.baseURL + "/GetVenueSessions?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Op: "fetch sessions", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Op: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &TransientError{
			Op:  "fetch sessions",
			Err: fmt.Errorf("venue returned %d: %s", resp.StatusCode, truncate(body, 200)),
		}
	}

	var schedule venueSessions
	if err := json.Unmarshal(body, &schedule); err != nil {
		return nil, &TransientError{Op: "decode sessions", Err: err}
	}

	var raws []slot.RawSlot
	for _, res := range schedule.Resources {
		for _, day := range res.Days {
			if !strings.HasPrefix(day.Date, dateStr) {
				continue
			}
			for _, sess := range day.Sessions {
				if sess.Capacity <= 0 {
					continue
				}
				raws = append(raws, slot.RawSlot{
					Date:        dateStr,
					StartMinute: sess.StartTime,
					EndMinute:   sess.EndTime,
					CourtID:     res.Name,
					Label:       sess.Name,
				})
			}
		}
	}

	c.logger.Debug("availability fetched", "date", dateStr, "slots", len(raws))
	return raws, nil
}

// BookingURL returns the date-anchored booking page for a slot; the page
// scrolls to the chosen date so the notification link lands one tap from
// checkout.
func (c *Client) BookingURL(date string) string {
	return c.baseURL + "#?date=" + date
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
