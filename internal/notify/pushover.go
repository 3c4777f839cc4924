// Package notify delivers slot alerts through the Pushover API.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.pushover.net/1/messages.json"

// Message is one alert with a direct booking link.
type Message struct {
	Title string
	Body  string
	URL   string
}

// Pushover sends push notifications via the Pushover message API.
// Nil-safe: when credentials are not configured, Send logs and succeeds so
// the check pipeline behaves identically in dry runs.
type Pushover struct {
	apiURL     string
	userKey    string
	apiToken   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPushover creates a sender from user key and API token. Returns nil when
// either credential is empty (notifications disabled).
func NewPushover(userKey, apiToken string, logger *slog.Logger) *Pushover {
	if userKey == "" || apiToken == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pushover{
		apiURL:     defaultAPIURL,
		userKey:    userKey,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithAPIURL overrides the Pushover endpoint. Test hook.
func (p *Pushover) WithAPIURL(u string) *Pushover {
	if p != nil {
		p.apiURL = u
	}
	return p
}

// Send delivers one message. High priority with the distinct Pushover sound;
// the URL shows up as a "Book Now" action on the notification.
func (p *Pushover) Send(ctx context.Context, msg Message) error {
	if p == nil {
		slog.Default().Info("Pushover disabled, dropping notification", "title", msg.Title)
		return nil
	}

	form := url.Values{
		"token":     {p.apiToken},
		"user":      {p.userKey},
		"title":     {msg.Title},
		"message":   {msg.Body},
		"url":       {msg.URL},
		"url_title": {"Book Now"},
		"priority":  {"1"},
		"sound":     {"pushover"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pushover request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("pushover returned %d: %s", resp.StatusCode, body)
	}

	p.logger.Info("Pushover notification sent", "title", msg.Title)
	return nil
}
