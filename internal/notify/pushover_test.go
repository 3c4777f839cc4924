package notify

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewPushoverRequiresCredentials(t *testing.T) {
	if NewPushover("", "token", nil) != nil {
		t.Error("sender created without user key")
	}
	if NewPushover("user", "", nil) != nil {
		t.Error("sender created without API token")
	}
	if NewPushover("user", "token", nil) == nil {
		t.Error("sender not created with full credentials")
	}
}

func TestNilSenderIsNoOp(t *testing.T) {
	var p *Pushover
	if err := p.Send(context.Background(), Message{Title: "t"}); err != nil {
		t.Errorf("nil sender Send = %v, want nil", err)
	}
}

func TestSendFormEncoding(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		got = map[string]string{}
		for k := range r.PostForm {
			got[k] = r.PostForm.Get(k)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPushover("user-key", "api-token", slog.New(slog.NewTextHandler(io.Discard, nil))).WithAPIURL(srv.URL)
	msg := Message{
		Title: "Court available: 2026-09-02 at 12:00",
		Body:  "Court free",
		URL:   "https://venue.example/book#?date=2026-09-02",
	}
	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	want := map[string]string{
		"token":     "api-token",
		"user":      "user-key",
		"title":     msg.Title,
		"message":   msg.Body,
		"url":       msg.URL,
		"url_title": "Book Now",
		"priority":  "1",
		"sound":     "pushover",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("form[%s] = %q, want %q", k, got[k], v)
		}
	}
}

func TestSendNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":0,"errors":["invalid token"]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewPushover("user-key", "bad-token", slog.New(slog.NewTextHandler(io.Discard, nil))).WithAPIURL(srv.URL)
	if err := p.Send(context.Background(), Message{Title: "t"}); err == nil {
		t.Error("Send succeeded against a 400 response")
	}
}
