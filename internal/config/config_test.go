package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.VenueBaseURL != DefaultVenueURL {
		t.Errorf("VenueBaseURL = %s", cfg.VenueBaseURL)
	}
	if cfg.Timezone != "Europe/London" {
		t.Errorf("Timezone = %s, want Europe/London", cfg.Timezone)
	}
	if cfg.CheckWindow != "21:55-22:05" {
		t.Errorf("CheckWindow = %s, want 21:55-22:05", cfg.CheckWindow)
	}
	if cfg.LookaheadDays != 7 {
		t.Errorf("LookaheadDays = %d, want 7", cfg.LookaheadDays)
	}
	if cfg.ScrapeTimeout != 45*time.Second {
		t.Errorf("ScrapeTimeout = %s, want 45s", cfg.ScrapeTimeout)
	}
	if cfg.NotificationsConfigured() {
		t.Error("notifications configured without credentials in env")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHECK_WINDOW", "20:00-20:30")
	t.Setenv("LOOKAHEAD_DAYS", "14")
	t.Setenv("PUSHOVER_USER_KEY", "u")
	t.Setenv("PUSHOVER_API_TOKEN", "t")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CheckWindow != "20:00-20:30" {
		t.Errorf("CheckWindow = %s", cfg.CheckWindow)
	}
	if cfg.LookaheadDays != 14 {
		t.Errorf("LookaheadDays = %d, want 14", cfg.LookaheadDays)
	}
	if !cfg.NotificationsConfigured() {
		t.Error("notifications not configured despite credentials")
	}
	if len(cfg.CORSAllowOrigins) != 2 || cfg.CORSAllowOrigins[1] != "https://b.example" {
		t.Errorf("CORSAllowOrigins = %v", cfg.CORSAllowOrigins)
	}
}

func TestLoadRejectsNegativeLookahead(t *testing.T) {
	t.Setenv("LOOKAHEAD_DAYS", "-1")
	if _, err := Load(); err == nil {
		t.Error("Load accepted a negative lookahead")
	}
}
