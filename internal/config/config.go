// Package config provides centralized configuration loaded from environment
// variables. Shared by cmd/watcher and cmd/courtctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for the London Fields Park ClubSpark venue.
const (
	DefaultVenueURL = "https://clubspark.lta.org.uk/LondonFieldsPark/Booking/BookByDate"
	DefaultTimezone = "Europe/London"
	DefaultWindow   = "21:55-22:05"
)

// Config struct — populated from environment variables.
type Config struct {
	// Venue / check behavior
	VenueBaseURL  string
	Timezone      string
	CheckWindow   string // HH:MM-HH:MM in venue time
	LookaheadDays int
	ScrapeTimeout time.Duration
	ScrapeRPM     int // scraper requests per minute (token bucket)

	// Pushover
	PushoverUserKey  string
	PushoverAPIToken string

	// Database (optional; empty means in-memory dedup ledger)
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		VenueBaseURL:  envOr("VENUE_BASE_URL", DefaultVenueURL),
		Timezone:      envOr("VENUE_TIMEZONE", DefaultTimezone),
		CheckWindow:   envOr("CHECK_WINDOW", DefaultWindow),
		LookaheadDays: envInt("LOOKAHEAD_DAYS", 7),
		ScrapeTimeout: time.Duration(envInt("SCRAPE_TIMEOUT_SECONDS", 45)) * time.Second,
		ScrapeRPM:     envInt("SCRAPE_REQUESTS_PER_MINUTE", 10),

		PushoverUserKey:  envOr("PUSHOVER_USER_KEY", ""),
		PushoverAPIToken: envOr("PUSHOVER_API_TOKEN", ""),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
	}

	if cfg.LookaheadDays < 0 {
		return nil, fmt.Errorf("LOOKAHEAD_DAYS must not be negative, got %d", cfg.LookaheadDays)
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NotificationsConfigured reports whether Pushover credentials are present.
func (c *Config) NotificationsConfigured() bool {
	return c.PushoverUserKey != "" && c.PushoverAPIToken != ""
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
