// Package config provides environment-driven configuration for the service.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/jobtrail/internal/reconcile"
)

// Config holds everything the service needs to run. Values come from the
// environment; Load applies defaults before validation.
type Config struct {
	// Storage
	DatabaseURL string `validate:"required"`

	// Oracle
	GeminiAPIKey string `validate:"required"`
	GeminiModel  string

	// Mailbox access
	GmailClientID     string `validate:"required"`
	GmailClientSecret string `validate:"required"`
	GmailRefreshToken string `validate:"required"`

	// Trigger auth for POST /sync
	CronSecret string `validate:"required,min=16"`

	// Pipeline tuning
	LookbackHours      int    `validate:"min=1,max=720"`
	GhostThresholdDays int    `validate:"min=1"`
	MaxMessages        int    `validate:"min=1,max=500"`
	FetchConcurrency   int    `validate:"min=1,max=64"`
	MatchPolicy        string `validate:"oneof=thread thread+url"`

	// Server
	Port     int `validate:"min=1,max=65535"`
	LogLevel string
}

// Load reads configuration from the environment, applies defaults, and
// validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       os.Getenv("GEMINI_MODEL"),
		GmailClientID:     os.Getenv("GMAIL_CLIENT_ID"),
		GmailClientSecret: os.Getenv("GMAIL_CLIENT_SECRET"),
		GmailRefreshToken: os.Getenv("GMAIL_REFRESH_TOKEN"),
		CronSecret:        os.Getenv("CRON_SECRET"),
		MatchPolicy:       os.Getenv("MATCH_POLICY"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
	}

	var err error
	if cfg.LookbackHours, err = intEnv("LOOKBACK_HOURS", 24); err != nil {
		return nil, err
	}
	if cfg.GhostThresholdDays, err = intEnv("GHOST_THRESHOLD_DAYS", reconcile.DefaultGhostThresholdDays); err != nil {
		return nil, err
	}
	if cfg.MaxMessages, err = intEnv("MAX_MESSAGES", 500); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency, err = intEnv("FETCH_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.Port, err = intEnv("PORT", 8080); err != nil {
		return nil, err
	}

	if cfg.MatchPolicy == "" {
		cfg.MatchPolicy = string(reconcile.MatchThreadAndURL)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the Config using the validator.
func (c *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config error: %s must be an integer, got %q", key, raw)
	}
	return v, nil
}
