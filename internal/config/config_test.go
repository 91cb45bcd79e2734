package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobtrail")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GMAIL_CLIENT_ID", "client-id")
	t.Setenv("GMAIL_CLIENT_SECRET", "client-secret")
	t.Setenv("GMAIL_REFRESH_TOKEN", "refresh-token")
	t.Setenv("CRON_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.LookbackHours)
	assert.Equal(t, 45, cfg.GhostThresholdDays)
	assert.Equal(t, 500, cfg.MaxMessages)
	assert.Equal(t, 8, cfg.FetchConcurrency)
	assert.Equal(t, "thread+url", cfg.MatchPolicy)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOOKBACK_HOURS", "72")
	t.Setenv("GHOST_THRESHOLD_DAYS", "30")
	t.Setenv("MATCH_POLICY", "thread")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 72, cfg.LookbackHours)
	assert.Equal(t, 30, cfg.GhostThresholdDays)
	assert.Equal(t, "thread", cfg.MatchPolicy)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadShortCronSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CRON_SECRET", "short")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadBadInteger(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOOKBACK_HOURS", "tomorrow")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOOKBACK_HOURS")
}

func TestLoadBadMatchPolicy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MATCH_POLICY", "fuzzy")

	_, err := Load()
	require.Error(t, err)
}
