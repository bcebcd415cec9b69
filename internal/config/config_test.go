package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN_FILE", "")
	t.Setenv("ENV", "development")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8001", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 3*time.Second, cfg.BannerTTL)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.Equal(t, ":8001", cfg.DevServer.Addr)
	assert.Equal(t, 30*time.Minute, cfg.DevServer.TokenExpiry)
	assert.NotEmpty(t, cfg.TokenFile)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.test:9000")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("TOKEN_FILE", "/tmp/session.json")
	t.Setenv("DEVSERVER_ADDR", ":9999")
	t.Setenv("DEVSERVER_LOGIN_BURST", "2")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://api.test:9000", cfg.APIBaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/tmp/session.json", cfg.TokenFile)
	assert.Equal(t, ":9999", cfg.DevServer.Addr)
	assert.Equal(t, 2, cfg.DevServer.LoginBurst)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DEVSERVER_JWT_SECRET", "")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "soon")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing environment")
}
