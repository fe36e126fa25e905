package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads all config from env", func(t *testing.T) {
		t.Setenv("ADDR", ":9090")
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, ":9090", cfg.Addr)
		require.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		require.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("defaults addr when unset", func(t *testing.T) {
		t.Setenv("ADDR", "")
		t.Setenv("DATABASE_URL", "postgres://localhost/test")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, ":3000", cfg.Addr)
	})

	t.Run("fails without database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "DATABASE_URL is required")
	})

	t.Run("parses session TTL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("SESSION_TTL_HOURS", "24")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	})

	t.Run("ignores invalid session TTL", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("SESSION_TTL_HOURS", "nope")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 720*time.Hour, cfg.SessionTTL)
	})

	t.Run("parses cookie secure flag", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/test")
		t.Setenv("COOKIE_SECURE", "true")

		cfg, err := Load()
		require.NoError(t, err)
		require.True(t, cfg.CookieSecure)
	})
}
