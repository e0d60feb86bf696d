package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "test-password")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "stronghold", cfg.Database.Name)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)

	assert.Equal(t, 5, cfg.Auth.MaxFailedAttempts)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockoutDuration)
	assert.True(t, cfg.Auth.StrictLookup)
	assert.True(t, cfg.Auth.WrapPersistenceErrors)
	assert.Equal(t, 30*time.Second, cfg.Auth.CommandTimeout)
}

func TestLoadMissingDBPassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_PASSWORD", "test-password")
	t.Setenv("AUTH_MAX_FAILED_ATTEMPTS", "3")
	t.Setenv("AUTH_LOCKOUT_DURATION", "15m")
	t.Setenv("AUTH_STRICT_LOOKUP", "false")
	t.Setenv("AUTH_WRAP_PERSISTENCE_ERRORS", "false")
	t.Setenv("AUTH_COMMAND_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Auth.MaxFailedAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutDuration)
	assert.False(t, cfg.Auth.StrictLookup)
	assert.False(t, cfg.Auth.WrapPersistenceErrors)
	assert.Equal(t, 5*time.Second, cfg.Auth.CommandTimeout)
}

func TestLoadRejectsInvalidLockoutPolicy(t *testing.T) {
	t.Setenv("DB_PASSWORD", "test-password")
	t.Setenv("AUTH_MAX_FAILED_ATTEMPTS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_MAX_FAILED_ATTEMPTS")
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("DB_PASSWORD", "test-password")
	t.Setenv("AUTH_LOCKOUT_DURATION", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockoutDuration)
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "app",
		Password: "secret",
		Name:     "stronghold",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Equal(t, "host=db.internal port=5433 user=app password=secret dbname=stronghold sslmode=require", dsn)
}
