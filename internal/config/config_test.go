package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// setRequiredEnv satisfies every must() variable so Load can run in tests.
// t.Setenv restores the previous values on cleanup.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":    "test",
		"APP_PORT":   "8080",
		"DB_USER":    "portal",
		"DB_HOST":    "localhost",
		"DB_PORT":    "3306",
		"DB_NAME":    "portal",
		"JWT_SECRET": "test-secret",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadDefaultsPoolSettings(t *testing.T) {
	setRequiredEnv(t)

	cfg := Load()
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 25, cfg.DBMaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
}

func TestLoadReadsPoolSettingsFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	t.Setenv("DB_MAX_IDLE_CONNS", "10")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")

	cfg := Load()
	assert.Equal(t, 50, cfg.DBMaxOpenConns)
	assert.Equal(t, 10, cfg.DBMaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
}

func TestLoadIgnoresMalformedPoolSettings(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("DB_CONN_MAX_LIFETIME", "soon")

	cfg := Load()
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
}
