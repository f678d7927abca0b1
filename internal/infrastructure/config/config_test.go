package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "kahawa-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "kahawa", cfg.Database.DBName)
	assert.Equal(t, 100, cfg.Event.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.Event.PollInterval)
	assert.Equal(t, "KAHAWA", cfg.Notification.Sender)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("KAHAWA_DATABASE_HOST", "db.internal")
	t.Setenv("KAHAWA_APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "9090", cfg.App.Port)
}

func TestProductionValidation(t *testing.T) {
	t.Setenv("KAHAWA_APP_ENV", "production")

	// No password and sslmode=disable must both be rejected.
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.password")

	t.Setenv("KAHAWA_DATABASE_PASSWORD", "s3cret")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sslmode")

	t.Setenv("KAHAWA_DATABASE_SSLMODE", "require")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.App.Env)
}

func TestDSNEscapesCredentials(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "kahawa",
		Password: "p@ss/word",
		DBName:   "kahawa",
		SSLMode:  "disable",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%2Fword")
	assert.Contains(t, dsn, "sslmode=disable")
}
