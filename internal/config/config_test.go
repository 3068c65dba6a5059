package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("MAINTENANCE_SCHEDULE", "@hourly")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "eighty")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadRejectsBadSchedule(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "development")
	t.Setenv("MAINTENANCE_SCHEDULE", "every tuesday")

	_, err := Load()
	assert.ErrorContains(t, err, "MAINTENANCE_SCHEDULE")
}
