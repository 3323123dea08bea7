package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mesa")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.APIPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 6000, cfg.PeriodLengthTenths)
	assert.Equal(t, 120, cfg.CrunchThresholdTenths)
	assert.Equal(t, 50, cfg.PlayLogCap)
	assert.Equal(t, 2, cfg.TimeoutsInitial)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MESA_DATABASE_URL", "postgres://localhost/mesa")
	t.Setenv("API_PORT", "9100")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CLOCK_CRUNCH_THRESHOLD_TENTHS", "240")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://mesa.ligaboreal.example, https://backup.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.APIPort)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 240, cfg.CrunchThresholdTenths)
	assert.Equal(t, []string{"https://mesa.ligaboreal.example", "https://backup.example"}, cfg.CORSAllowOrigins)
}

func TestRules(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mesa")
	t.Setenv("TIMEOUTS_PERIOD_3", "4")

	cfg, err := Load()
	require.NoError(t, err)

	rules := cfg.Rules()
	assert.Equal(t, 6000, rules.PeriodLength)
	assert.Equal(t, 4, rules.TimeoutsPeriod3)
	assert.Equal(t, 50, rules.LogCap)
}

func TestEnvHelpersIgnoreGarbage(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mesa")
	t.Setenv("API_PORT", "not-a-number")
	t.Setenv("DEBUG", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.APIPort, "unparseable int falls back to default")
	assert.False(t, cfg.Debug, "unparseable bool falls back to default")
}
