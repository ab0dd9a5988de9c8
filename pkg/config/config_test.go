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

	assert.Equal(t, 5000, cfg.Port)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Timetable.Days)
	assert.Equal(t, 6, cfg.Timetable.PeriodsPerDay)
	assert.Equal(t, 45*time.Minute, cfg.Timetable.PeriodLength)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("TIMETABLE_DAYS", "6,1,1,9,x")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []int{6, 1}, cfg.Timetable.Days)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestEnvTakesPrecedenceOverNodeEnv(t *testing.T) {
	t.Setenv("ENV", "Development")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.False(t, cfg.IsProduction())
}

func TestParseDaysFallsBackToWeekdays(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5}, parseDays(""))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, parseDays("0,8"))
	assert.Equal(t, []int{7}, parseDays(" 7 "))
}
