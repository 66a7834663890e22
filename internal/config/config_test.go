package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"TELEGRAM_TOKEN", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"API_BASE_URL", "API_TIMEOUT", "CANDIDATES_LIMIT", "VACANCIES_LIMIT",
	"BOARD_TTL", "MAX_UPLOAD_SIZE", "NOTIFY_SCHEDULE", "NOTIFY_ENABLED", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "tg")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 10, cfg.CandidatesLimit)
	assert.Equal(t, 100, cfg.VacanciesLimit)
	assert.Equal(t, time.Hour, cfg.BoardTTL)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadSize)
	assert.Equal(t, "@every 10m", cfg.NotifySchedule)
	assert.True(t, cfg.NotifyEnabled)
	assert.Equal(t, "info", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "tg")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/db")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("API_BASE_URL", "https://hr.example.com/api/v1")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("CANDIDATES_LIMIT", "25")
	t.Setenv("BOARD_TTL", "2h")
	t.Setenv("MAX_UPLOAD_SIZE", "1024")
	t.Setenv("NOTIFY_SCHEDULE", "*/5 * * * *")
	t.Setenv("NOTIFY_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "https://hr.example.com/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, 25, cfg.CandidatesLimit)
	assert.Equal(t, 2*time.Hour, cfg.BoardTTL)
	assert.Equal(t, int64(1024), cfg.MaxUploadSize)
	assert.Equal(t, "*/5 * * * *", cfg.NotifySchedule)
	assert.False(t, cfg.NotifyEnabled)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{"POSTGRES_DSN": "dsn"}},
		{"missing dsn", map[string]string{"TELEGRAM_TOKEN": "tg"}},
		{"bad redis db", map[string]string{"TELEGRAM_TOKEN": "tg", "POSTGRES_DSN": "dsn", "REDIS_DB": "x"}},
		{"bad timeout", map[string]string{"TELEGRAM_TOKEN": "tg", "POSTGRES_DSN": "dsn", "API_TIMEOUT": "soon"}},
		{"bad notify flag", map[string]string{"TELEGRAM_TOKEN": "tg", "POSTGRES_DSN": "dsn", "NOTIFY_ENABLED": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func validConfig() Config {
	return Config{
		TelegramToken:   "tg",
		PostgresDSN:     "dsn",
		APIBaseURL:      "http://localhost:8000/api/v1",
		APITimeout:      time.Second,
		CandidatesLimit: 10,
		VacanciesLimit:  100,
		BoardTTL:        time.Hour,
		MaxUploadSize:   1,
		NotifySchedule:  "@every 10m",
		NotifyEnabled:   true,
		LogLevel:        "info",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"base url without scheme", func(c *Config) { c.APIBaseURL = "localhost:8000" }},
		{"zero timeout", func(c *Config) { c.APITimeout = 0 }},
		{"candidates limit", func(c *Config) { c.CandidatesLimit = 0 }},
		{"vacancies limit", func(c *Config) { c.VacanciesLimit = 101 }},
		{"short board ttl", func(c *Config) { c.BoardTTL = time.Second }},
		{"upload size", func(c *Config) { c.MaxUploadSize = 0 }},
		{"schedule", func(c *Config) { c.NotifySchedule = "every day" }},
		{"log level", func(c *Config) { c.LogLevel = "trace" }},
	}

	base := validConfig()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_ScheduleIgnoredWhenDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.NotifyEnabled = false
	cfg.NotifySchedule = "garbage"
	assert.NoError(t, cfg.Validate())
}
