package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	// Telegram
	TelegramToken string

	// Database
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Personality API
	APIBaseURL      string
	APITimeout      time.Duration
	CandidatesLimit int
	VacanciesLimit  int

	// Bot settings
	BoardTTL       time.Duration
	MaxUploadSize  int64
	NotifySchedule string
	NotifyEnabled  bool

	// Logging
	LogLevel string
}

// Load reads the configuration from the environment, after merging a .env
// file from the working directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		// Defaults
		RedisAddr:       "localhost:6379",
		APIBaseURL:      "http://localhost:8000/api/v1",
		APITimeout:      30 * time.Second,
		CandidatesLimit: 10,
		VacanciesLimit:  100,
		BoardTTL:        time.Hour,
		MaxUploadSize:   20 << 20,
		NotifySchedule:  "@every 10m",
		NotifyEnabled:   true,
		LogLevel:        "info",
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	}

	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	if err := intEnv("REDIS_DB", &cfg.RedisDB); err != nil {
		return nil, err
	}

	if baseURL := os.Getenv("API_BASE_URL"); baseURL != "" {
		cfg.APIBaseURL = baseURL
	}

	if err := durationEnv("API_TIMEOUT", &cfg.APITimeout); err != nil {
		return nil, err
	}
	if err := intEnv("CANDIDATES_LIMIT", &cfg.CandidatesLimit); err != nil {
		return nil, err
	}
	if err := intEnv("VACANCIES_LIMIT", &cfg.VacanciesLimit); err != nil {
		return nil, err
	}
	if err := durationEnv("BOARD_TTL", &cfg.BoardTTL); err != nil {
		return nil, err
	}

	if size := os.Getenv("MAX_UPLOAD_SIZE"); size != "" {
		n, err := strconv.ParseInt(size, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE: %w", err)
		}
		cfg.MaxUploadSize = n
	}

	if schedule := os.Getenv("NOTIFY_SCHEDULE"); schedule != "" {
		cfg.NotifySchedule = schedule
	}

	if enabled := os.Getenv("NOTIFY_ENABLED"); enabled != "" {
		b, err := strconv.ParseBool(enabled)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_ENABLED: %w", err)
		}
		cfg.NotifyEnabled = b
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("telegram token is empty")
	}

	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres DSN is empty")
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q", c.APIBaseURL)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("API timeout must be positive: %v", c.APITimeout)
	}

	if c.CandidatesLimit < 1 || c.CandidatesLimit > 100 {
		return fmt.Errorf("candidates limit must be between 1 and 100")
	}

	if c.VacanciesLimit < 1 || c.VacanciesLimit > 100 {
		return fmt.Errorf("vacancies limit must be between 1 and 100")
	}

	if c.BoardTTL < time.Minute {
		return fmt.Errorf("board TTL too small: %v", c.BoardTTL)
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	if c.NotifyEnabled {
		if _, err := cron.ParseStandard(c.NotifySchedule); err != nil {
			return fmt.Errorf("invalid notify schedule %q: %w", c.NotifySchedule, err)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

func intEnv(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func durationEnv(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
