package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var (
	ErrInvalidThreshold = errors.New("breaker failure threshold must be positive")
	ErrInvalidRetries   = errors.New("max retries must be non-negative")
	ErrRetriesTooHigh   = errors.New("max retries cannot exceed 10")
)

type Config struct {
	Database  DatabaseConfig
	Log       LogConfig
	Cache     CacheConfig
	Retry     RetryConfig
	Breaker   BreakerConfig
	Search    SearchConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig - опциональный архив истории поиска. Пустой URL = выключено.
type DatabaseConfig struct {
	URL string
}

type LogConfig struct {
	Level string
}

type CacheConfig struct {
	TTL time.Duration
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

type BreakerConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
}

type SearchConfig struct {
	Timeout       time.Duration
	DefaultLimit  int
	SummaryBudget int
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 300)) * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries: getEnvIntOrDefault("SEARCH_MAX_RETRIES", 2),
			BaseDelay:  time.Duration(getEnvIntOrDefault("SEARCH_RETRY_BASE_DELAY_MS", 500)) * time.Millisecond,
		},
		Breaker: BreakerConfig{
			FailureThreshold: getEnvIntOrDefault("BREAKER_FAILURE_THRESHOLD", 3),
			Cooldown:         time.Duration(getEnvIntOrDefault("BREAKER_COOLDOWN_SEC", 60)) * time.Second,
		},
		Search: SearchConfig{
			Timeout:       time.Duration(getEnvIntOrDefault("SEARCH_TIMEOUT_SEC", 15)) * time.Second,
			DefaultLimit:  getEnvIntOrDefault("SEARCH_DEFAULT_LIMIT", 10),
			SummaryBudget: getEnvIntOrDefault("SEARCH_SUMMARY_BUDGET", 500),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("PROVIDER_RATE_LIMIT_PER_MINUTE", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Breaker.FailureThreshold <= 0 {
		return ErrInvalidThreshold
	}
	if c.Retry.MaxRetries < 0 {
		return ErrInvalidRetries
	}
	if c.Retry.MaxRetries > 10 {
		return ErrRetriesTooHigh
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
