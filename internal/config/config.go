package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppEnv        string
	Port          string
	DatabaseURL   string
	RedisURL      string
	SessionSecret string
	LogLevel      string
	LogFormat     string

	// NotifyWebhookURL is the outbound message gateway; empty disables side
	// notifications.
	NotifyWebhookURL string

	MaxClientsPerIdentity int
	RateLimitPerSecond    float64
	RateLimitBurst        int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		Port:                  getEnv("PORT", "8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		SessionSecret:         getEnv("SESSION_SECRET", ""),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
		NotifyWebhookURL:      getEnv("NOTIFY_WEBHOOK_URL", ""),
		MaxClientsPerIdentity: getEnvInt("MAX_CLIENTS_PER_IDENTITY", 10),
		RateLimitPerSecond:    getEnvFloat("RATE_LIMIT_PER_SECOND", 20),
		RateLimitBurst:        getEnvInt("RATE_LIMIT_BURST", 40),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters, got %d", len(cfg.SessionSecret))
	}
	if cfg.MaxClientsPerIdentity < 1 {
		return nil, fmt.Errorf("MAX_CLIENTS_PER_IDENTITY must be at least 1")
	}
	if cfg.RateLimitPerSecond <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_SECOND must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
