package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort        string
	DatabaseURL       string
	RedisURL          string
	BotToken          string
	AdminAPIKey       string
	OpenAIAPIKey      string
	PollInterval      time.Duration
	PollTimeout       time.Duration
	VisitRadiusMeters float64
}

func LoadConfig() (*Config, error) {
	pollInterval, err := time.ParseDuration(getEnv("POLL_INTERVAL", "1s"))
	if err != nil {
		return nil, errors.New("invalid POLL_INTERVAL format")
	}
	pollTimeout, err := time.ParseDuration(getEnv("POLL_TIMEOUT", "30s"))
	if err != nil {
		return nil, errors.New("invalid POLL_TIMEOUT format")
	}
	radius, err := strconv.ParseFloat(getEnv("VISIT_RADIUS_METERS", "100"), 64)
	if err != nil || radius <= 0 {
		return nil, errors.New("invalid VISIT_RADIUS_METERS")
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		BotToken:          os.Getenv("TELEGRAM_BOT_TOKEN"),
		AdminAPIKey:       os.Getenv("ADMIN_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		PollInterval:      pollInterval,
		PollTimeout:       pollTimeout,
		VisitRadiusMeters: radius,
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.BotToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.AdminAPIKey == "" {
		return nil, errors.New("ADMIN_API_KEY is required")
	}
	// OPENAI_API_KEY is optional: without it the bot still runs, only the
	// LLM half of /suggest is disabled.

	return cfg, nil
}

// Helper: get env with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
