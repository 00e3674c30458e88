package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds process-level configuration.
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env       string // development, staging, production
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, with an optional .env
// file in the working directory.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	cfg := &Config{
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
