package config

import (
	"fmt"
	"os"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port           string
	DatabaseURL    string
	MigrationsPath string
	RedisAddr      string
	RedisDB        string
	LogLevel       string
}

// Load reads configuration from environment variables. DATABASE_URL is the
// only required value; everything else has a workable default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvOrDefault("REDIS_DB", "0"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL = os.Getenv("DATABASE_URL"); cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default if unset.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
