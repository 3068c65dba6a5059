package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const devJWTSecret = "yatube-dev-secret"

// Config holds the application configuration.
type Config struct {
	ServerPort          int
	DatabasePath        string
	JWTSecret           string
	Env                 string
	LogLevel            string
	AllowedOrigins      []string
	MaintenanceSchedule string // cron spec for SQLite housekeeping
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
	}

	cfg := &Config{
		ServerPort:          port,
		DatabasePath:        getEnv("DATABASE_PATH", "./yatube.db"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		Env:                 getEnv("APP_ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "@hourly"),
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = devJWTSecret
	}

	if _, err := cron.ParseStandard(cfg.MaintenanceSchedule); err != nil {
		return nil, fmt.Errorf("invalid MAINTENANCE_SCHEDULE %q: %w", cfg.MaintenanceSchedule, err)
	}

	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
