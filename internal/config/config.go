package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds service-level settings sourced from the environment:
// where run history lives, where logs go, and where the API listens.
// Per-run gate settings come from the project config instead.
type Config struct {
	// History storage; DatabaseURL selects Postgres, otherwise runs
	// land in the local SQLite file at HistoryPath
	DatabaseURL string
	HistoryPath string

	// Logging
	LogFile string

	// API server
	APIPort int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: getEnv("MUTGATE_DATABASE_URL", ""),
		HistoryPath: getEnv("MUTGATE_HISTORY_PATH", ".mutgate/history.db"),
		LogFile:     getEnv("MUTGATE_LOG_FILE", ""),
		APIPort:     getEnvInt("MUTGATE_API_PORT", 8675),
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("MUTGATE_API_PORT must be between 1 and 65535, got %d", c.APIPort)
	}

	if c.DatabaseURL == "" && c.HistoryPath == "" {
		return fmt.Errorf("MUTGATE_HISTORY_PATH required when MUTGATE_DATABASE_URL is unset")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
