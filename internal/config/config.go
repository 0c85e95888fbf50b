// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the server needs to start.
type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for local development.
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		SQLiteDBPath: getEnv("DB_PATH", "./data/homeledger.db"),
	}
}

// Validate returns an error describing the first invalid setting.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	if c.SQLiteDBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
