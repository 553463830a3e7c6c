package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"finledger/internal/core"
)

type Config struct {
	// Store
	DBPath string

	// Reference timezone for date boundaries
	Timezone string

	// Logging
	LogLevel  string
	LogFormat string

	// Bank/category cache
	ReferenceCacheSize int
	ReferenceCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		DBPath:   getEnv("LEDGER_DB_PATH", "./data/user.db"),
		Timezone: getEnv("LEDGER_TIMEZONE", core.DefaultTimezone),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		ReferenceCacheSize: getEnvInt("REFERENCE_CACHE_SIZE", 64),
		ReferenceCacheTTL:  getEnvDuration("REFERENCE_CACHE_TTL", 10*time.Minute),
	}
}

// Location resolves the configured reference timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.DBPath) == "" {
		errors = append(errors, "database path cannot be empty")
	} else if dir := filepath.Dir(c.DBPath); dir != "." && dir != "" {
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			errors = append(errors, fmt.Sprintf("database directory '%s' is not a directory", dir))
		}
	}

	if c.Timezone == "" {
		errors = append(errors, "timezone cannot be empty")
	} else if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}

	validFormats := []string{"text", "json"}
	if !contains(validFormats, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	if c.ReferenceCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid reference cache size %d: must be at least 1", c.ReferenceCacheSize))
	} else if c.ReferenceCacheSize > 10000 {
		errors = append(errors, fmt.Sprintf("invalid reference cache size %d: must be at most 10000", c.ReferenceCacheSize))
	}

	if c.ReferenceCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid reference cache ttl %v: must be at least 1 second", c.ReferenceCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
