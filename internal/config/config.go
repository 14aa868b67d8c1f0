package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database (generation log)
	SQLiteDBPath string

	// Upload handling
	MaxUploadMB int

	// Letter defaults
	DefaultCity     string
	MonthEndChoices int

	// History view
	HistoryLimit int

	// Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/valorizza.db"),

		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 10),

		DefaultCity:     getEnv("LETTER_CITY", "Bratislava"),
		MonthEndChoices: getEnvInt("MONTH_END_CHOICES", 12),

		HistoryLimit: getEnvInt("HISTORY_LIMIT", 20),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate database path
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate upload limit
	if c.MaxUploadMB < 1 {
		errors = append(errors, fmt.Sprintf("invalid upload limit %d MB: must be at least 1", c.MaxUploadMB))
	} else if c.MaxUploadMB > 100 {
		errors = append(errors, fmt.Sprintf("invalid upload limit %d MB: must be at most 100", c.MaxUploadMB))
	}

	// Validate letter defaults
	if strings.TrimSpace(c.DefaultCity) == "" {
		errors = append(errors, "default city cannot be empty")
	}
	if c.MonthEndChoices < 1 || c.MonthEndChoices > 120 {
		errors = append(errors, fmt.Sprintf("invalid month end choices %d: must be between 1 and 120", c.MonthEndChoices))
	}

	// Validate history limit
	if c.HistoryLimit < 1 || c.HistoryLimit > 500 {
		errors = append(errors, fmt.Sprintf("invalid history limit %d: must be between 1 and 500", c.HistoryLimit))
	}

	// Validate shutdown timeout
	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	} else if c.ShutdownTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at most 1 minute", c.ShutdownTimeout))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// MaxUploadBytes is the request body cap derived from MaxUploadMB.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
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
