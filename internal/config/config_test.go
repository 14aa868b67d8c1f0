package config

import (
	"os"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:            "8081",
		SQLiteDBPath:    "./test.db",
		MaxUploadMB:     10,
		DefaultCity:     "Bratislava",
		MonthEndChoices: 12,
		HistoryLimit:    20,
		ShutdownTimeout: 10 * time.Second,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "missing database path",
			mutate:      func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name:        "upload limit too small",
			mutate:      func(c *Config) { c.MaxUploadMB = 0 },
			wantErr:     true,
			errorString: "invalid upload limit 0 MB: must be at least 1",
		},
		{
			name:        "upload limit too large",
			mutate:      func(c *Config) { c.MaxUploadMB = 500 },
			wantErr:     true,
			errorString: "invalid upload limit 500 MB: must be at most 100",
		},
		{
			name:        "empty default city",
			mutate:      func(c *Config) { c.DefaultCity = "  " },
			wantErr:     true,
			errorString: "default city cannot be empty",
		},
		{
			name:        "month end choices out of range",
			mutate:      func(c *Config) { c.MonthEndChoices = 0 },
			wantErr:     true,
			errorString: "invalid month end choices 0",
		},
		{
			name:        "history limit out of range",
			mutate:      func(c *Config) { c.HistoryLimit = 1000 },
			wantErr:     true,
			errorString: "invalid history limit 1000",
		},
		{
			name:        "shutdown timeout too short",
			mutate:      func(c *Config) { c.ShutdownTimeout = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid shutdown timeout 500ms: must be at least 1 second",
		},
		{
			name:        "shutdown timeout too long",
			mutate:      func(c *Config) { c.ShutdownTimeout = 2 * time.Minute },
			wantErr:     true,
			errorString: "invalid shutdown timeout 2m0s: must be at most 1 minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else {
				if err != nil {
					t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	// Save original env vars
	originalVars := map[string]string{
		"PORT":              os.Getenv("PORT"),
		"SQLITE_DB_PATH":    os.Getenv("SQLITE_DB_PATH"),
		"MAX_UPLOAD_MB":     os.Getenv("MAX_UPLOAD_MB"),
		"LETTER_CITY":       os.Getenv("LETTER_CITY"),
		"MONTH_END_CHOICES": os.Getenv("MONTH_END_CHOICES"),
		"HISTORY_LIMIT":     os.Getenv("HISTORY_LIMIT"),
		"SHUTDOWN_TIMEOUT":  os.Getenv("SHUTDOWN_TIMEOUT"),
	}

	// Clean environment
	for key := range originalVars {
		os.Unsetenv(key)
	}

	// Restore env vars at end of test
	defer func() {
		for key, value := range originalVars {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.SQLiteDBPath != "./data/valorizza.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/valorizza.db", cfg.SQLiteDBPath)
		}
		if cfg.MaxUploadMB != 10 {
			t.Errorf("Load() MaxUploadMB = %v, want 10", cfg.MaxUploadMB)
		}
		if cfg.DefaultCity != "Bratislava" {
			t.Errorf("Load() DefaultCity = %v, want Bratislava", cfg.DefaultCity)
		}
		if cfg.MonthEndChoices != 12 {
			t.Errorf("Load() MonthEndChoices = %v, want 12", cfg.MonthEndChoices)
		}
		if cfg.MaxUploadBytes() != 10<<20 {
			t.Errorf("Load() MaxUploadBytes = %v, want %v", cfg.MaxUploadBytes(), 10<<20)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		os.Setenv("MAX_UPLOAD_MB", "25")
		os.Setenv("LETTER_CITY", "Milano")
		os.Setenv("MONTH_END_CHOICES", "24")
		os.Setenv("SHUTDOWN_TIMEOUT", "15s")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want /tmp/test.db", cfg.SQLiteDBPath)
		}
		if cfg.MaxUploadMB != 25 {
			t.Errorf("Load() MaxUploadMB = %v, want 25", cfg.MaxUploadMB)
		}
		if cfg.DefaultCity != "Milano" {
			t.Errorf("Load() DefaultCity = %v, want Milano", cfg.DefaultCity)
		}
		if cfg.MonthEndChoices != 24 {
			t.Errorf("Load() MonthEndChoices = %v, want 24", cfg.MonthEndChoices)
		}
		if cfg.ShutdownTimeout != 15*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 15s", cfg.ShutdownTimeout)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		os.Setenv("MAX_UPLOAD_MB", "invalid")
		os.Setenv("SHUTDOWN_TIMEOUT", "invalid")

		cfg := Load()

		if cfg.MaxUploadMB != 10 {
			t.Errorf("Load() MaxUploadMB = %v, want 10 (default for invalid input)", cfg.MaxUploadMB)
		}
		if cfg.ShutdownTimeout != 10*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 10s (default for invalid input)", cfg.ShutdownTimeout)
		}
	})
}

// Helper function to check if string contains substring
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || func() bool {
		for i := 0; i <= len(s)-len(substr); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	}())
}
