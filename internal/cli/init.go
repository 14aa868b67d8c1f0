// Package cli holds the startup helpers shared by the server and the
// batch binary.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"valorizza/internal/config"
	"valorizza/internal/registry"
	"valorizza/internal/storage"
)

// LoadEnvFile pulls a local .env into the environment when present.
// Production runs on real environment variables, so a missing file is
// not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// NewLogger builds the process logger and installs it as the slog
// default. The destination is up to the binary: the server logs to
// stdout, the batch binary to stderr so -anteprima output stays
// pipeable.
func NewLogger(w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// InitConfig loads the environment configuration and stops the
// process when it does not hold together.
func InitConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitRegistry loads the embedded classification registry, the one
// piece of business knowledge every run depends on.
func InitRegistry(logger *slog.Logger) *registry.Registry {
	reg, err := registry.Default()
	if err != nil {
		logger.Error("Classification registry failed to load", "error", err)
		os.Exit(1)
	}
	logger.Info("Classification registry loaded", "version", reg.Version(), "rules", len(reg.Rules()))
	return reg
}

// InitStorage opens the letter generation log.
func InitStorage(logger *slog.Logger, dbPath string) *storage.Repository {
	repo, err := storage.NewRepository(dbPath)
	if err != nil {
		logger.Error("Letter log unavailable", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
