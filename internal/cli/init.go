// Package cli provides the initialization shared by cmd/recurring-worker and
// cmd/migrate.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"recurring/internal/config"
	"recurring/internal/log"
	"recurring/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error; a malformed one is.
func LoadEnvFile() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogger builds the process logger from cfg and makes it the slog
// default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.DefaultConfig().Level
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = cfg.LogFormat
	logCfg.Component = component

	logger := log.New(logCfg)
	log.SetDefault(logger)
	return logger
}

// OpenStorage connects to the configured database and applies migrations.
func OpenStorage(ctx context.Context, logger *log.Logger, cfg *config.Config) (*storage.Repository, error) {
	logger = logger.WithComponent(log.ComponentStorage)

	repo, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.DatabaseDriver, err)
	}
	logger.InfoContext(ctx, "Storage ready",
		log.FieldOperation, log.OpMigrate,
		log.FieldDriver, cfg.DatabaseDriver)
	return repo, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM. An open
// transaction observing it rolls back.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
