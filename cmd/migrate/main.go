// Command migrate applies every pending schema migration to the configured
// database and exits.
package main

import (
	"context"
	"fmt"
	"os"

	"recurring/internal/cli"
	"recurring/internal/log"
)

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	logger := cli.SetupLogger(cfg, log.ComponentMigrate)

	ctx, stop := cli.SignalContext(context.Background())
	repo, err := cli.OpenStorage(ctx, logger, cfg)
	stop()
	if err != nil {
		logger.Error("Migration failed", log.FieldOperation, log.OpMigrate, log.FieldError, err)
		os.Exit(1)
	}
	repo.Close()

	logger.Info("Migrations applied", log.FieldOperation, log.OpMigrate, log.FieldDriver, cfg.DatabaseDriver)
}
