package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"recurring/internal/amqp"
	"recurring/internal/cli"
	"recurring/internal/config"
	"recurring/internal/log"
	"recurring/internal/services"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Configuration validation failed", log.FieldError, err)
		return 1
	}

	logger := cli.SetupLogger(cfg, log.ComponentApp)
	logger.Info("Starting recurring-worker", log.FieldOperation, log.OpStartup)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if _, err := run(ctx, logger, cfg, time.Now()); err != nil {
		if ctx.Err() != nil {
			logger.Warn("Run interrupted by signal, transaction rolled back",
				log.FieldOperation, log.OpShutdown)
		}
		logger.Error("Recurring expense run failed", log.FieldError, err)
		return 1
	}
	return 0
}

// run performs one pass over the due recurring expenses and returns once the
// result is committed, or rolled back on error.
func run(ctx context.Context, logger *log.Logger, cfg *config.Config, now time.Time) (services.RunResult, error) {
	ctx = log.NewContext(ctx, logger)

	today, err := cfg.Today(now)
	if err != nil {
		return services.RunResult{}, fmt.Errorf("resolve run date: %w", err)
	}

	repo, err := cli.OpenStorage(ctx, logger, cfg)
	if err != nil {
		return services.RunResult{}, err
	}
	defer repo.Close()

	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without run notifications", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	processor := services.NewRecurringProcessor(repo, publisher, cfg.RecurringUserID)
	result, err := processor.ProcessDueExpenses(ctx, today)
	if err != nil {
		return result, err
	}

	logger.InfoContext(ctx, "Recurring-worker finished",
		log.FieldRunDate, today.String(),
		log.FieldProcessed, result.Processed,
		"skipped", result.Skipped)
	return result, nil
}
