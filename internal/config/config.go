package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"recurring/internal/core"
	"recurring/internal/log"
	"recurring/internal/storage"
)

type Config struct {
	// Database
	DatabaseDriver  string
	DatabaseURL     string
	DatabaseSSLMode string
	SQLiteDBPath    string

	// Run
	RunDate         string // YYYY-MM-DD; empty means today
	RecurringUserID string // empty processes every user

	// AMQP run observer; disabled when URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		DatabaseDriver:  getEnv("DATABASE_DRIVER", string(storage.Postgres)),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DatabaseSSLMode: getEnv("DATABASE_SSLMODE", storage.DefaultSSLMode),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/recurring.db"),

		RunDate:         getEnv("RUN_DATE", ""),
		RecurringUserID: strings.TrimSpace(getEnv("RECURRING_USER_ID", "")),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "recurring"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "recurring_runs"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	dialect, err := storage.ParseDialect(c.DatabaseDriver)
	if err != nil {
		errors = append(errors, fmt.Sprintf("invalid database driver '%s': must be one of [postgres sqlite]", c.DatabaseDriver))
	}

	switch dialect {
	case storage.Postgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using the postgres driver")
		}
		switch c.DatabaseSSLMode {
		case "", "require", "verify-ca", "verify-full":
		default:
			errors = append(errors, fmt.Sprintf("invalid database sslmode '%s': must be one of [require verify-ca verify-full]", c.DatabaseSSLMode))
		}
	case storage.SQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using the sqlite driver")
		}
	}

	if c.RunDate != "" {
		if _, err := core.ParseDate(c.RunDate); err != nil {
			errors = append(errors, fmt.Sprintf("invalid RUN_DATE '%s': must be YYYY-MM-DD", c.RunDate))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, "invalid AMQP URL: cannot be parsed")
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// StorageOptions maps the database settings to storage options.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Dialect:    storage.Dialect(c.DatabaseDriver),
		URL:        c.DatabaseURL,
		SSLMode:    c.DatabaseSSLMode,
		SQLitePath: c.SQLiteDBPath,
	}
}

// Today resolves the run date: RUN_DATE when set, otherwise the calendar
// date of now in its own location.
func (c *Config) Today(now time.Time) (core.Date, error) {
	if c.RunDate != "" {
		return core.ParseDate(c.RunDate)
	}
	return core.DateOf(now), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
