package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// DefaultSSLMode is applied when the connection string does not name one.
const DefaultSSLMode = "require"

// ErrInsecureTransport is returned when a postgres connection string would
// allow an unencrypted connection, including through a fallback.
var ErrInsecureTransport = errors.New("postgres connection must use TLS")

// NewPostgresRepository connects to postgres over TLS and applies migrations.
func NewPostgresRepository(ctx context.Context, dsn, sslMode string) (*Repository, error) {
	connConfig, err := postgresConfig(dsn, sslMode)
	if err != nil {
		return nil, err
	}

	open := func() (*sql.DB, error) {
		return stdlib.OpenDB(*connConfig), nil
	}
	return newRepository(ctx, Postgres, open)
}

// postgresConfig parses dsn and checks that every connection attempt pgx
// would make is encrypted.
func postgresConfig(dsn, sslMode string) (*pgx.ConnConfig, error) {
	dsn, err := withSSLMode(dsn, sslMode)
	if err != nil {
		return nil, err
	}

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres connection string: %w", err)
	}

	if connConfig.TLSConfig == nil {
		return nil, ErrInsecureTransport
	}
	for _, fallback := range connConfig.Fallbacks {
		if fallback.TLSConfig == nil {
			return nil, ErrInsecureTransport
		}
	}

	return connConfig, nil
}

// withSSLMode adds sslmode to dsn unless the caller already set one. Both URL
// and keyword/value connection strings are supported.
func withSSLMode(dsn, sslMode string) (string, error) {
	if sslMode == "" {
		sslMode = DefaultSSLMode
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse postgres url: %w", redactURLError(err))
		}
		q := u.Query()
		if q.Get("sslmode") == "" {
			q.Set("sslmode", sslMode)
			u.RawQuery = q.Encode()
		}
		return u.String(), nil
	}

	if strings.Contains(dsn, "sslmode=") {
		return dsn, nil
	}
	return strings.TrimSpace(dsn + " sslmode=" + sslMode), nil
}

// redactURLError drops the offending URL, which may carry a password.
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
