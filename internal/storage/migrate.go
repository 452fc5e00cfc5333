package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending migration of the dialect. The handle
// is owned by the migrator and closed when it finishes, so callers pass a
// dedicated connection rather than the one serving queries.
func RunMigrations(migrateDB *sql.DB, d Dialect) error {
	driver, err := migrationDriver(migrateDB, d)
	if err != nil {
		migrateDB.Close()
		return err
	}

	src, err := iofs.New(migrationsFS, "migrations/"+string(d))
	if err != nil {
		driver.Close()
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(d), driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func migrationDriver(db *sql.DB, d Dialect) (database.Driver, error) {
	switch d {
	case Postgres:
		driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
		if err != nil {
			return nil, fmt.Errorf("create pgx migration driver: %w", err)
		}
		return driver, nil
	case SQLite:
		driver, err := sqlite.WithInstance(db, &sqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("create sqlite migration driver: %w", err)
		}
		return driver, nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", d)
	}
}
