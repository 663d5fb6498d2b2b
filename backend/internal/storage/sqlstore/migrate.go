package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/itchan-dev/mboard/backend/internal/storage/sqlstore/migrations"
	"github.com/itchan-dev/mboard/shared/config"
	"github.com/itchan-dev/mboard/shared/logger"
)

// MigrateUp applies all pending migrations.
func (s *Storage) MigrateUp(ctx context.Context) error {
	return s.migrate(ctx, "up", (*migrate.Migrate).Up)
}

// MigrateDown reverts all applied migrations.
func (s *Storage) MigrateDown(ctx context.Context) error {
	return s.migrate(ctx, "down", (*migrate.Migrate).Down)
}

func (s *Storage) migrate(ctx context.Context, direction string, step func(*migrate.Migrate) error) error {
	log := logger.Component("storage")
	return s.guard.Write(ctx, func(ctx context.Context) error {
		m, err := s.newMigrator()
		if err != nil {
			return err
		}
		// m.Close is not called: it would close the shared *sql.DB.

		log.Info("applying database migrations", "driver", s.driver, "direction", direction)
		if err := step(m); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("no database migrations to apply")
				return nil
			}
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		log.Info("database migrations applied successfully", "direction", direction)
		return nil
	})
}

func (s *Storage) newMigrator() (*migrate.Migrate, error) {
	var (
		dbDriver database.Driver
		err      error
	)
	fs := migrations.SQLite
	dir := "sqlite"
	switch s.driver {
	case config.DriverPostgres:
		fs, dir = migrations.Postgres, "postgres"
		dbDriver, err = postgres.WithInstance(s.db.DB, &postgres.Config{})
	case config.DriverSQLite:
		dbDriver, err = sqlite3.WithInstance(s.db.DB, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("unsupported driver %q", s.driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migration driver: %w", s.driver, err)
	}

	sourceDriver, err := iofs.New(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create embed source driver instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, s.driver, dbDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
