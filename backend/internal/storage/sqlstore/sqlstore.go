// Package sqlstore is the board's storage layer.
//
// Every exported operation takes the storage guard itself: reads in shared
// mode, writes in exclusive mode. Writes that check a row before changing
// another (posting to a thread, editing or deleting a message) also run in a
// single transaction, so a failure never leaves a partial effect behind.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/itchan-dev/mboard/shared/config"
	"github.com/itchan-dev/mboard/shared/guard"
	"github.com/itchan-dev/mboard/shared/logger"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const pqForeignKeyViolation = "23503"

// ConnectionConfig holds database connection pool settings.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func connectionConfig(driver string) ConnectionConfig {
	if driver == config.DriverSQLite {
		// single connection: sqlite has one writer and :memory: is per connection
		return ConnectionConfig{MaxOpenConns: 1, MaxIdleConns: 1}
	}
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

type Storage struct {
	db     *sqlx.DB
	driver string
	guard  *guard.Guard
	now    func() time.Time
}

// New connects to the database selected by cfg. Migrations are not applied.
func New(cfg *config.Config, g *guard.Guard) (*Storage, error) {
	driver, dsn := DataSource(cfg)
	if driver == config.DriverSQLite {
		if err := ensureDir(cfg.Public.Storage.SqlitePath); err != nil {
			return nil, err
		}
	}
	return Open(driver, dsn, g)
}

// ensureDir creates the parent directory of a sqlite database file.
func ensureDir(path string) error {
	if path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

// DataSource returns the driver name and DSN for cfg.
func DataSource(cfg *config.Config) (string, string) {
	if cfg.Public.Storage.Driver == config.DriverPostgres {
		pg := cfg.Private.Pg
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(pg.User, pg.Password),
			Host:     net.JoinHostPort(pg.Host, strconv.Itoa(pg.Port)),
			Path:     "/" + pg.Dbname,
			RawQuery: "sslmode=disable",
		}
		return config.DriverPostgres, u.String()
	}
	return config.DriverSQLite, SQLiteDSN(cfg.Public.Storage.SqlitePath)
}

// SQLiteDSN builds a modernc DSN with foreign keys enforced.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// Open connects with an explicit driver ("postgres" or "sqlite") and DSN.
func Open(driver, dsn string, g *guard.Guard) (*Storage, error) {
	log := logger.Component("storage")
	log.Info("connecting to db", "driver", driver)

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	connCfg := connectionConfig(driver)
	db.SetMaxOpenConns(connCfg.MaxOpenConns)
	db.SetMaxIdleConns(connCfg.MaxIdleConns)
	db.SetConnMaxLifetime(connCfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(connCfg.ConnMaxIdleTime)

	log.Info("successfully connected to db", "driver", driver)
	return &Storage{db: db, driver: driver, guard: g, now: time.Now}, nil
}

// Ping verifies the database is reachable. It bypasses the guard.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// withTx runs fn in a transaction; any error rolls it back.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Storage) timestamp() Timestamp {
	return newTimestamp(s.now())
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			strings.Contains(liteErr.Error(), "FOREIGN KEY constraint failed")
	}
	return false
}
