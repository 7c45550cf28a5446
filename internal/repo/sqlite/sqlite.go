// Package sqlite implements the repo contracts on an embedded SQLite
// database, the backend used by the desktop client.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store owns the SQLite connection and hands out repository
// implementations bound to it.
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at path, applies the WAL
// pragmas and runs any pending migrations. The pool is limited to a
// single connection: SQLite supports one writer at a time, and the
// engine's scheduling model is a single logical writer per device anyway.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w: %v", repo.ErrUnavailable, err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Events returns the event repository bound to this store.
func (s *Store) Events() repo.EventRepository {
	return &EventRepo{db: s.db}
}

// Products returns the product repository bound to this store.
func (s *Store) Products() repo.ProductRepository {
	return &ProductRepo{db: s.db}
}

// Customers returns the customer repository bound to this store.
func (s *Store) Customers() repo.CustomerRepository {
	return &CustomerRepo{db: s.db}
}

// translateErr maps driver failures onto the shared sentinel errors.
// Unique-constraint violations on the events table become
// ErrDuplicateEventID: both unique indexes (event_id and the per-device
// seq slot) identify the same logical event, since the seq slot is what
// the event_id was minted for.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch {
		case se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", repo.ErrDuplicateEventID, err)
		case se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked:
			return fmt.Errorf("%w: %v", repo.ErrUnavailable, err)
		}
	}
	return err
}

// timestamps are stored as Unix milliseconds, matching the layout the
// desktop client has always used.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func toMillisPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func fromMillisNull(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	t := fromMillis(ms.Int64)
	return &t
}
