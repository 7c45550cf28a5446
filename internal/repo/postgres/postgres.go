// Package postgres implements the repo contracts backed by PostgreSQL,
// the backend used when several terminals share one on-premise server.
package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store owns the PostgreSQL connection pool and hands out repository
// implementations bound to it.
type Store struct {
	db *sql.DB
}

// Open connects to the PostgreSQL database at the given URL, configures
// the connection pool, and runs any pending migrations.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w: %v", repo.ErrUnavailable, err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection pool.
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
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		switch {
		case pe.Code == "23505": // unique_violation
			return fmt.Errorf("%w: %v", repo.ErrDuplicateEventID, err)
		case pe.Code.Class() == "08": // connection exceptions
			return fmt.Errorf("%w: %v", repo.ErrUnavailable, err)
		}
	}
	return err
}
