// Package backends binds the repo contracts to a concrete storage engine.
// It is the single place in the program where a backend is chosen; the
// choice happens once, at startup.
package backends

import (
	"fmt"

	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/config"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo/postgres"
	"github.com/yoeldevsoft25/LA-CAJA-sub007/internal/repo/sqlite"
)

// Open connects the configured backend, runs its migrations and returns
// the bound repository bundle.
func Open(cfg *config.Config) (*repo.Repositories, error) {
	switch repo.Backend(cfg.Backend) {
	case repo.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return repo.NewRepositories(repo.BackendSQLite,
			store.Events(), store.Products(), store.Customers(), store.Close), nil

	case repo.BackendPostgres:
		store, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres backend: %w", err)
		}
		return repo.NewRepositories(repo.BackendPostgres,
			store.Events(), store.Products(), store.Customers(), store.Close), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
