// Package repository persists setup sessions. Every backend stores the full
// setup state, history included, as zstd-compressed JSON.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MHostile/root-automated-setup/internal/config"
	"github.com/MHostile/root-automated-setup/internal/setup"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no session is stored under an id
var ErrNotFound = errors.New("session not found")

// Repository stores setup state by session id
type Repository interface {
	// Save inserts or replaces the state stored under id
	Save(ctx context.Context, id string, state *setup.State) error
	// Load returns the state stored under id, or ErrNotFound
	Load(ctx context.Context, id string) (*setup.State, error)
	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// List returns every stored id, least recently saved first
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Open connects the backend selected by cfg
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.Info("using in-memory session storage")
		return NewMemory(), nil
	case config.DriverSQLite:
		repo, err := OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite session storage opened", zap.String("path", cfg.DSN))
		return repo, nil
	case config.DriverPostgres:
		repo, err := OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		stats := repo.pool.Stat()
		logger.Info("postgres session storage connected",
			zap.Int32("total_conns", stats.TotalConns()),
			zap.Int32("idle_conns", stats.IdleConns()),
		)
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
