package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/MHostile/root-automated-setup/internal/setup"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS setup_sessions (
	id         TEXT PRIMARY KEY,
	state      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores sessions in PostgreSQL through a pgx pool
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and makes sure the sessions table exists
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Save implements Repository
func (p *Postgres) Save(ctx context.Context, id string, state *setup.State) error {
	blob, err := Encode(state)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO setup_sessions (id, state, updated_at) VALUES ($1, $2, clock_timestamp())
ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
		id, blob,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// Load implements Repository
func (p *Postgres) Load(ctx context.Context, id string) (*setup.State, error) {
	var blob []byte
	err := p.pool.QueryRow(ctx, `SELECT state FROM setup_sessions WHERE id = $1`, id).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return Decode(blob)
}

// Delete implements Repository
func (p *Postgres) Delete(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM setup_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// List implements Repository
func (p *Postgres) List(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT id FROM setup_sessions ORDER BY updated_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan session ids: %w", err)
	}
	return ids, nil
}

// Close releases the pool
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

var _ Repository = (*Postgres)(nil)
