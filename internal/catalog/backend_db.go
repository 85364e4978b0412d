package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresBackend keeps the snapshot as a single bytea row keyed by name.
type PostgresBackend struct {
	db   *pgxpool.Pool
	name string
}

func NewPostgresBackend(db *pgxpool.Pool, name string) *PostgresBackend {
	return &PostgresBackend{db: db, name: name}
}

func (b *PostgresBackend) Name() string { return "postgres:" + b.name }

func (b *PostgresBackend) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return b.db.Ping(ctx)
	})
}

func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := b.db.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS catalog_snapshots (
				name     TEXT PRIMARY KEY,
				payload  BYTEA NOT NULL,
				saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`)
		return err
	})
}

func (b *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	var payload []byte

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return b.db.QueryRow(ctx, `
			SELECT payload
			FROM catalog_snapshots
			WHERE name = $1
		`, b.name).Scan(&payload)
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (b *PostgresBackend) Write(ctx context.Context, data []byte) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := b.db.Exec(ctx, `
			INSERT INTO catalog_snapshots (name, payload, saved_at)
			VALUES ($1, $2, now())
			ON CONFLICT (name) DO UPDATE
			SET payload = EXCLUDED.payload, saved_at = EXCLUDED.saved_at
		`, b.name, data)
		return err
	})
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
