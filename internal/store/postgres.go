// ABOUTME: Postgres implementation of the Store interface using pgxpool
// ABOUTME: Mirrors the SQLite kv table so a dataset can move between backends

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface on a Postgres database
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore connects to the database at url and creates the kv table
// if it doesn't exist.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	if url == "" {
		return nil, errors.New("postgres url required")
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("opening postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS schoolbook_kv (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger := slog.Default().With("component", "store", "backend", "postgres")
	logger.Info("Postgres store initialized")

	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Ensure PostgresStore implements Store interface
var _ Store = (*PostgresStore)(nil)

// Get returns the document stored under key, or ErrAbsent.
func (p *PostgresStore) Get(ctx context.Context, key Key) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value::text FROM schoolbook_kv WHERE key = $1`, string(key)).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", key, err)
	}
	return value, nil
}

const upsertPostgresKV = `
	INSERT INTO schoolbook_kv (key, value, updated_at)
	VALUES ($1, $2::jsonb, $3)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`

// Put replaces the document stored under key.
func (p *PostgresStore) Put(ctx context.Context, key Key, value []byte) error {
	if err := checkWrite(key, value); err != nil {
		return err
	}

	if _, err := p.pool.Exec(ctx, upsertPostgresKV, string(key), string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	p.logger.Debug("wrote key", "key", key, "size", len(value))
	return nil
}

// Delete removes key.
func (p *PostgresStore) Delete(ctx context.Context, key Key) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if _, err := p.pool.Exec(ctx, `DELETE FROM schoolbook_kv WHERE key = $1`, string(key)); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// PutMany writes every value inside one transaction.
func (p *PostgresStore) PutMany(ctx context.Context, values map[Key][]byte) error {
	if err := checkBatch(values); err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for k, v := range values {
		if _, err := tx.Exec(ctx, upsertPostgresKV, string(k), string(v), now); err != nil {
			return fmt.Errorf("writing %s: %w", k, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	p.logger.Debug("wrote keys atomically", "count", len(values))
	return nil
}

// Close closes the connection pool
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
