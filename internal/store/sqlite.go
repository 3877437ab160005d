// ABOUTME: SQLite implementation of the Store interface
// ABOUTME: One kv table; pure-Go modernc driver by default, mattn cgo driver on request

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLite driver names accepted by NewSQLiteStoreWithDriver
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path using the pure-Go driver.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithDriver(DriverModernc, path)
}

// NewSQLiteStoreWithDriver creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStoreWithDriver(driver, path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store", "backend", driver)

	switch driver {
	case DriverModernc, DriverMattn:
	default:
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	inMemory := path == ":memory:"
	if !inMemory {
		// Ensure parent directory exists
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own database
	if inMemory {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the kv table if it doesn't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// runMigrations applies schema migrations for existing databases.
// These are idempotent - safe to run multiple times. Databases written before
// updated_at existed only carry key and value.
func (s *SQLiteStore) runMigrations() error {
	migrations := []struct {
		check  string // Query to check if migration is needed
		apply  string // Query to apply the migration
		column string // Column name for logging
	}{
		{
			check:  `SELECT 1 FROM pragma_table_info('kv') WHERE name = 'updated_at'`,
			apply:  `ALTER TABLE kv ADD COLUMN updated_at TEXT NOT NULL DEFAULT ''`,
			column: "updated_at",
		},
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRow(m.check).Scan(&exists)
		if err == nil {
			// Column already exists, skip
			continue
		}
		if _, err := s.db.Exec(m.apply); err != nil {
			return fmt.Errorf("adding %s column to kv: %w", m.column, err)
		}
		s.logger.Info("applied migration", "column", m.column, "table", "kv")
	}

	return nil
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Get retrieves the document stored under key.
// Returns ErrAbsent if the key has never been written.
func (s *SQLiteStore) Get(ctx context.Context, key Key) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, string(key)).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", key, err)
	}

	return []byte(value), nil
}

const upsertKV = `
	INSERT INTO kv (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

// Put replaces the document stored under key.
func (s *SQLiteStore) Put(ctx context.Context, key Key, value []byte) error {
	if err := checkWrite(key, value); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, upsertKV,
		string(key),
		string(value),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	s.logger.Debug("wrote key", "key", key, "size", len(value))
	return nil
}

// Delete removes key. Deleting an absent key succeeds.
func (s *SQLiteStore) Delete(ctx context.Context, key Key) error {
	if err := checkKey(key); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, string(key)); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}

	s.logger.Debug("deleted key", "key", key)
	return nil
}

// PutMany writes every value inside one transaction.
func (s *SQLiteStore) PutMany(ctx context.Context, values map[Key][]byte) error {
	if err := checkBatch(values); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, upsertKV, string(k), string(v), now); err != nil {
			return fmt.Errorf("writing %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("wrote keys atomically", "count", len(values))
	return nil
}
