package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/prepscore/internal/adapters/repository/migrations"
	"github.com/okian/prepscore/pkg/metrics"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const defaultBusyTimeout = 5 * time.Second

// SQLiteStore persists buckets in a single sqlite table.
type SQLiteStore struct {
	db          *sql.DB
	path        string
	busyTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens or creates the database at path and applies migrations.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{path: path, busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite allows one writer; a single connection also keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", s.busyTimeout.Milliseconds()),
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	s.db = db
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations.FS)
	if err != nil {
		return fmt.Errorf("store: create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	defer observe(bucket, "get", time.Now())
	if err := checkKey(bucket, key); err != nil {
		return nil, err
	}
	if err := s.open(); err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM items WHERE bucket = ? AND key = ?`, bucket, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError(bucket, "get")
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	return value, nil
}

// GetAll implements Store.
func (s *SQLiteStore) GetAll(ctx context.Context, bucket string) (map[string][]byte, error) {
	defer observe(bucket, "get_all", time.Now())
	if err := s.open(); err != nil {
		return nil, err
	}
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM items WHERE bucket = ?`, bucket)
	if err != nil {
		metrics.RecordStoreError(bucket, "get_all")
		return nil, fmt.Errorf("get all %s: %w", bucket, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			metrics.RecordStoreError(bucket, "get_all")
			return nil, fmt.Errorf("scan %s: %w", bucket, err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError(bucket, "get_all")
		return nil, fmt.Errorf("iterate %s: %w", bucket, err)
	}
	return out, nil
}

const upsertItem = `
	INSERT INTO items (bucket, key, value, updated_at) VALUES (?, ?, ?, ?)
	ON CONFLICT (bucket, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, bucket, key string, value []byte) error {
	defer observe(bucket, "put", time.Now())
	if err := checkKey(bucket, key); err != nil {
		return err
	}
	if err := s.open(); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	if _, err := s.db.ExecContext(ctx, upsertItem, bucket, key, value, time.Now().UnixMilli()); err != nil {
		metrics.RecordStoreError(bucket, "put")
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

// BulkPut implements Store.
func (s *SQLiteStore) BulkPut(ctx context.Context, bucket string, items map[string][]byte) error {
	defer observe(bucket, "bulk_put", time.Now())
	for k := range items {
		if err := checkKey(bucket, k); err != nil {
			return err
		}
	}
	if err := s.open(); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordStoreError(bucket, "bulk_put")
		return fmt.Errorf("begin bulk put %s: %w", bucket, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertItem)
	if err != nil {
		metrics.RecordStoreError(bucket, "bulk_put")
		return fmt.Errorf("prepare bulk put %s: %w", bucket, err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for k, v := range items {
		if _, err := stmt.ExecContext(ctx, bucket, k, v, now); err != nil {
			metrics.RecordStoreError(bucket, "bulk_put")
			return fmt.Errorf("bulk put %s/%s: %w", bucket, k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		metrics.RecordStoreError(bucket, "bulk_put")
		return fmt.Errorf("commit bulk put %s: %w", bucket, err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, bucket, key string) error {
	defer observe(bucket, "delete", time.Now())
	if err := s.open(); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE bucket = ? AND key = ?`, bucket, key); err != nil {
		metrics.RecordStoreError(bucket, "delete")
		return fmt.Errorf("delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear(ctx context.Context, bucket string) error {
	defer observe(bucket, "clear", time.Now())
	if err := s.open(); err != nil {
		return err
	}
	defer s.mu.RUnlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE bucket = ?`, bucket); err != nil {
		metrics.RecordStoreError(bucket, "clear")
		return fmt.Errorf("clear %s: %w", bucket, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// open takes the read lock and fails if the store is closed. On success the
// caller must release the lock.
func (s *SQLiteStore) open() error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrClosed
	}
	return nil
}
