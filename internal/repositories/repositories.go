package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/focus/internal/shared"
)

// KVRepository stores string values by key in the kv table.
type KVRepository struct {
	db     *sql.DB
	logger *log.Logger
}

// NewKVRepository creates a new [KVRepository]. A nil logger discards output.
func NewKVRepository(db *sql.DB, logger *log.Logger) *KVRepository {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &KVRepository{db: db, logger: logger}
}

// Lookup returns the value for key or [shared.ErrKeyNotFound].
func (r *KVRepository) Lookup(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", shared.ErrKeyNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query key %s: %w", key, err)
	}
	return value, nil
}

// Put inserts or replaces the value for key.
func (r *KVRepository) Put(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store key %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are ignored.
func (r *KVRepository) Delete(ctx context.Context, keys ...string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Keys lists every stored key in order.
func (r *KVRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Get implements the notes persistence host. Absent keys and read failures
// both report false; failures are logged.
func (r *KVRepository) Get(key string) (string, bool) {
	v, err := r.Lookup(context.Background(), key)
	if err != nil {
		if !errors.Is(err, shared.ErrKeyNotFound) {
			r.logger.Warn("failed to read key", "key", key, "error", err)
		}
		return "", false
	}
	return v, true
}

// Set implements the notes persistence host.
func (r *KVRepository) Set(key, value string) error {
	return r.Put(context.Background(), key, value)
}
