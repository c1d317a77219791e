package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/semspace/internal/models"
)

// SQLiteStorage implements BundleStore using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

var _ BundleStore = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS diagnostics_bundles (
		cache_key TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		task_id TEXT NOT NULL,
		best_k INTEGER NOT NULL,
		samples INTEGER NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_bundles_fingerprint ON diagnostics_bundles(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_bundles_created_at ON diagnostics_bundles(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// PutBundle inserts or replaces the bundle stored under key.
func (s *SQLiteStorage) PutBundle(ctx context.Context, key string, b *models.DiagnosticsBundle) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO diagnostics_bundles (cache_key, fingerprint, task_id, best_k, samples, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		   fingerprint = excluded.fingerprint,
		   task_id = excluded.task_id,
		   best_k = excluded.best_k,
		   samples = excluded.samples,
		   payload = excluded.payload,
		   created_at = excluded.created_at`,
		key, b.Fingerprint, b.TaskID, b.BestK, len(b.Keys), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to store bundle: %w", err)
	}
	return nil
}

// GetBundle returns the bundle stored under key.
func (s *SQLiteStorage) GetBundle(ctx context.Context, key string) (*models.DiagnosticsBundle, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM diagnostics_bundles WHERE cache_key = ?`, key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bundle %s: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var b models.DiagnosticsBundle
	if err := json.Unmarshal([]byte(payload), &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bundle: %w", err)
	}
	return &b, nil
}

// DeleteBundle removes the bundle stored under key.
func (s *SQLiteStorage) DeleteBundle(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM diagnostics_bundles WHERE cache_key = ?`, key)
	return err
}

// ListEntries returns the newest entries first. A limit <= 0 lists everything.
func (s *SQLiteStorage) ListEntries(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT cache_key, fingerprint, task_id, best_k, samples, created_at
		 FROM diagnostics_bundles ORDER BY created_at DESC, cache_key LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Fingerprint, &e.TaskID, &e.BestK, &e.Samples, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Prune deletes all but the newest keep bundles.
func (s *SQLiteStorage) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM diagnostics_bundles WHERE cache_key NOT IN (
		   SELECT cache_key FROM diagnostics_bundles ORDER BY created_at DESC, cache_key LIMIT ?
		 )`, keep,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountBundles returns the number of cached bundles.
func (s *SQLiteStorage) CountBundles(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM diagnostics_bundles`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
