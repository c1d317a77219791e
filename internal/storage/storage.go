// Package storage persists completed diagnostics bundles so an unchanged snapshot does not
// have to be re-clustered after a restart.
package storage

import (
	"context"
	"time"

	"github.com/hyperjump/semspace/internal/models"
)

// Entry describes one cached bundle without its payload.
type Entry struct {
	Key         string    `json:"key"`
	Fingerprint string    `json:"fingerprint"`
	TaskID      string    `json:"task_id"`
	BestK       int       `json:"best_k"`
	Samples     int       `json:"samples"`
	CreatedAt   time.Time `json:"created_at"`
}

// BundleStore is a keyed cache of diagnostics bundles.
type BundleStore interface {
	// PutBundle stores b under key, replacing any earlier bundle with that key.
	PutBundle(ctx context.Context, key string, b *models.DiagnosticsBundle) error
	// GetBundle returns the bundle stored under key or an error wrapping models.ErrNotFound.
	GetBundle(ctx context.Context, key string) (*models.DiagnosticsBundle, error)
	DeleteBundle(ctx context.Context, key string) error
	ListEntries(ctx context.Context, limit int) ([]*Entry, error)
	// Prune keeps the newest keep bundles and returns how many were removed.
	Prune(ctx context.Context, keep int) (int64, error)
	CountBundles(ctx context.Context) (int64, error)

	Close() error
}
