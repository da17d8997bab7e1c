package repository

import (
	"context"
	"errors"
	"time"

	"biliticket/statecache/internal/model"
)

// ErrEntryNotFound is returned by Get/Delete when no row matches the key.
var ErrEntryNotFound = errors.New("cache entry not found")

type EntryRepository interface {
	// Upsert creates the entry or replaces the existing row with the same key.
	Upsert(ctx context.Context, entry *model.CacheEntry) error
	GetByKey(ctx context.Context, key string) (*model.CacheEntry, error)
	// ListByPrefix returns entries whose key starts with prefix, newest first.
	// An empty prefix lists everything.
	ListByPrefix(ctx context.Context, prefix string) ([]model.CacheEntry, error)
	DeleteByKey(ctx context.Context, key string) error
	// DeleteExpired removes rows whose expiry is before now, returning how
	// many were deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
