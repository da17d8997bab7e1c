package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"biliticket/statecache/internal/model"
)

type memoryEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]model.CacheEntry
}

// NewMemoryEntryRepository backs the entry index with a map. Used for local
// dev and tests; production uses Postgres.
func NewMemoryEntryRepository() EntryRepository {
	return &memoryEntryRepository{
		entries: make(map[string]model.CacheEntry),
	}
}

func (r *memoryEntryRepository) Upsert(_ context.Context, entry *model.CacheEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if existing, ok := r.entries[entry.Key]; ok {
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
	} else {
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	r.entries[entry.Key] = *entry
	return nil
}

func (r *memoryEntryRepository) GetByKey(_ context.Context, key string) (*model.CacheEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[key]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return &entry, nil
}

func (r *memoryEntryRepository) ListByPrefix(_ context.Context, prefix string) ([]model.CacheEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []model.CacheEntry
	for _, entry := range r.entries {
		if strings.HasPrefix(entry.Key, prefix) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (r *memoryEntryRepository) DeleteByKey(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; !ok {
		return ErrEntryNotFound
	}
	delete(r.entries, key)
	return nil
}

func (r *memoryEntryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for key, entry := range r.entries {
		if entry.ExpiresAt != nil && entry.ExpiresAt.Before(now) {
			delete(r.entries, key)
			n++
		}
	}
	return n, nil
}
