package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"biliticket/statecache/internal/model"
	"biliticket/statecache/internal/repository"
)

// CacheService owns the storage logic for cache entries: metadata rows in the
// entry repository, payloads in the blob store. Callers (handlers) do scope
// authorization; this layer does not see tokens.
type CacheService interface {
	List(ctx context.Context, prefix string) ([]model.CacheEntry, error)
	Save(ctx context.Context, key string, data []byte) (*model.CacheEntry, error)
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type cacheService struct {
	entries      repository.EntryRepository
	blobs        repository.BlobStore
	maxEntrySize int64
	entryTTL     time.Duration
}

func NewCacheService(
	entries repository.EntryRepository,
	blobs repository.BlobStore,
	maxEntrySize int64,
	entryTTL time.Duration,
) CacheService {
	return &cacheService{
		entries:      entries,
		blobs:        blobs,
		maxEntrySize: maxEntrySize,
		entryTTL:     entryTTL,
	}
}

func (s *cacheService) List(ctx context.Context, prefix string) ([]model.CacheEntry, error) {
	return s.entries.ListByPrefix(ctx, prefix)
}

func (s *cacheService) Save(ctx context.Context, key string, data []byte) (*model.CacheEntry, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if s.maxEntrySize > 0 && int64(len(data)) > s.maxEntrySize {
		return nil, ErrEntryTooLarge
	}

	if err := s.blobs.Set(ctx, key, data, s.entryTTL); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	sum := sha256.Sum256(data)
	entry := &model.CacheEntry{
		Key:      key,
		Size:     int64(len(data)),
		Checksum: hex.EncodeToString(sum[:]),
	}
	if s.entryTTL > 0 {
		expires := time.Now().Add(s.entryTTL)
		entry.ExpiresAt = &expires
	}
	if err := s.entries.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("upsert entry: %w", err)
	}
	return entry, nil
}

func (s *cacheService) Load(ctx context.Context, key string) ([]byte, error) {
	if _, err := s.entries.GetByKey(ctx, key); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	data, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load blob: %w", err)
	}
	if data == nil {
		// Blob evicted (TTL) while the metadata row lingered. Treat as a
		// miss and drop the stale row.
		_ = s.entries.DeleteByKey(ctx, key)
		return nil, ErrEntryNotFound
	}
	return data, nil
}

func (s *cacheService) Delete(ctx context.Context, key string) error {
	err := s.entries.DeleteByKey(ctx, key)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return ErrEntryNotFound
	}
	if err != nil {
		return err
	}
	return s.blobs.Delete(ctx, key)
}

func (s *cacheService) CleanupExpired(ctx context.Context) (int64, error) {
	// Blobs expire on their own in the store; only the metadata rows need
	// sweeping.
	return s.entries.DeleteExpired(ctx, time.Now())
}
