package repository

import (
	"context"
	"time"
)

// BlobStore abstracts storage for cache archive payloads.
// Implementations: Redis (production) or in-memory (local dev / tests).
// A nil, nil return from Get means the blob is absent.
type BlobStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
