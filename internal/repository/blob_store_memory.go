package repository

import (
	"context"
	"sync"
	"time"
)

type memBlob struct {
	value     []byte
	expiresAt time.Time
	hasTTL    bool
}

func (b memBlob) isExpired() bool {
	return b.hasTTL && time.Now().After(b.expiresAt)
}

type memoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string]memBlob
}

func NewMemoryBlobStore() BlobStore {
	return &memoryBlobStore{
		blobs: make(map[string]memBlob),
	}
}

func (s *memoryBlobStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob := memBlob{value: append([]byte(nil), value...)}
	if ttl > 0 {
		blob.hasTTL = true
		blob.expiresAt = time.Now().Add(ttl)
	}
	s.blobs[key] = blob
	return nil
}

func (s *memoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	blob, ok := s.blobs[key]
	s.mu.RUnlock()

	if !ok || blob.isExpired() {
		if ok && blob.isExpired() {
			s.mu.Lock()
			delete(s.blobs, key)
			s.mu.Unlock()
		}
		return nil, nil
	}
	return blob.value, nil
}

func (s *memoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *memoryBlobStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	blob, ok := s.blobs[key]
	s.mu.RUnlock()

	if !ok || blob.isExpired() {
		if ok && blob.isExpired() {
			s.mu.Lock()
			delete(s.blobs, key)
			s.mu.Unlock()
		}
		return false, nil
	}
	return true, nil
}
