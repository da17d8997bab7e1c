// Package statestore persists an opaque progress marker across independent
// runs of a scheduled task, using the cache backend keyed by a caller-supplied
// prefix. A local scratch file stages the payload for transfer and never
// outlives a single call.
package statestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"biliticket/statecache/internal/backend"
)

const (
	// Fixed scratch directory under the temp root. The UUID keeps it from
	// colliding with anything else; it must stay constant across runs.
	scratchDirName = "statecache-8f2b61de-1c44-4c38-9ff0-5a2c93b6e7a4"

	cacheKeySuffix    = "_state"
	scratchFileSuffix = "_state.txt"
)

// Options carries the caller-supplied configuration for one Store.
type Options struct {
	// CachePrefix namespaces the cache key and scratch file. Required.
	CachePrefix string
}

// Store saves and restores a single state blob under one cache key.
//
// Save and Restore are sequential by design; nothing guards two processes
// racing on the same prefix, and the last writer wins.
type Store struct {
	client     backend.Client
	prefix     string
	scratchDir string
	logger     *zap.Logger
}

func New(client backend.Client, opts Options, logger *zap.Logger) *Store {
	return &Store{
		client:     client,
		prefix:     opts.CachePrefix,
		scratchDir: filepath.Join(os.TempDir(), scratchDirName),
		logger:     logger,
	}
}

// CacheKey returns the backend key this store reads and writes.
func (s *Store) CacheKey() string {
	return s.prefix + cacheKeySuffix
}

func (s *Store) scratchFile() string {
	return filepath.Join(s.scratchDir, s.prefix+scratchFileSuffix)
}

// Save persists blob under the store's cache key. An empty blob clears the
// persisted state instead of uploading.
//
// Backend failures are logged and swallowed, with one exception: a delete
// failure carrying no recognizable backend code (a transport fault) is
// returned, as is a failure to set up the local scratch file.
func (s *Store) Save(ctx context.Context, blob string) error {
	if err := os.MkdirAll(s.scratchDir, 0o755); err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}

	path := s.scratchFile()
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		return fmt.Errorf("write scratch file: %w", err)
	}
	defer func() { _ = os.Remove(path) }()

	key := s.CacheKey()

	exists, err := s.entryExists(ctx, key)
	if err != nil {
		s.logger.Warn("listing cache entries failed, state not saved",
			zap.String("key", key), zap.Error(err))
		return nil
	}

	if exists {
		if err := s.deleteExisting(ctx, key); err != nil {
			return err
		}
	}

	if blob == "" {
		s.logger.Info("state is empty, skipping upload", zap.String("key", key))
		return nil
	}

	if err := s.client.UploadPaths(ctx, []string{s.scratchDir}, key); err != nil {
		s.logger.Warn("uploading state failed, state not saved",
			zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Restore fetches the previously saved blob, or "" when there is none or any
// step fails. It never returns an error; a lost state means the caller starts
// from the beginning.
func (s *Store) Restore(ctx context.Context) string {
	if err := os.MkdirAll(s.scratchDir, 0o755); err != nil {
		s.logger.Warn("creating scratch dir failed", zap.Error(err))
		return ""
	}

	// Drop anything a previous run left behind.
	path := s.scratchFile()
	_ = os.Remove(path)
	defer func() { _ = os.Remove(path) }()

	key := s.CacheKey()

	exists, err := s.entryExists(ctx, key)
	if err != nil {
		s.logger.Warn("listing cache entries failed, treating as no state",
			zap.String("key", key), zap.Error(err))
		return ""
	}
	if !exists {
		s.logger.Info("no saved state found", zap.String("key", key))
		return ""
	}

	if err := s.client.DownloadPaths(ctx, []string{s.scratchDir}, key); err != nil {
		s.logger.Warn("downloading state failed, treating as no state",
			zap.String("key", key), zap.Error(err))
		return ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("state file missing after download, treating as no state",
			zap.String("key", key), zap.Error(err))
		return ""
	}
	return string(data)
}

// entryExists asks the backend for a prefix-filtered listing and matches the
// exact key client-side. The listing is deliberately not treated as a
// prefix-match answer: other keys under the same prefix must not count.
func (s *Store) entryExists(ctx context.Context, key string) (bool, error) {
	entries, err := s.client.ListEntries(ctx, key)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.Key == key {
			return true, nil
		}
	}
	return false, nil
}

// deleteExisting removes the superseded entry. Coded backend rejections are
// non-fatal (another writer may have deleted it first); transport failures
// propagate.
func (s *Store) deleteExisting(ctx context.Context, key string) error {
	err := s.client.DeleteEntry(ctx, key)
	if err == nil {
		return nil
	}

	if backend.IsNotFound(err) {
		s.logger.Warn("cache entry already deleted", zap.String("key", key))
		return nil
	}
	var berr *backend.Error
	if errors.As(err, &berr) {
		s.logger.Warn("deleting cache entry failed",
			zap.String("key", key), zap.String("code", berr.Code), zap.Error(err))
		return nil
	}
	return fmt.Errorf("delete cache entry %q: %w", key, err)
}
