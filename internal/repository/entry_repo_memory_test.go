package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biliticket/statecache/internal/model"
)

func TestMemoryEntryRepoUpsertPreservesIdentity(t *testing.T) {
	repo := NewMemoryEntryRepository()
	ctx := context.Background()

	first := &model.CacheEntry{Key: "job_state", Size: 1, Checksum: "a"}
	require.NoError(t, repo.Upsert(ctx, first))

	second := &model.CacheEntry{Key: "job_state", Size: 2, Checksum: "b"}
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.GetByKey(ctx, "job_state")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, int64(2), got.Size)
	assert.Equal(t, "b", got.Checksum)
}

func TestMemoryEntryRepoListByPrefix(t *testing.T) {
	repo := NewMemoryEntryRepository()
	ctx := context.Background()

	for _, key := range []string{"job_state", "job_state_other", "unrelated"} {
		require.NoError(t, repo.Upsert(ctx, &model.CacheEntry{Key: key}))
	}

	entries, err := repo.ListByPrefix(ctx, "job_state")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = repo.ListByPrefix(ctx, "")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestMemoryEntryRepoDelete(t *testing.T) {
	repo := NewMemoryEntryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.CacheEntry{Key: "job_state"}))
	require.NoError(t, repo.DeleteByKey(ctx, "job_state"))
	assert.ErrorIs(t, repo.DeleteByKey(ctx, "job_state"), ErrEntryNotFound)

	_, err := repo.GetByKey(ctx, "job_state")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestMemoryEntryRepoDeleteExpired(t *testing.T) {
	repo := NewMemoryEntryRepository()
	ctx := context.Background()

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	require.NoError(t, repo.Upsert(ctx, &model.CacheEntry{Key: "old", ExpiresAt: &past}))
	require.NoError(t, repo.Upsert(ctx, &model.CacheEntry{Key: "fresh", ExpiresAt: &future}))
	require.NoError(t, repo.Upsert(ctx, &model.CacheEntry{Key: "forever"}))

	n, err := repo.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := repo.ListByPrefix(ctx, "")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
