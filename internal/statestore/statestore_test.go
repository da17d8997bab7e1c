package statestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biliticket/statecache/internal/backend"
	"biliticket/statecache/pkg/response"
)

// fakeBackend stores uploads as filename->content maps per key, so upload
// and download move real files through the scratch directory like the HTTP
// client does.
type fakeBackend struct {
	entries map[string]map[string][]byte

	listErr     error
	deleteErr   error
	uploadErr   error
	downloadErr error

	deleteCalls  int
	listPrefixes []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{entries: make(map[string]map[string][]byte)}
}

func (f *fakeBackend) ListEntries(_ context.Context, prefix string) ([]backend.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.listPrefixes = append(f.listPrefixes, prefix)

	var out []backend.Entry
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			out = append(out, backend.Entry{Key: key})
		}
	}
	return out, nil
}

func (f *fakeBackend) DeleteEntry(_ context.Context, key string) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.entries[key]; !ok {
		return &backend.Error{Status: 404, Code: response.CodeEntryNotFound, Message: "cache entry not found"}
	}
	delete(f.entries, key)
	return nil
}

func (f *fakeBackend) UploadPaths(_ context.Context, paths []string, key string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	files := make(map[string][]byte)
	for _, dir := range paths {
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, de := range dirEntries {
			if de.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(dir, de.Name()))
			if err != nil {
				return err
			}
			files[de.Name()] = data
		}
	}
	f.entries[key] = files
	return nil
}

func (f *fakeBackend) DownloadPaths(_ context.Context, paths []string, key string) error {
	if f.downloadErr != nil {
		return f.downloadErr
	}
	files, ok := f.entries[key]
	if !ok {
		return &backend.Error{Status: 404, Code: response.CodeEntryNotFound, Message: "cache entry not found"}
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(paths[0], name), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func newTestStore(t *testing.T, fake *fakeBackend, prefix string) *Store {
	t.Helper()
	t.Setenv("TMPDIR", t.TempDir())
	return New(fake, Options{CachePrefix: prefix}, zap.NewNop())
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	fake := newFakeBackend()
	store := newTestStore(t, fake, "foo")

	require.NoError(t, store.Save(context.Background(), "42"))
	assert.Equal(t, "42", store.Restore(context.Background()))
}

func TestCacheKeyDerivation(t *testing.T) {
	fake := newFakeBackend()
	store := newTestStore(t, fake, "foo")

	require.NoError(t, store.Save(context.Background(), "42"))

	require.Contains(t, fake.entries, "foo_state")
	assert.Equal(t, []byte("42"), fake.entries["foo_state"]["foo_state.txt"])
}

func TestSaveIsIdempotent(t *testing.T) {
	fake := newFakeBackend()
	store := newTestStore(t, fake, "foo")

	require.NoError(t, store.Save(context.Background(), "cursor-1"))
	require.NoError(t, store.Save(context.Background(), "cursor-1"))

	assert.Len(t, fake.entries, 1)
	assert.Equal(t, 1, fake.deleteCalls)
	assert.Equal(t, "cursor-1", store.Restore(context.Background()))
}

func TestSaveEmptyBlobClearsState(t *testing.T) {
	fake := newFakeBackend()
	store := newTestStore(t, fake, "foo")

	require.NoError(t, store.Save(context.Background(), "something"))
	require.NoError(t, store.Save(context.Background(), ""))

	assert.Empty(t, fake.entries)
	assert.Equal(t, "", store.Restore(context.Background()))
}

func TestRestoreFirstRunReturnsEmpty(t *testing.T) {
	fake := newFakeBackend()
	store := newTestStore(t, fake, "foo")

	assert.Equal(t, "", store.Restore(context.Background()))
}

func TestRestoreRequiresExactKeyMatch(t *testing.T) {
	fake := newFakeBackend()
	// Shares the listing prefix with foo_state but is a different key.
	fake.entries["foo_state_other"] = map[string][]byte{"foo_state.txt": []byte("wrong")}
	store := newTestStore(t, fake, "foo")

	assert.Equal(t, "", store.Restore(context.Background()))
}

func TestSaveDoesNotDeleteOnPrefixOnlyMatch(t *testing.T) {
	fake := newFakeBackend()
	fake.entries["foo_state_other"] = map[string][]byte{"x": []byte("y")}
	store := newTestStore(t, fake, "foo")

	require.NoError(t, store.Save(context.Background(), "42"))

	assert.Zero(t, fake.deleteCalls)
	assert.Contains(t, fake.entries, "foo_state_other")
}

func TestRestoreMissingFileAfterDownload(t *testing.T) {
	fake := newFakeBackend()
	// Entry exists but its archive does not contain the expected file.
	fake.entries["foo_state"] = map[string][]byte{"unrelated.txt": []byte("junk")}
	store := newTestStore(t, fake, "foo")

	assert.Equal(t, "", store.Restore(context.Background()))
}

func TestSaveSwallowsListFailure(t *testing.T) {
	fake := newFakeBackend()
	fake.listErr = errors.New("connection refused")
	store := newTestStore(t, fake, "foo")

	assert.NoError(t, store.Save(context.Background(), "42"))
	assert.Empty(t, fake.entries)
}

func TestSaveSwallowsUploadFailure(t *testing.T) {
	fake := newFakeBackend()
	fake.uploadErr = errors.New("connection reset")
	store := newTestStore(t, fake, "foo")

	assert.NoError(t, store.Save(context.Background(), "42"))
}

func TestSaveDeleteTransportErrorIsFatal(t *testing.T) {
	fake := newFakeBackend()
	fake.entries["foo_state"] = map[string][]byte{"foo_state.txt": []byte("old")}
	fake.deleteErr = errors.New("connection reset")
	store := newTestStore(t, fake, "foo")

	err := store.Save(context.Background(), "new")
	require.Error(t, err)
	assert.ErrorContains(t, err, "delete cache entry")
}

func TestSaveDeleteCodedErrorIsSwallowed(t *testing.T) {
	fake := newFakeBackend()
	fake.entries["foo_state"] = map[string][]byte{"foo_state.txt": []byte("old")}
	fake.deleteErr = &backend.Error{Status: 404, Code: response.CodeEntryNotFound, Message: "cache entry not found"}
	store := newTestStore(t, fake, "foo")

	require.NoError(t, store.Save(context.Background(), "new"))
	// Upload still happened despite the lost delete race.
	assert.Equal(t, []byte("new"), fake.entries["foo_state"]["foo_state.txt"])
}

func TestScratchFileNeverOutlivesCall(t *testing.T) {
	fake := newFakeBackend()
	store := newTestStore(t, fake, "foo")
	scratch := store.scratchFile()

	require.NoError(t, store.Save(context.Background(), "42"))
	assert.NoFileExists(t, scratch)

	store.Restore(context.Background())
	assert.NoFileExists(t, scratch)

	// Failure paths clean up too.
	fake.downloadErr = errors.New("connection reset")
	store.Restore(context.Background())
	assert.NoFileExists(t, scratch)
}

func TestRestoreRemovesStaleScratchFile(t *testing.T) {
	fake := newFakeBackend()
	store := newTestStore(t, fake, "foo")

	// Simulate a crashed previous run leaving a scratch file behind.
	require.NoError(t, os.MkdirAll(filepath.Dir(store.scratchFile()), 0o755))
	require.NoError(t, os.WriteFile(store.scratchFile(), []byte("stale"), 0o644))

	assert.Equal(t, "", store.Restore(context.Background()))
	assert.NoFileExists(t, store.scratchFile())
}

func TestSavePreservesBlobVerbatim(t *testing.T) {
	fake := newFakeBackend()
	store := newTestStore(t, fake, "foo")

	blob := "line1\nline2\té\n"
	require.NoError(t, store.Save(context.Background(), blob))
	assert.Equal(t, blob, store.Restore(context.Background()))
}
