package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biliticket/statecache/pkg/response"
)

// Entry is one stored cache entry as reported by the backend.
type Entry struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// Client is the cache backend as consumed by the state store: list entries by
// prefix, delete by key, and move archived paths up and down.
type Client interface {
	ListEntries(ctx context.Context, prefix string) ([]Entry, error)
	DeleteEntry(ctx context.Context, key string) error
	UploadPaths(ctx context.Context, paths []string, key string) error
	DownloadPaths(ctx context.Context, paths []string, key string) error
}

// Error is a backend rejection carrying the wire error code. Transport
// failures (no response, undecodable body) are plain errors, never *Error.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error %d (%s): %s", e.Status, e.Code, e.Message)
}

// IsCode reports whether err is a backend error with the given wire code.
func IsCode(err error, code string) bool {
	var berr *Error
	return errors.As(err, &berr) && berr.Code == code
}

// IsNotFound reports whether err is the backend's entry_not_found rejection.
func IsNotFound(err error) bool {
	return IsCode(err, response.CodeEntryNotFound)
}
