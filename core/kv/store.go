// Package kv persists JSON documents under fixed string keys.
//
// A Store is the raw backend (memory, SQL, redis). The Adapter layers the
// get-with-seed and save contract on top of it and reports every change on a Hub.
package kv

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNotSaved is returned by writes that did not reach the backend. The previous value is kept.
	ErrNotSaved = errors.New("changes not saved")

	// ErrQuotaExceeded is returned by backends with a size limit.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	ErrEmptyKey = errors.New("empty key")
)

// Store is a persistent key-value backend.
type Store interface {
	// Get returns the value stored under key. ok is false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set replaces any value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists all stored keys.
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Watcher is implemented by stores that observe writes made by other processes.
// Watch blocks until ctx is done, publishing remote changes on hub.
type Watcher interface {
	Watch(ctx context.Context, hub *Hub) error
}
