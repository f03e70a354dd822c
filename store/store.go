package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("store: key not found")

// ErrUnavailable is returned when the storage backend cannot be reached.
var ErrUnavailable = errors.New("store: backend unavailable")

// SecureStore is an at-rest-encrypted key/value space. Implementations must
// be linearizable per key: a concurrent Put and Get for the same key never
// interleave partially, and Put is an atomic replace, never a merge.
//
// Encryption at rest is the implementation's responsibility; callers treat
// values as opaque blobs.
type SecureStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
