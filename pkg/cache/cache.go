// Package cache stores small byte values by key with an optional TTL.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for servers
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Cache errors are never fatal to callers that use the cache as a memo; they
// fall back to computing the value.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrBackend wraps failures of the underlying store.
var ErrBackend = errors.New("cache backend error")

// Cache is a key/value store with expiring entries. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry owned by the cache.
	Clear(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error
}
