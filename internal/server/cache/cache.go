// Package cache implements the key-value layer in front of the record store.
// Values are msgpack-encoded typed payloads with a per-entry TTL.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indicates that key was not found in the cache or has expired
var ErrCacheMiss = errors.New("cache miss")

// Cache defines interface for a key-value store with per-entry expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value stored under key
	// Returns ErrCacheMiss if key is absent or expired; any other error
	// means the cache itself is unavailable
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
