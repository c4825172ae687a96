package port

import (
	"context"
	"errors"
	"time"
)

// ErrMiss reports a key absent from the cache. Callers fall back to the
// source of truth on a miss; any other error is a transport failure.
var ErrMiss = errors.New("cache: miss")

// Cache is a small string key-value store with per-key expiry. It memoizes
// read-mostly lookups such as conversation membership; values are plain
// strings so the port stays free of serialization concerns.
type Cache interface {
	// Get returns the value at key, or ErrMiss if the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. A non-positive ttl stores without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	Close() error
}
