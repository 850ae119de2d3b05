package cache

import (
	"context"
	"time"
)

// Store is the TTL'd key-value cache consumed by the search service and the
// invalidation scheduler. Implementations must report absent keys as
// ok=false with a nil error; errors are reserved for I/O failures.
type Store interface {
	// Get returns the cached value and its remaining TTL. ok is false when
	// the key is absent (or already expired).
	Get(ctx context.Context, key string) (value string, ttl time.Duration, ok bool, err error)
	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// DeleteByPrefix removes every key starting with prefix, regardless of
	// remaining TTL.
	DeleteByPrefix(ctx context.Context, prefix string) error
}
