// Package cache defines the result cache abstraction and its Redis and
// in-memory implementations. Entries are opaque bytes with a TTL;
// there is no eviction beyond expiry and no invalidation on job writes
// — entries are small and self-expiring.
package cache

import (
	"context"
	"time"
)

// Store is a key→bytes cache with per-entry TTL. The second return of
// Get distinguishes a miss from an empty value; errors are transport
// failures, never misses. Implementations must be safe for concurrent
// use. Concurrent Sets for the same key are idempotent — values are
// derived identically from the same inputs, so last write wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
