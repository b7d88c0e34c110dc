package providers

import (
	"context"
	"time"
)

// CacheProvider defines the persistent cache layer shared by all external
// clients. Get reports a miss explicitly so callers can tell "not cached"
// from "store unavailable"; the dual-layer cache swallows the latter.
type CacheProvider interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores a value in cache with a TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error
}
