// Package cache holds the two process-wide stores backing the proxy
// endpoints: a FIFO-evicting search result store that can serve stale
// entries as a rate-limit fallback, and a TTL byte cache for proxied
// thumbnails.
package cache

import (
	"context"
)

// ByteCache is the interface for the proxied image byte cache.
// The generic type T represents the value type being cached.
type ByteCache[T any] interface {
	// Get retrieves a value from the cache.
	// Returns the value, whether it was found, and any error.
	Get(ctx context.Context, key string) (T, bool, error)

	// Set stores a value in the cache.
	Set(ctx context.Context, key string, value T) error

	// Invalidate removes a value from the cache.
	Invalidate(ctx context.Context, key string) error
}
