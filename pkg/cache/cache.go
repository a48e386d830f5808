// Package cache provides byte caches for fetched images and rendered
// exports.
//
// # Backends
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI (~/.cache/gridstudio/)
//   - [RedisCache]: shared cache for multi-instance API deployments
//
// All backends implement [Cache]. Keys are produced by a [Keyer] so every
// caller builds them the same way:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ImageKey("https://example.com/cat.jpg")
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Default time-to-live values per entry kind.
const (
	// TTLImage applies to downloaded source images.
	TTLImage = 24 * time.Hour

	// TTLArtifact applies to encoded exports. Remote images behind a URL
	// can change, so exports expire sooner than the images themselves.
	TTLArtifact = time.Hour
)

// Cache stores opaque byte values with an optional TTL.
// A TTL of 0 means the entry never expires.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
