// Package cache stores rendered artifacts and routed documents keyed by a
// hash of everything that determines them.
//
// Routing itself never reads from the cache: a key covers the complete
// diagram and every routing tunable, so a hit is byte-identical to what a
// fresh pass would produce.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default lifetimes.
const (
	TTLRouted   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
