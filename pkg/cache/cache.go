// Package cache provides the byte-level caching layer used by the API
// client and the catalog snapshot store.
//
// # Backends
//
//   - [FileCache]: one file per key under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// All backends store opaque bytes; callers own the encoding. Expired
// entries read as misses.
//
// # Keys
//
// Keys are produced by a [Keyer] so that every backend sees the same key
// layout. [ScopedKeyer] adds a prefix for per-player isolation.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached values.
const (
	// TTLHTTP bounds cached API responses (item descriptions, store layouts).
	TTLHTTP = 24 * time.Hour

	// TTLSnapshot bounds completed catalog snapshots. Snapshots are keyed by
	// recipe tree digest, so a stale entry is never served for a new digest.
	TTLSnapshot = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl stores without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear empties c if the backend supports it and reports whether it did.
func Clear(ctx context.Context, c Cache) (bool, error) {
	cl, ok := c.(Clearer)
	if !ok {
		return false, nil
	}
	return true, cl.Clear(ctx)
}

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey keys a raw API response.
	HTTPKey(namespace, key string) string

	// SnapshotKey keys a completed catalog snapshot for a recipe tree digest.
	SnapshotKey(digest string) string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key layout.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey implements [Keyer].
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// SnapshotKey implements [Keyer].
func (DefaultKeyer) SnapshotKey(digest string) string {
	return snapshotKey(digest)
}
