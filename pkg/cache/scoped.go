package cache

// ScopedKeyer wraps a Keyer with a prefix. The API server uses it to keep
// per-player HTTP responses apart while sharing catalog snapshots, which
// depend only on the recipe tree digest.
//
// Example usage:
//
//	playerKeyer := NewScopedKeyer(NewDefaultKeyer(), "player:42:")
//	sharedKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// SnapshotKey generates a prefixed key for catalog snapshots.
func (k *ScopedKeyer) SnapshotKey(digest string) string {
	return k.prefix + k.inner.SnapshotKey(digest)
}
