package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/equipneeds/pkg/archetype"
	"github.com/matzehuels/equipneeds/pkg/cache"
	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/observability"
)

// snapshotVersion is bumped whenever the encoded layout changes. Entries
// with a different version read as misses.
const snapshotVersion = 1

// SnapshotStore persists completed catalogs keyed by recipe tree digest.
// Both operations are best effort: the builder treats a Get error as a miss
// and never waits on Put.
type SnapshotStore interface {
	Get(ctx context.Context, digest string) ([]archetype.Archetype, bool, error)
	Put(ctx context.Context, digest string, archetypes []archetype.Archetype) error
}

// snapshot is the encoded form. Digest is stored so a key collision can
// never serve the wrong tree.
type snapshot struct {
	Version    int                   `cbor:"1,keyasint"`
	Digest     string                `cbor:"2,keyasint"`
	Archetypes []archetype.Archetype `cbor:"3,keyasint"`
}

var (
	encMode     cbor.EncMode
	decMode     cbor.DecMode
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	// Core deterministic encoding: identical catalogs produce identical bytes.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("catalog: cbor encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("catalog: cbor decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("catalog: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("catalog: zstd decoder initialization failed: " + err.Error())
	}
}

// EncodeSnapshot serializes archetypes for digest as zstd-compressed CBOR.
func EncodeSnapshot(digest string, archetypes []archetype.Archetype) ([]byte, error) {
	raw, err := encMode.Marshal(snapshot{Version: snapshotVersion, Digest: digest, Archetypes: archetypes})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

// DecodeSnapshot reverses [EncodeSnapshot]. It fails with
// ErrCodeInvalidSnapshot when the payload is corrupt, was written by a
// different layout version, or belongs to another digest.
func DecodeSnapshot(digest string, data []byte) ([]archetype.Archetype, error) {
	raw, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decompress snapshot")
	}
	var s snapshot
	if err := decMode.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode snapshot")
	}
	if s.Version != snapshotVersion {
		return nil, errors.New(errors.ErrCodeInvalidSnapshot, "snapshot version %d, want %d", s.Version, snapshotVersion)
	}
	if s.Digest != digest {
		return nil, errors.New(errors.ErrCodeInvalidSnapshot, "snapshot digest %q, want %q", s.Digest, digest)
	}
	return s.Archetypes, nil
}

// CacheSnapshotStore keeps snapshots in a [cache.Cache].
type CacheSnapshotStore struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCacheSnapshotStore wraps c. A nil keyer uses the default key layout
// and a zero ttl uses [cache.TTLSnapshot].
func NewCacheSnapshotStore(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CacheSnapshotStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = cache.TTLSnapshot
	}
	return &CacheSnapshotStore{cache: c, keyer: keyer, ttl: ttl}
}

// Get implements [SnapshotStore]. A corrupt entry is deleted and reported
// as a miss.
func (s *CacheSnapshotStore) Get(ctx context.Context, digest string) ([]archetype.Archetype, bool, error) {
	if err := errors.ValidateDigest(digest); err != nil {
		return nil, false, err
	}
	key := s.keyer.SnapshotKey(digest)
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, "snapshot")
		return nil, false, nil
	}
	archetypes, err := DecodeSnapshot(digest, data)
	if err != nil {
		_ = s.cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "snapshot")
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, "snapshot")
	return archetypes, true, nil
}

// Put implements [SnapshotStore].
func (s *CacheSnapshotStore) Put(ctx context.Context, digest string, archetypes []archetype.Archetype) error {
	if err := errors.ValidateDigest(digest); err != nil {
		return err
	}
	data, err := EncodeSnapshot(digest, archetypes)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, s.keyer.SnapshotKey(digest), data, s.ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
	return nil
}

// Invalidate drops the snapshot for digest.
func (s *CacheSnapshotStore) Invalidate(ctx context.Context, digest string) error {
	return s.cache.Delete(ctx, s.keyer.SnapshotKey(digest))
}

var _ SnapshotStore = (*CacheSnapshotStore)(nil)
