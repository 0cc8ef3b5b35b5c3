package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

// snapshotSchema is bumped when the snapshot encoding changes, so entries
// written by an older build are never decoded.
const snapshotSchema = "v1"

// Hash returns the hex SHA-256 of data. The file backend names entries by
// the hash of their key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RefSetKey keys a batch of item refs independent of order and repeats, so
// the same description batch requested in another order hits one entry.
// Refs are NUL-terminated before hashing; distinct sets cannot collide by
// concatenation.
func RefSetKey(refs []string) string {
	set := slices.Clone(refs)
	slices.Sort(set)
	set = slices.Compact(set)

	h := sha256.New()
	for _, r := range set {
		h.Write([]byte(r))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func snapshotKey(digest string) string {
	return "catalog:" + snapshotSchema + ":" + Hash([]byte(digest))
}
