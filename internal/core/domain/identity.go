package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// DocumentID derives the deterministic identifier for a document from the
// owning user, the filename and the full content. Identical inputs always
// produce the identical id across process restarts, which makes re-ingestion
// idempotent without a storage round trip.
//
// Each field is length-prefixed before hashing so that reordered or
// truncated inputs never alias: ("ab","c") and ("a","bc") hash differently.
// The content is consumed in full, never sampled.
func DocumentID(userID, filename, content string) string {
	h := sha256.New()
	for _, field := range []string{userID, filename, content} {
		var size [8]byte
		binary.BigEndian.PutUint64(size[:], uint64(len(field)))
		h.Write(size[:])
		h.Write([]byte(field))
	}
	return hex.EncodeToString(h.Sum(nil))
}
