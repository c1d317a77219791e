package vector

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

const fingerprintPrefix = "snap:"

// Fingerprint returns a stable content hash of keys and vectors.
// The same keys and vectors in the same order always yield the same value.
func Fingerprint(keys []string, vectors [][]float64) string {
	h := sha256.New()
	var buf [8]byte
	for i, key := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(key)))
		h.Write(buf[:])
		h.Write([]byte(key))
		if i < len(vectors) {
			binary.LittleEndian.PutUint64(buf[:], uint64(len(vectors[i])))
			h.Write(buf[:])
			for _, v := range vectors[i] {
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
				h.Write(buf[:])
			}
		}
	}
	return fingerprintPrefix + hex.EncodeToString(h.Sum(nil))
}

// CombineFingerprints hashes several fingerprints into one, order-sensitively.
func CombineFingerprints(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fingerprintPrefix + hex.EncodeToString(h.Sum(nil))
}
