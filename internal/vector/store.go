package vector

import (
	"fmt"
	"strings"

	"github.com/hyperjump/semspace/internal/models"
)

// Store is an immutable snapshot of keyed vectors. It is safe for concurrent readers.
type Store struct {
	dimensions  int
	keys        []string
	vectors     [][]float64
	positions   map[string]int
	folded      map[string]int // lowercase key -> first position
	fingerprint string
}

// Load builds a store from records, preserving input order. Vectors are copied.
// Every record must have a non-empty key unique within the store and a vector of the
// same non-zero length as the first record.
func Load(records []models.EmbeddingRecord) (*Store, error) {
	s := &Store{
		keys:      make([]string, 0, len(records)),
		vectors:   make([][]float64, 0, len(records)),
		positions: make(map[string]int, len(records)),
		folded:    make(map[string]int, len(records)),
	}
	for i, rec := range records {
		if rec.Key == "" {
			return nil, fmt.Errorf("record %d: empty key: %w", i, models.ErrMalformedRecord)
		}
		if len(rec.Vector) == 0 {
			return nil, fmt.Errorf("record %d (%s): empty vector: %w", i, rec.Key, models.ErrMalformedRecord)
		}
		if i == 0 {
			s.dimensions = len(rec.Vector)
		} else if len(rec.Vector) != s.dimensions {
			return nil, fmt.Errorf("record %d (%s): got %d dimensions, expected %d: %w",
				i, rec.Key, len(rec.Vector), s.dimensions, models.ErrDimensionMismatch)
		}
		if _, dup := s.positions[rec.Key]; dup {
			return nil, fmt.Errorf("record %d: duplicate key %q: %w", i, rec.Key, models.ErrMalformedRecord)
		}
		vec := make([]float64, len(rec.Vector))
		copy(vec, rec.Vector)
		s.positions[rec.Key] = len(s.keys)
		lower := strings.ToLower(rec.Key)
		if _, ok := s.folded[lower]; !ok {
			s.folded[lower] = len(s.keys)
		}
		s.keys = append(s.keys, rec.Key)
		s.vectors = append(s.vectors, vec)
	}
	s.fingerprint = Fingerprint(s.keys, s.vectors)
	return s, nil
}

// Get returns a copy of the vector stored under key.
func (s *Store) Get(key string) ([]float64, error) {
	i, ok := s.positions[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, models.ErrNotFound)
	}
	return append([]float64(nil), s.vectors[i]...), nil
}

// Lookup finds key case-insensitively and returns the stored key and its position.
func (s *Store) Lookup(key string) (string, int, bool) {
	if i, ok := s.positions[key]; ok {
		return s.keys[i], i, true
	}
	i, ok := s.folded[strings.ToLower(key)]
	if !ok {
		return "", -1, false
	}
	return s.keys[i], i, true
}

// AsMatrix returns a deep copy of all vectors stacked in store order.
func (s *Store) AsMatrix() [][]float64 {
	out := make([][]float64, len(s.vectors))
	for i, v := range s.vectors {
		out[i] = append([]float64(nil), v...)
	}
	return out
}

// Len returns the number of stored vectors.
func (s *Store) Len() int { return len(s.keys) }

// Dimensions returns the shared vector length, or 0 for an empty store.
func (s *Store) Dimensions() int { return s.dimensions }

// Keys returns a copy of the keys in store order.
func (s *Store) Keys() []string { return append([]string(nil), s.keys...) }

// KeyAt returns the key at position i.
func (s *Store) KeyAt(i int) string { return s.keys[i] }

// VectorAt returns the stored vector at position i without copying.
func (s *Store) VectorAt(i int) []float64 { return s.vectors[i] }

// Position returns the store position of key.
func (s *Store) Position(key string) (int, bool) {
	i, ok := s.positions[key]
	return i, ok
}

// Fingerprint identifies the snapshot contents.
func (s *Store) Fingerprint() string { return s.fingerprint }

var _ Index = (*Store)(nil)
