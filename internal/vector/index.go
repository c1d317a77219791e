// Package vector holds immutable embedding snapshots and the similarity math over them.
package vector

// Index is read-only access to an embedding snapshot in store order.
type Index interface {
	Len() int
	Dimensions() int
	Keys() []string
	// KeyAt and VectorAt expose stored data without copying; callers must not modify it.
	KeyAt(i int) string
	VectorAt(i int) []float64
	Position(key string) (int, bool)
	Fingerprint() string
}
