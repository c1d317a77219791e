package utils

import "gonum.org/v1/gonum/floats"

// NormalizeL2 returns a unit-L2 copy of x. A zero vector is returned as a zero copy.
func NormalizeL2(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	norm := floats.Norm(out, 2)
	if norm == 0 {
		return out
	}
	floats.Scale(1/norm, out)
	return out
}

// NormalizeRows applies NormalizeL2 to every row of m.
func NormalizeRows(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = NormalizeL2(row)
	}
	return out
}

// CloneMatrix deep-copies m.
func CloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
