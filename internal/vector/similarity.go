package vector

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/hyperjump/semspace/internal/models"
)

// Epsilon is added to the cosine denominator.
const Epsilon = 1e-9

// Cosine returns (a·b)/(‖a‖·‖b‖ + Epsilon). It is exactly 0 when either vector has
// zero norm, and 0 for vectors of different or zero length. Rounding is clamped to [-1, 1].
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return max(-1, min(1, floats.Dot(a, b)/(na*nb+Epsilon)))
}

// L2Norm returns the Euclidean norm of x.
func L2Norm(x []float64) float64 {
	return floats.Norm(x, 2)
}

// Mean returns the element-wise mean of vectors, which must share one length.
func Mean(vectors [][]float64) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("mean of no vectors: %w", models.ErrEmptyQuery)
	}
	dim := len(vectors[0])
	out := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("mean over vectors of length %d and %d: %w", dim, len(v), models.ErrDimensionMismatch)
		}
		floats.Add(out, v)
	}
	floats.Scale(1/float64(len(vectors)), out)
	return out, nil
}
