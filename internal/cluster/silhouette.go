package cluster

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/hyperjump/semspace/internal/models"
)

// Silhouette returns the mean silhouette coefficient of labels over x using Euclidean
// distance. Samples in singleton clusters score 0. When the labelling has fewer than two
// distinct clusters the score is 0.
func Silhouette(x [][]float64, labels []int) (float64, error) {
	n := len(x)
	if n != len(labels) {
		return 0, fmt.Errorf("%d samples but %d labels: %w", n, len(labels), models.ErrDimensionMismatch)
	}
	if n < 2 {
		return 0, fmt.Errorf("silhouette needs at least 2 samples, got %d: %w", n, models.ErrInsufficientSamples)
	}
	if err := checkRows(x); err != nil {
		return 0, err
	}
	k := 0
	for _, l := range labels {
		if l < 0 {
			return 0, fmt.Errorf("negative label %d", l)
		}
		if l+1 > k {
			k = l + 1
		}
	}
	sizes := make([]int, k)
	for _, l := range labels {
		sizes[l]++
	}
	distinct := 0
	for _, s := range sizes {
		if s > 0 {
			distinct++
		}
	}
	if distinct < 2 {
		return 0, nil
	}

	sums := make([]float64, k)
	var total float64
	for i := range x {
		for c := range sums {
			sums[c] = 0
		}
		for j := range x {
			if i == j {
				continue
			}
			sums[labels[j]] += floats.Distance(x[i], x[j], 2)
		}
		own := labels[i]
		if sizes[own] < 2 {
			continue
		}
		a := sums[own] / float64(sizes[own]-1)
		b := math.Inf(1)
		for c, sz := range sizes {
			if c == own || sz == 0 {
				continue
			}
			if m := sums[c] / float64(sz); m < b {
				b = m
			}
		}
		if denom := math.Max(a, b); denom > 0 {
			total += (b - a) / denom
		}
	}
	return total / float64(n), nil
}
