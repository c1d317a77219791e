// Package cluster implements the structural diagnostics pipeline: a deterministic k-means,
// the silhouette score, the silhouette sweep over candidate cluster counts and best-k policies.
package cluster

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hyperjump/semspace/internal/models"
)

// KMeans configures a seeded, restartable Lloyd's k-means with k-means++ initialisation.
// Two fits with the same settings on the same matrix produce identical results.
type KMeans struct {
	K             int
	Restarts      int
	MaxIterations int
	Tolerance     float64 // relative to the mean per-feature variance, as in scikit-learn
	Seed          int64
}

// Fit is one fitted clustering.
type Fit struct {
	Labels     []int
	Centers    [][]float64
	Inertia    float64
	Iterations int
}

// Fit runs Restarts independent fits and keeps the one with the lowest inertia.
func (km KMeans) Fit(ctx context.Context, x [][]float64) (*Fit, error) {
	n := len(x)
	if km.K < 1 {
		return nil, fmt.Errorf("k must be positive, got %d", km.K)
	}
	if n < km.K {
		return nil, fmt.Errorf("%d samples for %d clusters: %w", n, km.K, models.ErrInsufficientSamples)
	}
	if err := checkRows(x); err != nil {
		return nil, err
	}
	restarts := km.Restarts
	if restarts < 1 {
		restarts = 1
	}
	maxIter := km.MaxIterations
	if maxIter < 1 {
		maxIter = 300
	}
	tol := km.Tolerance * meanVariance(x)
	rng := rand.New(rand.NewPCG(uint64(km.Seed), uint64(km.K)))

	var best *Fit
	for r := 0; r < restarts; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fit := lloyd(x, initPlusPlus(x, km.K, rng), maxIter, tol)
		if best == nil || fit.Inertia < best.Inertia {
			best = fit
		}
	}
	return best, nil
}

// initPlusPlus picks the first center uniformly and each further center with probability
// proportional to its squared distance from the nearest chosen center.
func initPlusPlus(x [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(x)
	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), x[rng.IntN(n)]...))
	closest := make([]float64, n)
	for i := range x {
		closest[i] = sqDist(x[i], centers[0])
	}
	for len(centers) < k {
		var total float64
		for _, d := range closest {
			total += d
		}
		next := -1
		if total == 0 {
			next = rng.IntN(n)
		} else {
			target := rng.Float64() * total
			var acc float64
			last := 0
			for i, d := range closest {
				if d == 0 {
					continue
				}
				last = i
				acc += d
				if acc >= target {
					next = i
					break
				}
			}
			if next < 0 {
				next = last
			}
		}
		c := append([]float64(nil), x[next]...)
		centers = append(centers, c)
		for i := range x {
			if d := sqDist(x[i], c); d < closest[i] {
				closest[i] = d
			}
		}
	}
	return centers
}

func lloyd(x [][]float64, centers [][]float64, maxIter int, tol float64) *Fit {
	n, k, dim := len(x), len(centers), len(x[0])
	labels := make([]int, n)
	dists := make([]float64, n)
	iter := 0
	for iter < maxIter {
		iter++
		assign(x, centers, labels, dists)

		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		counts := make([]int, k)
		for i, row := range x {
			c := labels[i]
			counts[c]++
			for j, v := range row {
				sums[c][j] += v
			}
		}
		reseedEmpty(x, counts, sums, labels, dists)

		var shift float64
		for c := range centers {
			for j := range sums[c] {
				sums[c][j] /= float64(counts[c])
			}
			shift += sqDist(centers[c], sums[c])
			centers[c] = sums[c]
		}
		if shift <= tol {
			break
		}
	}
	inertia := assign(x, centers, labels, dists)
	return &Fit{Labels: labels, Centers: centers, Inertia: inertia, Iterations: iter}
}

// reseedEmpty moves the point farthest from its center into each empty cluster.
func reseedEmpty(x [][]float64, counts []int, sums [][]float64, labels []int, dists []float64) {
	for c := range counts {
		if counts[c] > 0 {
			continue
		}
		far, farDist := -1, -1.0
		for i, d := range dists {
			if counts[labels[i]] > 1 && d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			continue
		}
		old := labels[far]
		counts[old]--
		for j, v := range x[far] {
			sums[old][j] -= v
		}
		labels[far] = c
		dists[far] = 0
		counts[c] = 1
		copy(sums[c], x[far])
	}
}

// assign labels every row with its nearest center and returns the total squared distance.
func assign(x [][]float64, centers [][]float64, labels []int, dists []float64) float64 {
	var inertia float64
	for i, row := range x {
		best, bestDist := 0, math.Inf(1)
		for c, center := range centers {
			if d := sqDist(row, center); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
		dists[i] = bestDist
		inertia += bestDist
	}
	return inertia
}

// sqDist is the squared Euclidean distance; rows must have equal width.
func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func meanVariance(x [][]float64) float64 {
	n, dim := len(x), len(x[0])
	m := mat.NewDense(n, dim, nil)
	for i, row := range x {
		m.SetRow(i, row)
	}
	col := make([]float64, n)
	var total float64
	for j := 0; j < dim; j++ {
		mat.Col(col, j, m)
		total += stat.PopVariance(col, nil)
	}
	return total / float64(dim)
}

func checkRows(x [][]float64) error {
	if len(x) == 0 {
		return fmt.Errorf("empty matrix: %w", models.ErrInsufficientSamples)
	}
	dim := len(x[0])
	if dim == 0 {
		return fmt.Errorf("zero-width matrix: %w", models.ErrDimensionMismatch)
	}
	for i, row := range x {
		if len(row) != dim {
			return fmt.Errorf("row %d has %d columns, expected %d: %w", i, len(row), dim, models.ErrDimensionMismatch)
		}
	}
	return nil
}
