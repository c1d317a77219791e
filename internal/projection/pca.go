// Package projection maps normalised embeddings and their cluster centers into one shared
// 2-D frame with principal component analysis.
package projection

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hyperjump/semspace/internal/models"
)

// PCA is a fitted two-component projection.
type PCA struct {
	Mean       []float64
	Components *mat.Dense // dim x 2
}

// Fit centers x on its column means and keeps the top two right singular vectors.
// Each component is sign-fixed so its largest-magnitude loading is positive.
// When x has rank below two the missing component is zero.
func Fit(x [][]float64) (*PCA, error) {
	n := len(x)
	if n == 0 {
		return nil, fmt.Errorf("projection of empty matrix: %w", models.ErrInsufficientSamples)
	}
	dim := len(x[0])
	if dim == 0 {
		return nil, fmt.Errorf("zero-width matrix: %w", models.ErrDimensionMismatch)
	}
	X := mat.NewDense(n, dim, nil)
	for i, row := range x {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w", i, len(row), dim, models.ErrDimensionMismatch)
		}
		X.SetRow(i, row)
	}

	means := make([]float64, dim)
	col := make([]float64, n)
	for j := range means {
		mat.Col(col, j, X)
		means[j] = stat.Mean(col, nil)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			X.Set(i, j, X.At(i, j)-means[j])
		}
	}

	pc := mat.NewDense(dim, 2, nil)
	if n > 1 {
		var svd mat.SVD
		if !svd.Factorize(X, mat.SVDThin) {
			return nil, errors.New("singular value decomposition did not converge")
		}
		var v mat.Dense
		svd.VTo(&v)
		values := svd.Values(nil)
		_, r := v.Dims()
		for c := 0; c < 2 && c < r; c++ {
			if values[c] <= 1e-12 {
				break
			}
			for j := 0; j < dim; j++ {
				pc.Set(j, c, v.At(j, c))
			}
		}
		fixSigns(pc)
	}
	return &PCA{Mean: means, Components: pc}, nil
}

func fixSigns(pc *mat.Dense) {
	dim, cols := pc.Dims()
	for c := 0; c < cols; c++ {
		big := 0.0
		for j := 0; j < dim; j++ {
			if v := pc.At(j, c); math.Abs(v) > math.Abs(big) {
				big = v
			}
		}
		if big < 0 {
			for j := 0; j < dim; j++ {
				pc.Set(j, c, -pc.At(j, c))
			}
		}
	}
}

// Transform applies the fitted mean and components to rows.
func (p *PCA) Transform(rows [][]float64) ([][2]float64, error) {
	dim := len(p.Mean)
	out := make([][2]float64, len(rows))
	centered := make([]float64, dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w", i, len(row), dim, models.ErrDimensionMismatch)
		}
		for j, v := range row {
			centered[j] = v - p.Mean[j]
		}
		r := mat.NewVecDense(dim, centered)
		out[i] = [2]float64{
			mat.Dot(r, p.Components.ColView(0)),
			mat.Dot(r, p.Components.ColView(1)),
		}
	}
	return out, nil
}

// Project fits on normalized and places both the samples and the centers with that fit,
// so centers are comparable to the points around them.
func Project(normalized, centers [][]float64) (*models.Projection2D, error) {
	p, err := Fit(normalized)
	if err != nil {
		return nil, err
	}
	points, err := p.Transform(normalized)
	if err != nil {
		return nil, err
	}
	centers2D, err := p.Transform(centers)
	if err != nil {
		return nil, fmt.Errorf("centers: %w", err)
	}
	return &models.Projection2D{Points: points, Centers2D: centers2D}, nil
}
