package cluster

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/hyperjump/semspace/internal/models"
)

func TestKMeans_SeparatesBlobs(t *testing.T) {
	x := threeBlobs()
	fit, err := KMeans{K: 3, Restarts: 5, MaxIterations: 100, Tolerance: 1e-4, Seed: 42}.Fit(context.Background(), x)
	if err != nil {
		t.Fatal(err)
	}
	if len(fit.Labels) != len(x) || len(fit.Centers) != 3 {
		t.Fatalf("got %d labels, %d centers", len(fit.Labels), len(fit.Centers))
	}

	// every blob maps to exactly one label and blobs do not share labels
	seen := map[int]bool{}
	for b := 0; b < 3; b++ {
		first := fit.Labels[b*12]
		for i := b * 12; i < (b+1)*12; i++ {
			if fit.Labels[i] != first {
				t.Errorf("blob %d split across clusters %d and %d", b, first, fit.Labels[i])
			}
		}
		if seen[first] {
			t.Errorf("label %d reused", first)
		}
		seen[first] = true
	}
}

func TestKMeans_Deterministic(t *testing.T) {
	x := blobs([][]float64{{0, 0}, {3, 3}, {6, 0}, {0, 6}}, 15, 1.5, 9)
	km := KMeans{K: 4, Restarts: 10, MaxIterations: 300, Tolerance: 1e-4, Seed: 42}
	a, err := km.Fit(context.Background(), x)
	if err != nil {
		t.Fatal(err)
	}
	b, err := km.Fit(context.Background(), x)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Labels, b.Labels) || !reflect.DeepEqual(a.Centers, b.Centers) || a.Inertia != b.Inertia {
		t.Errorf("fits differ: inertia %g vs %g", a.Inertia, b.Inertia)
	}
}

func TestKMeans_LabelsInRangeAndNoEmptyClusters(t *testing.T) {
	x := blobs([][]float64{{0, 0}, {1, 1}}, 10, 0.9, 3)
	for k := 1; k <= 8; k++ {
		fit, err := KMeans{K: k, Restarts: 3, Seed: 42}.Fit(context.Background(), x)
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		counts := make([]int, k)
		for _, l := range fit.Labels {
			if l < 0 || l >= k {
				t.Fatalf("k=%d: label %d out of range", k, l)
			}
			counts[l]++
		}
		for c, n := range counts {
			if n == 0 {
				t.Errorf("k=%d cluster %d empty", k, c)
			}
		}
	}
}

func TestKMeans_Errors(t *testing.T) {
	tests := []struct {
		name string
		km   KMeans
		x    [][]float64
		want error
	}{
		{"more clusters than samples", KMeans{K: 5, Seed: 1}, [][]float64{{1}, {2}, {3}}, models.ErrInsufficientSamples},
		{"ragged rows", KMeans{K: 2, Seed: 1}, [][]float64{{1, 2}, {3}}, models.ErrDimensionMismatch},
		{"zero k", KMeans{K: 0}, [][]float64{{1}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.km.Fit(context.Background(), tt.x)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestKMeans_IdenticalPoints(t *testing.T) {
	x := [][]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	fit, err := KMeans{K: 2, Restarts: 2, Seed: 42}.Fit(context.Background(), x)
	if err != nil {
		t.Fatal(err)
	}
	if len(fit.Labels) != 4 {
		t.Errorf("labels = %d, want 4", len(fit.Labels))
	}
	if math.Abs(fit.Inertia) > 1e-12 {
		t.Errorf("inertia = %g, want 0", fit.Inertia)
	}
}

func TestSqDist(t *testing.T) {
	tests := []struct {
		a, b []float64
		want float64
	}{
		{[]float64{0, 0}, []float64{3, 4}, 25},
		{[]float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{[]float64{-1}, []float64{2}, 9},
	}
	for _, tt := range tests {
		if got := sqDist(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("sqDist(%v, %v) = %g, want %g", tt.a, tt.b, got, tt.want)
		}
	}
}
