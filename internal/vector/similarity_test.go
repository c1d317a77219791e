package vector

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/hyperjump/semspace/internal/models"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0, 0}, []float64{1, 0, 0}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 2}, []float64{-1, -2}, -1},
		{"diagonal", []float64{1, 0, 0, 0}, []float64{1, 1, 0, 0}, 1 / math.Sqrt2},
		{"zero a", []float64{0, 0}, []float64{1, 1}, 0},
		{"zero b", []float64{1, 1}, []float64{0, 0}, 0},
		{"length mismatch", []float64{1}, []float64{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
			if got < -1 || got > 1 {
				t.Errorf("Cosine() = %v out of range", got)
			}
		})
	}
}

func TestCosine_RandomVectorsInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for _, scale := range []float64{1e-3, 1, 1e3, 1e6} {
		for i := 0; i < 500; i++ {
			dim := 1 + rng.IntN(64)
			a := make([]float64, dim)
			b := make([]float64, dim)
			for j := range a {
				a[j] = (rng.Float64()*2 - 1) * scale
				b[j] = (rng.Float64()*2 - 1) * scale
			}
			if got := Cosine(a, b); got < -1 || got > 1 || math.IsNaN(got) {
				t.Fatalf("scale %g: Cosine(a, b) = %v out of range", scale, got)
			}
			self := Cosine(a, a)
			if self < -1 || self > 1 {
				t.Fatalf("scale %g: Cosine(a, a) = %v out of range", scale, self)
			}
			// Epsilon only matters for tiny norms
			if n := L2Norm(a); n*n > 1 && math.Abs(self-1) > 1e-6 {
				t.Errorf("scale %g: Cosine(a, a) = %v, want 1", scale, self)
			}
			neg := make([]float64, dim)
			for j, v := range a {
				neg[j] = -v
			}
			if got := Cosine(a, neg); got < -1 || got > 1 {
				t.Fatalf("scale %g: Cosine(a, -a) = %v out of range", scale, got)
			}
		}
	}
}

func TestCosine_ZeroIsExact(t *testing.T) {
	if Cosine([]float64{0, 0, 0}, []float64{3, 4, 5}) != 0 {
		t.Error("zero norm must give exactly 0")
	}
}

func TestMean(t *testing.T) {
	got, err := Mean([][]float64{{1, 0, 0, 0}, {0, 1, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.5, 0.5, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Mean = %v, want %v", got, want)
		}
	}
	if _, err := Mean(nil); !errors.Is(err, models.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := Mean([][]float64{{1}, {1, 2}}); !errors.Is(err, models.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
