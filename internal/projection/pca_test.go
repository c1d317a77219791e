package projection

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/hyperjump/semspace/internal/models"
)

func TestProject_CountsAndFrame(t *testing.T) {
	x := [][]float64{
		{1, 0, 0}, {0.9, 0.1, 0}, {0.95, 0.05, 0.02},
		{0, 1, 0}, {0.1, 0.9, 0}, {0.02, 0.95, 0.05},
		{0, 0, 1}, {0, 0.1, 0.9}, {0.05, 0.02, 0.95},
	}
	centers := [][]float64{
		{0.95, 0.05, 0.007},
		{0.04, 0.95, 0.017},
		{0.017, 0.04, 0.95},
	}

	proj, err := Project(x, centers)
	if err != nil {
		t.Fatal(err)
	}
	if len(proj.Points) != 9 || len(proj.Centers2D) != 3 {
		t.Fatalf("got %d points, %d centers", len(proj.Points), len(proj.Centers2D))
	}

	// each center lands nearer its own group's points than any other group's
	for c, center := range proj.Centers2D {
		own := meanDist(center, proj.Points[c*3:c*3+3])
		for o := 0; o < 3; o++ {
			if o == c {
				continue
			}
			if other := meanDist(center, proj.Points[o*3:o*3+3]); own >= other {
				t.Errorf("center %d: own group %.4f, group %d %.4f", c, own, o, other)
			}
		}
	}
}

func meanDist(p [2]float64, pts [][2]float64) float64 {
	var s float64
	for _, q := range pts {
		s += math.Hypot(p[0]-q[0], p[1]-q[1])
	}
	return s / float64(len(pts))
}

func TestFit_CentersData(t *testing.T) {
	x := [][]float64{{1, 2}, {3, 4}, {5, 6}, {7, 9}}
	p, err := Fit(x)
	if err != nil {
		t.Fatal(err)
	}
	pts, err := p.Transform(x)
	if err != nil {
		t.Fatal(err)
	}

	var sx, sy float64
	for _, q := range pts {
		sx += q[0]
		sy += q[1]
	}
	if math.Abs(sx) > 1e-9 || math.Abs(sy) > 1e-9 {
		t.Errorf("projected mean = (%g, %g), want origin", sx, sy)
	}
}

func TestFit_FirstComponentFollowsVariance(t *testing.T) {
	x := [][]float64{{-3, 0.1}, {-1, -0.1}, {1, 0.1}, {3, -0.1}}
	p, err := Fit(x)
	if err != nil {
		t.Fatal(err)
	}
	// largest loading is made positive
	if got := p.Components.At(0, 0); math.Abs(got-1) > 1e-6 {
		t.Errorf("first loading = %g, want 1", got)
	}
}

func TestFit_Deterministic(t *testing.T) {
	x := [][]float64{{1, 2, 0}, {2, 1, 1}, {0, 3, 2}, {4, 0, 1}}
	a, err := Project(x, x[:2])
	if err != nil {
		t.Fatal(err)
	}
	b, err := Project(x, x[:2])
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("projections differ:\n%v\n%v", a, b)
	}
}

func TestFit_Degenerate(t *testing.T) {
	// one sample: everything maps to the origin
	proj, err := Project([][]float64{{1, 2, 3}}, [][]float64{{1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	if proj.Points[0] != [2]float64{0, 0} {
		t.Errorf("single point = %v, want origin", proj.Points[0])
	}

	// rank one: the second coordinate is zero
	proj, err = Project([][]float64{{1, 1}, {2, 2}, {3, 3}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range proj.Points {
		if math.Abs(q[1]) > 1e-9 {
			t.Errorf("second coordinate = %g, want 0", q[1])
		}
	}
	if len(proj.Centers2D) != 0 {
		t.Errorf("centers = %v, want none", proj.Centers2D)
	}
}

func TestProject_Errors(t *testing.T) {
	tests := []struct {
		name    string
		x       [][]float64
		centers [][]float64
		want    error
	}{
		{"no samples", nil, nil, models.ErrInsufficientSamples},
		{"ragged rows", [][]float64{{1, 2}, {3}}, nil, models.ErrDimensionMismatch},
		{"center width", [][]float64{{1, 2}, {3, 4}}, [][]float64{{1, 2, 3}}, models.ErrDimensionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Project(tt.x, tt.centers); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
