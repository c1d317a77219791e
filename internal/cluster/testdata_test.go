package cluster

import "math/rand/v2"

// blobs returns n points per center, jittered by spread, in center order.
func blobs(centers [][]float64, n int, spread float64, seed uint64) [][]float64 {
	rng := rand.New(rand.NewPCG(seed, 7))
	var out [][]float64
	for _, c := range centers {
		for i := 0; i < n; i++ {
			p := make([]float64, len(c))
			for j, v := range c {
				p[j] = v + (rng.Float64()*2-1)*spread
			}
			out = append(out, p)
		}
	}
	return out
}

func threeBlobs() [][]float64 {
	return blobs([][]float64{
		{10, 0, 0},
		{0, 10, 0},
		{0, 0, 10},
	}, 12, 0.5, 1)
}
