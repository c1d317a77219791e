package cluster

import (
	"fmt"
	"math"

	"github.com/hyperjump/semspace/internal/models"
)

// PolicyMode selects how the final cluster count is chosen from a silhouette sweep.
type PolicyMode string

const (
	// PolicyArgmax picks the k with the highest silhouette score; the first maximum wins.
	PolicyArgmax PolicyMode = "argmax"
	// PolicyFixed ignores the scores and always returns FixedK.
	PolicyFixed PolicyMode = "fixed"
)

// Policy decides the best k from sweep scores.
type Policy struct {
	Mode   PolicyMode
	FixedK int
}

// ParsePolicy builds a policy from its config spelling.
func ParsePolicy(mode string, fixedK int) (Policy, error) {
	switch PolicyMode(mode) {
	case PolicyArgmax, "":
		return Policy{Mode: PolicyArgmax}, nil
	case PolicyFixed:
		if fixedK < 1 {
			return Policy{}, fmt.Errorf("fixed best-k policy needs a positive k, got %d", fixedK)
		}
		return Policy{Mode: PolicyFixed, FixedK: fixedK}, nil
	default:
		return Policy{}, fmt.Errorf("unknown best-k policy %q", mode)
	}
}

// SelectBestK returns the chosen cluster count. scores[i] belongs to k = kMin+i.
func (p Policy) SelectBestK(scores []float64, kMin int) (int, error) {
	if p.Mode == PolicyFixed {
		return p.FixedK, nil
	}
	best, bestScore := -1, math.Inf(-1)
	for i, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("no usable silhouette scores: %w", models.ErrInsufficientSamples)
	}
	return kMin + best, nil
}
