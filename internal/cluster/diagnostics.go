package cluster

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/semspace/internal/config"
	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/pkg/utils"
)

// Diagnostics runs the silhouette sweep and the final clustering with one seed/restart policy.
type Diagnostics struct {
	KMin          int
	KMax          int // exclusive
	Seed          int64
	Restarts      int
	MaxIterations int
	Tolerance     float64
	Workers       int
	Policy        Policy
	logger        *zap.Logger
}

// NewDiagnostics builds diagnostics from config. logger may be nil.
func NewDiagnostics(cfg *config.ClusterConfig, logger *zap.Logger) (*Diagnostics, error) {
	policy, err := ParsePolicy(cfg.BestKPolicy, cfg.FixedK)
	if err != nil {
		return nil, err
	}
	return &Diagnostics{
		KMin:          cfg.KMin,
		KMax:          cfg.KMax,
		Seed:          cfg.Seed,
		Restarts:      cfg.Restarts,
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
		Workers:       cfg.Workers,
		Policy:        policy,
		logger:        utils.OrNop(logger),
	}, nil
}

func (d *Diagnostics) kmeans(k int) KMeans {
	return KMeans{K: k, Restarts: d.Restarts, MaxIterations: d.MaxIterations, Tolerance: d.Tolerance, Seed: d.Seed}
}

// SweepSilhouette fits k-means on the raw matrix for every k in [KMin, KMax) and returns
// the silhouette score of each fit in k order. It fails with ErrInsufficientSamples when
// any requested k is not below the sample count.
func (d *Diagnostics) SweepSilhouette(ctx context.Context, x [][]float64) ([]float64, error) {
	if d.KMin < 2 || d.KMax <= d.KMin {
		return nil, fmt.Errorf("invalid k range [%d, %d)", d.KMin, d.KMax)
	}
	if err := checkRows(x); err != nil {
		return nil, err
	}
	if maxK := d.KMax - 1; len(x) <= maxK {
		return nil, fmt.Errorf("sweep up to k=%d needs more than %d samples, got %d: %w",
			maxK, maxK, len(x), models.ErrInsufficientSamples)
	}

	scores := make([]float64, d.KMax-d.KMin)
	g, gctx := errgroup.WithContext(ctx)
	if d.Workers > 0 {
		g.SetLimit(d.Workers)
	}
	for k := d.KMin; k < d.KMax; k++ {
		g.Go(func() error {
			start := time.Now()
			fit, err := d.kmeans(k).Fit(gctx, x)
			if err != nil {
				return fmt.Errorf("fit k=%d: %w", k, err)
			}
			score, err := Silhouette(x, fit.Labels)
			if err != nil {
				return fmt.Errorf("silhouette k=%d: %w", k, err)
			}
			scores[k-d.KMin] = score
			d.logger.Debug("silhouette computed",
				zap.Int("k", k),
				zap.Float64("score", score),
				zap.Float64("inertia", fit.Inertia),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// SelectBestK applies the configured policy to sweep scores.
func (d *Diagnostics) SelectBestK(scores []float64) (int, error) {
	return d.Policy.SelectBestK(scores, d.KMin)
}

// ClusterFinal L2-normalises the rows of x and fits k clusters. Centers are returned in the
// normalised space; counts list each occurring cluster id in ascending order.
func (d *Diagnostics) ClusterFinal(ctx context.Context, x [][]float64, k int) (*models.ClusterResult, [][]float64, error) {
	if err := checkRows(x); err != nil {
		return nil, nil, err
	}
	if len(x) < k {
		return nil, nil, fmt.Errorf("%d samples for %d clusters: %w", len(x), k, models.ErrInsufficientSamples)
	}
	normalized := utils.NormalizeRows(x)
	fit, err := d.kmeans(k).Fit(ctx, normalized)
	if err != nil {
		return nil, nil, err
	}
	return &models.ClusterResult{
		K:       k,
		Labels:  fit.Labels,
		Centers: fit.Centers,
		Counts:  CountLabels(fit.Labels),
		Inertia: fit.Inertia,
	}, normalized, nil
}

// CountLabels returns the population of each distinct label, ascending by label.
func CountLabels(labels []int) []models.ClusterCount {
	counts := make(map[int]int)
	for _, l := range labels {
		counts[l]++
	}
	out := make([]models.ClusterCount, 0, len(counts))
	for id, c := range counts {
		out = append(out, models.ClusterCount{ClusterID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClusterID < out[j].ClusterID })
	return out
}
