// Package task runs the diagnostics pipeline as an asynchronous, single-shot unit of work.
package task

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/semspace/internal/cluster"
	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/projection"
	"github.com/hyperjump/semspace/internal/topic"
	"github.com/hyperjump/semspace/pkg/utils"
)

// Snapshot is the read-only input of one computation. Matrix rows align with Keys.
type Snapshot struct {
	Generation  uint64
	Fingerprint string
	Keys        []string
	Matrix      [][]float64
	Topics      []models.TopicRecord
}

// State is the lifecycle position of a task.
type State string

const (
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Task is a submitted computation. Its result is delivered exactly once.
type Task struct {
	ID         string
	Generation uint64
	StartedAt  time.Time

	done   chan struct{}
	bundle *models.DiagnosticsBundle
	err    error
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Result blocks until the task finishes and returns either the full bundle or the error.
func (t *Task) Result() (*models.DiagnosticsBundle, error) {
	<-t.done
	return t.bundle, t.err
}

// State reports the current lifecycle state without blocking.
func (t *Task) State() State {
	select {
	case <-t.done:
		if t.err != nil {
			return StateFailed
		}
		return StateSucceeded
	default:
		return StateRunning
	}
}

// Runner starts tasks in their own goroutines.
type Runner struct {
	diagnostics *cluster.Diagnostics
	logger      *zap.Logger
	wg          sync.WaitGroup
}

// NewRunner creates a runner. logger may be nil.
func NewRunner(diagnostics *cluster.Diagnostics, logger *zap.Logger) *Runner {
	return &Runner{diagnostics: diagnostics, logger: utils.OrNop(logger)}
}

// Submit starts the pipeline over snap and returns immediately. Cancelling ctx does not
// stop the task; once submitted it runs to completion or failure.
func (r *Runner) Submit(ctx context.Context, snap *Snapshot) *Task {
	t := &Task{
		ID:         uuid.NewString(),
		Generation: snap.Generation,
		StartedAt:  time.Now(),
		done:       make(chan struct{}),
	}
	ctx = context.WithoutCancel(ctx)
	logger := r.logger.With(zap.String("task_id", t.ID), zap.Uint64("generation", t.Generation))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(t.done)
		defer func() {
			if p := recover(); p != nil {
				logger.Error("diagnostics task panicked",
					zap.Any("panic", p),
					zap.ByteString("stack", debug.Stack()),
				)
				t.bundle, t.err = nil, fmt.Errorf("diagnostics task panicked: %v", p)
			}
		}()

		bundle, err := Run(ctx, r.diagnostics, snap, logger)
		if err != nil {
			logger.Warn("diagnostics task failed", zap.Error(err), zap.String("kind", models.Kind(err)))
			t.err = err
			return
		}
		bundle.TaskID = t.ID
		bundle.StartedAt = t.StartedAt
		t.bundle = bundle
		logger.Info("diagnostics task finished",
			zap.Int("best_k", bundle.BestK),
			zap.Duration("elapsed", bundle.FinishedAt.Sub(t.StartedAt)),
		)
	}()
	return t
}

// Wait blocks until every submitted task has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Run executes sweep, best-k selection, final clustering, projection and topic ordering in
// that order and returns the complete bundle. Nothing partial is returned on failure.
func Run(ctx context.Context, d *cluster.Diagnostics, snap *Snapshot, logger *zap.Logger) (*models.DiagnosticsBundle, error) {
	logger = utils.OrNop(logger)
	started := time.Now()

	scores, err := d.SweepSilhouette(ctx, snap.Matrix)
	if err != nil {
		return nil, fmt.Errorf("silhouette sweep: %w", err)
	}
	bestK, err := d.SelectBestK(scores)
	if err != nil {
		return nil, fmt.Errorf("select k: %w", err)
	}
	logger.Debug("best k selected", zap.Int("k", bestK), zap.String("policy", string(d.Policy.Mode)))

	result, normalized, err := d.ClusterFinal(ctx, snap.Matrix, bestK)
	if err != nil {
		return nil, fmt.Errorf("final clustering: %w", err)
	}
	result.SilhouetteScores = scores

	proj, err := projection.Project(normalized, result.Centers)
	if err != nil {
		return nil, fmt.Errorf("projection: %w", err)
	}

	return &models.DiagnosticsBundle{
		Generation:       snap.Generation,
		Fingerprint:      snap.Fingerprint,
		Keys:             append([]string(nil), snap.Keys...),
		SilhouetteScores: scores,
		KMin:             d.KMin,
		BestK:            bestK,
		Cluster:          result,
		Projection:       proj,
		TopicOrder:       topic.Ordered(snap.Topics),
		StartedAt:        started,
		FinishedAt:       time.Now(),
	}, nil
}
