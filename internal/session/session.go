// Package session owns the current embedding snapshot, the search engine built on it and
// the diagnostics task lifecycle, including discarding results that arrive for a stale
// generation.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/semspace/internal/cluster"
	"github.com/hyperjump/semspace/internal/config"
	"github.com/hyperjump/semspace/internal/ingest"
	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/search"
	"github.com/hyperjump/semspace/internal/storage"
	"github.com/hyperjump/semspace/internal/task"
	"github.com/hyperjump/semspace/internal/vector"
	"github.com/hyperjump/semspace/pkg/utils"
)

// ErrNoSnapshot is returned by operations that need data before anything was loaded.
var ErrNoSnapshot = errors.New("no snapshot loaded")

// Snapshot is one immutable load of the data directory.
type Snapshot struct {
	Terms       *vector.Store
	Documents   *vector.Store
	Topics      []models.TopicRecord
	Reports     []*ingest.Report
	Fingerprint string
	LoadedAt    time.Time
}

// NewSnapshot builds stores from a dataset. The dataset is copied.
func NewSnapshot(ds *models.Dataset, reports []*ingest.Report) (*Snapshot, error) {
	terms, err := vector.Load(ds.Terms)
	if err != nil {
		return nil, fmt.Errorf("term store: %w", err)
	}
	docs, err := vector.Load(ds.Documents)
	if err != nil {
		return nil, fmt.Errorf("document store: %w", err)
	}
	topics := append([]models.TopicRecord(nil), ds.Topics...)
	return &Snapshot{
		Terms:       terms,
		Documents:   docs,
		Topics:      topics,
		Reports:     reports,
		Fingerprint: vector.CombineFingerprints(terms.Fingerprint(), docs.Fingerprint(), topicFingerprint(topics)),
		LoadedAt:    time.Now(),
	}, nil
}

func topicFingerprint(topics []models.TopicRecord) string {
	ids := make([]string, len(topics))
	values := make([][]float64, len(topics))
	for i, t := range topics {
		ids[i] = t.TopicID
		values[i] = []float64{t.SingularValue}
	}
	return vector.Fingerprint(ids, values)
}

// Submission describes an accepted diagnostics request.
type Submission struct {
	TaskID     string `json:"task_id"`
	Generation uint64 `json:"generation"`
	Cached     bool   `json:"cached"`

	Task *task.Task `json:"-"`
}

// Status is a point-in-time summary for status endpoints.
type Status struct {
	Generation    uint64             `json:"generation"`
	Fingerprint   string             `json:"fingerprint"`
	Terms         int                `json:"terms"`
	Documents     int                `json:"documents"`
	Topics        int                `json:"topics"`
	Dimensions    int                `json:"dimensions"`
	Issues        int                `json:"issues"`
	LoadedAt      time.Time          `json:"loaded_at"`
	TaskID        string             `json:"task_id,omitempty"`
	TaskState     task.State         `json:"task_state,omitempty"`
	LatestTaskID  string             `json:"latest_task_id,omitempty"`
	LastError     string             `json:"last_error,omitempty"`
	CacheHits     uint64             `json:"cache_hits"`
	CacheMisses   uint64             `json:"cache_misses"`
	ClusterSource string             `json:"cluster_source"`
	BestKPolicy   cluster.PolicyMode `json:"best_k_policy"`
}

// Session is safe for concurrent use.
type Session struct {
	cfg         *config.Config
	loader      *ingest.Loader
	diagnostics *cluster.Diagnostics
	runner      *task.Runner
	cache       *search.ResultCache
	bundles     storage.BundleStore
	logger      *zap.Logger

	mu         sync.RWMutex
	snapshot   *Snapshot
	engine     *search.Engine
	generation uint64
	current    *task.Task
	latest     *models.DiagnosticsBundle
	lastErr    error

	completions sync.WaitGroup
}

// New creates an empty session. bundles and logger may be nil; without bundles completed
// diagnostics are kept in memory only.
func New(cfg *config.Config, bundles storage.BundleStore, logger *zap.Logger) (*Session, error) {
	logger = utils.OrNop(logger)
	diagnostics, err := cluster.NewDiagnostics(&cfg.Cluster, logger.Named("cluster"))
	if err != nil {
		return nil, err
	}
	return &Session{
		cfg:         cfg,
		loader:      ingest.NewLoader(cfg.Data.StrictRecords, logger.Named("ingest")),
		diagnostics: diagnostics,
		runner:      task.NewRunner(diagnostics, logger.Named("task")),
		cache:       search.NewResultCache(cfg.Search.CacheSize),
		bundles:     bundles,
		logger:      logger,
	}, nil
}

// Reload reads the data directory and installs the result as the current snapshot.
func (s *Session) Reload(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, reports, err := s.loader.LoadDataset(&s.cfg.Data)
	if err != nil {
		return nil, err
	}
	return s.Install(ds, reports)
}

// Install snapshots ds and makes it current. Any in-flight diagnostics become stale.
func (s *Session) Install(ds *models.Dataset, reports []*ingest.Report) (*Snapshot, error) {
	snap, err := NewSnapshot(ds, reports)
	if err != nil {
		return nil, err
	}
	engine := search.NewEngine(snap.Terms, snap.Documents, &s.cfg.Search, s.cache, s.logger.Named("search"))

	s.mu.Lock()
	s.snapshot = snap
	s.engine = engine
	s.generation++
	s.current = nil
	s.latest = nil
	s.lastErr = nil
	gen := s.generation
	s.mu.Unlock()

	s.logger.Info("snapshot installed",
		zap.Uint64("generation", gen),
		zap.String("fingerprint", snap.Fingerprint),
		zap.Int("terms", snap.Terms.Len()),
		zap.Int("documents", snap.Documents.Len()),
		zap.Int("topics", len(snap.Topics)),
	)
	return snap, nil
}

// Snapshot returns the current snapshot or nil.
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Engine returns the search engine over the current snapshot.
func (s *Session) Engine() (*search.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return nil, ErrNoSnapshot
	}
	return s.engine, nil
}

// Generation returns the current generation.
func (s *Session) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Submit starts diagnostics over the current snapshot and supersedes any earlier request.
// A bundle cached for the same data and settings is delivered immediately unless force is set.
func (s *Session) Submit(ctx context.Context, force bool) (*Submission, error) {
	s.mu.Lock()
	snap := s.snapshot
	if snap == nil {
		s.mu.Unlock()
		return nil, ErrNoSnapshot
	}
	s.generation++
	gen := s.generation
	s.current = nil
	s.mu.Unlock()

	key := s.cacheKey(snap)
	if !force {
		if b := s.cachedBundle(ctx, key); b != nil {
			b.Generation = gen
			if s.accept(gen, b, nil) {
				s.logger.Info("diagnostics served from cache", zap.String("task_id", b.TaskID), zap.Uint64("generation", gen))
			}
			return &Submission{TaskID: b.TaskID, Generation: gen, Cached: true}, nil
		}
	}

	input := s.taskSnapshot(snap, gen)
	t := s.runner.Submit(ctx, input)

	s.mu.Lock()
	if s.generation == gen {
		s.current = t
	}
	s.mu.Unlock()

	s.completions.Add(1)
	go func() {
		defer s.completions.Done()
		bundle, err := t.Result()
		if s.accept(gen, bundle, err) && err == nil {
			s.persist(key, bundle)
		}
	}()
	return &Submission{TaskID: t.ID, Generation: gen, Task: t}, nil
}

func (s *Session) taskSnapshot(snap *Snapshot, gen uint64) *task.Snapshot {
	store := snap.Terms
	if s.cfg.Cluster.Source == "documents" {
		store = snap.Documents
	}
	return &task.Snapshot{
		Generation:  gen,
		Fingerprint: snap.Fingerprint,
		Keys:        store.Keys(),
		Matrix:      store.AsMatrix(),
		Topics:      append([]models.TopicRecord(nil), snap.Topics...),
	}
}

// accept records a completion if gen is still current and reports whether it did.
func (s *Session) accept(gen uint64, bundle *models.DiagnosticsBundle, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Info("discarding stale diagnostics",
			zap.Uint64("generation", gen),
			zap.Uint64("current", s.generation),
		)
		return false
	}
	s.current = nil
	if err != nil {
		s.lastErr = err
		return true
	}
	s.latest = bundle.Clone()
	s.lastErr = nil
	return true
}

// Latest returns a copy of the most recent accepted bundle. When the latest task failed its
// error is returned; with nothing delivered yet the error wraps models.ErrNotFound.
func (s *Session) Latest() (*models.DiagnosticsBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest != nil {
		return s.latest.Clone(), nil
	}
	if s.lastErr != nil {
		return nil, s.lastErr
	}
	return nil, fmt.Errorf("diagnostics: %w", models.ErrNotFound)
}

// Status summarises the session.
func (s *Session) Status() Status {
	hits, misses := s.cache.Stats()
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{
		Generation:    s.generation,
		CacheHits:     hits,
		CacheMisses:   misses,
		ClusterSource: s.cfg.Cluster.Source,
		BestKPolicy:   s.diagnostics.Policy.Mode,
	}
	if snap := s.snapshot; snap != nil {
		st.Fingerprint = snap.Fingerprint
		st.Terms = snap.Terms.Len()
		st.Documents = snap.Documents.Len()
		st.Topics = len(snap.Topics)
		st.Dimensions = snap.Terms.Dimensions()
		st.LoadedAt = snap.LoadedAt
		for _, r := range snap.Reports {
			st.Issues += len(r.Issues)
		}
	}
	if s.current != nil {
		st.TaskID = s.current.ID
		st.TaskState = s.current.State()
	}
	if s.latest != nil {
		st.LatestTaskID = s.latest.TaskID
	}
	if s.lastErr != nil {
		st.LastError = models.Message(s.lastErr)
	}
	return st
}

// Wait blocks until all submitted tasks have finished and their results were recorded.
func (s *Session) Wait() {
	s.runner.Wait()
	s.completions.Wait()
}

func (s *Session) cacheKey(snap *Snapshot) string {
	c := s.cfg.Cluster
	params := "source=" + c.Source +
		" k=" + strconv.Itoa(c.KMin) + "-" + strconv.Itoa(c.KMax) +
		" seed=" + strconv.FormatInt(c.Seed, 10) +
		" restarts=" + strconv.Itoa(c.Restarts) +
		" iter=" + strconv.Itoa(c.MaxIterations) +
		" tol=" + strconv.FormatFloat(c.Tolerance, 'g', -1, 64) +
		" policy=" + string(s.diagnostics.Policy.Mode) + "/" + strconv.Itoa(s.diagnostics.Policy.FixedK)
	return vector.CombineFingerprints(snap.Fingerprint, params)
}

func (s *Session) cachedBundle(ctx context.Context, key string) *models.DiagnosticsBundle {
	if s.bundles == nil || !s.cfg.Storage.CacheResultsOrDefault() {
		return nil
	}
	b, err := s.bundles.GetBundle(ctx, key)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("diagnostics cache read failed", zap.Error(err))
		}
		return nil
	}
	return b
}

func (s *Session) persist(key string, b *models.DiagnosticsBundle) {
	if s.bundles == nil || !s.cfg.Storage.CacheResultsOrDefault() {
		return
	}
	if err := s.bundles.PutBundle(context.Background(), key, b); err != nil {
		s.logger.Warn("diagnostics cache write failed", zap.Error(err))
	}
}
