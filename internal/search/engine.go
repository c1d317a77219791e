// Package search provides similarity search over term and document embedding snapshots.
package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/semspace/internal/config"
	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/vector"
	"github.com/hyperjump/semspace/pkg/utils"
)

// Engine answers interactive queries against one immutable pair of term and document stores.
type Engine struct {
	terms     *Searcher
	documents *Searcher
	termIdx   vector.Index
	docIdx    vector.Index
	suggester *Suggester
	config    *config.SearchConfig
	cache     *ResultCache
	logger    *zap.Logger
}

// NewEngine creates a search engine. cache and logger may be nil.
func NewEngine(
	terms vector.Index,
	documents vector.Index,
	cfg *config.SearchConfig,
	cache *ResultCache,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		terms:     NewSearcher(terms, WithTopN(cfg.TopN)),
		documents: NewSearcher(documents, WithTopN(cfg.TopN)),
		termIdx:   terms,
		docIdx:    documents,
		suggester: NewSuggester(terms),
		config:    cfg,
		cache:     cache,
		logger:    utils.OrNop(logger),
	}
}

// Terms returns the searcher over term embeddings.
func (e *Engine) Terms() *Searcher { return e.terms }

// Documents returns the searcher over document embeddings.
func (e *Engine) Documents() *Searcher { return e.documents }

// SearchTerms averages the known terms of the query and ranks the target collection
// against that vector.
func (e *Engine) SearchTerms(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()
	if err := ProcessQuery(query, e.config.TopN, e.config.MaxLimit); err != nil {
		return nil, err
	}
	target, targetIdx := e.documents, e.docIdx
	if query.Target == models.TargetTerms {
		target, targetIdx = e.terms, e.termIdx
	}
	cacheKey := e.cacheKey("terms", string(query.Target), query.Query, query.Limit, targetIdx)
	if resp, ok := e.cachedResponse(cacheKey); ok {
		return resp, nil
	}

	words := utils.Tokenize(query.Query)
	vec, matched, err := e.terms.QueryFromTerms(words)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &models.UnknownTermsError{Query: query.Query, Suggestions: e.suggester.SuggestAll(words)}
	}
	if err != nil {
		return nil, err
	}
	results, err := target.RankAgainstN(vec, "", query.Limit)
	if err != nil {
		return nil, fmt.Errorf("rank %s: %w", query.Target, err)
	}
	resp := &models.SearchResponse{
		Query:     query.Query,
		Matched:   matched,
		Results:   results,
		QueryTime: time.Since(startTime).Milliseconds(),
	}
	e.logger.Debug("term search",
		zap.String("query", query.Query),
		zap.Strings("matched", matched),
		zap.String("target", string(query.Target)),
		zap.Int("results", len(results)),
	)
	e.store(cacheKey, resp)
	return resp, nil
}

// Similar returns the neighbours of one stored item. Terms are taken from the first
// query token that is a known term. Documents are matched by exact title first, then by
// title substring; several substring matches yield an *models.AmbiguousError.
func (e *Engine) Similar(ctx context.Context, query *models.SimilarQuery) (*models.SearchResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()
	if err := ProcessSimilar(query, e.config.TopN, e.config.MaxLimit); err != nil {
		return nil, err
	}

	var (
		key      string
		searcher *Searcher
		idx      vector.Index
	)
	switch query.Kind {
	case models.TargetTerms:
		searcher, idx = e.terms, e.termIdx
		for _, tok := range utils.Tokenize(query.Key) {
			if k, _, ok := lookup(e.termIdx, tok); ok {
				key = k
				break
			}
		}
		if key == "" {
			return nil, fmt.Errorf("term %q: %w", query.Key, models.ErrNotFound)
		}
	default:
		searcher, idx = e.documents, e.docIdx
		resolved, err := e.resolveDocument(query.Key)
		if err != nil {
			return nil, err
		}
		key = resolved
	}

	cacheKey := e.cacheKey("similar", string(query.Kind), key, query.Limit, idx)
	if resp, ok := e.cachedResponse(cacheKey); ok {
		return resp, nil
	}
	results, err := searcher.SimilarTo(key, query.Limit)
	if err != nil {
		return nil, err
	}
	resp := &models.SearchResponse{
		Query:     query.Key,
		Matched:   []string{key},
		Exclude:   key,
		Results:   results,
		QueryTime: time.Since(startTime).Milliseconds(),
	}
	e.logger.Debug("similar search",
		zap.String("kind", string(query.Kind)),
		zap.String("key", key),
		zap.Int("results", len(results)),
	)
	e.store(cacheKey, resp)
	return resp, nil
}

// Resolve runs the title-substring lookup after enforcing the minimum query length.
func (e *Engine) Resolve(text string) (models.Resolution, error) {
	q := &models.SimilarQuery{Kind: models.TargetDocuments, Key: text}
	if err := ProcessSimilar(q, e.config.TopN, e.config.MaxLimit); err != nil {
		return models.Resolution{}, err
	}
	return e.documents.ResolveByTitleSubstring(q.Key), nil
}

func (e *Engine) resolveDocument(text string) (string, error) {
	if key, _, ok := lookup(e.docIdx, text); ok {
		return key, nil
	}
	res := e.documents.ResolveByTitleSubstring(text)
	switch res.Kind {
	case models.ResolvedUnique:
		return res.Keys[0], nil
	case models.ResolvedAmbiguous:
		return "", &models.AmbiguousError{Query: text, Candidates: res.Keys}
	default:
		return "", fmt.Errorf("document %q: %w", text, models.ErrNotFound)
	}
}

func (e *Engine) cacheKey(op, target, query string, limit int, idx vector.Index) string {
	return idx.Fingerprint() + "|" + op + "|" + target + "|" + strconv.Itoa(limit) + "|" + query
}

// cachedResponse and store copy on the way out and in; callers own what they receive.
func (e *Engine) cachedResponse(key string) (*models.SearchResponse, bool) {
	if e.cache == nil {
		return nil, false
	}
	resp, ok := e.cache.Get(key)
	if !ok {
		return nil, false
	}
	return resp.Clone(), true
}

func (e *Engine) store(key string, resp *models.SearchResponse) {
	if e.cache != nil {
		e.cache.Set(key, resp.Clone())
	}
}
