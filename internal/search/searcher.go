package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/vector"
)

// DefaultTopN is how many hits RankAgainst returns unless configured otherwise.
const DefaultTopN = 20

// Searcher ranks the vectors of one snapshot by cosine similarity.
type Searcher struct {
	index vector.Index
	topN  int
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithTopN sets how many hits RankAgainst returns. Non-positive values are ignored.
func WithTopN(n int) SearcherOption {
	return func(s *Searcher) {
		if n > 0 {
			s.topN = n
		}
	}
}

// NewSearcher creates a searcher over idx.
func NewSearcher(idx vector.Index, opts ...SearcherOption) *Searcher {
	s := &Searcher{index: idx, topN: DefaultTopN}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TopN returns the configured result count.
func (s *Searcher) TopN() int { return s.topN }

// RankAgainst scores every stored vector except excludeKey against query and returns the
// best TopN, descending by score. Equal scores keep store order.
func (s *Searcher) RankAgainst(query []float64, excludeKey string) ([]*models.SearchResult, error) {
	return s.RankAgainstN(query, excludeKey, s.topN)
}

// RankAgainstN is RankAgainst with an explicit result count.
func (s *Searcher) RankAgainstN(query []float64, excludeKey string, n int) ([]*models.SearchResult, error) {
	if s.index.Len() > 0 && len(query) != s.index.Dimensions() {
		return nil, fmt.Errorf("query has %d dimensions, store has %d: %w",
			len(query), s.index.Dimensions(), models.ErrDimensionMismatch)
	}
	scored := make([]*models.SearchResult, 0, s.index.Len())
	for i := 0; i < s.index.Len(); i++ {
		key := s.index.KeyAt(i)
		if excludeKey != "" && key == excludeKey {
			continue
		}
		scored = append(scored, &models.SearchResult{Key: key, Score: vector.Cosine(query, s.index.VectorAt(i))})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if n > 0 && len(scored) > n {
		scored = scored[:n]
	}
	for i, r := range scored {
		r.Rank = i + 1
	}
	return scored, nil
}

// QueryFromTerms looks each term up case-insensitively and returns the element-wise mean
// of the matched vectors together with the stored keys that matched, in term order.
// A term that matches twice contributes twice. No matches yields ErrNotFound.
func (s *Searcher) QueryFromTerms(terms []string) ([]float64, []string, error) {
	var (
		vectors [][]float64
		matched []string
	)
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		key, pos, ok := lookup(s.index, term)
		if !ok {
			continue
		}
		vectors = append(vectors, s.index.VectorAt(pos))
		matched = append(matched, key)
	}
	if len(vectors) == 0 {
		return nil, nil, fmt.Errorf("none of %v is a known term: %w", terms, models.ErrNotFound)
	}
	mean, err := vector.Mean(vectors)
	if err != nil {
		return nil, nil, err
	}
	return mean, matched, nil
}

// ResolveByTitleSubstring finds every stored key containing text, case-insensitively,
// in store order. Length policy is enforced by ProcessSimilar, not here.
func (s *Searcher) ResolveByTitleSubstring(text string) models.Resolution {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return models.Resolution{Kind: models.ResolvedNotFound}
	}
	var matches []string
	for i := 0; i < s.index.Len(); i++ {
		key := s.index.KeyAt(i)
		if strings.Contains(strings.ToLower(key), needle) {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return models.Resolution{Kind: models.ResolvedNotFound}
	case 1:
		return models.Resolution{Kind: models.ResolvedUnique, Keys: matches}
	default:
		return models.Resolution{Kind: models.ResolvedAmbiguous, Keys: matches}
	}
}

// SimilarTo ranks the store against the vector stored under key, excluding key itself.
func (s *Searcher) SimilarTo(key string, n int) ([]*models.SearchResult, error) {
	pos, ok := s.index.Position(key)
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, models.ErrNotFound)
	}
	return s.RankAgainstN(s.index.VectorAt(pos), key, n)
}

type caseInsensitiveLookup interface {
	Lookup(key string) (string, int, bool)
}

func lookup(idx vector.Index, key string) (string, int, bool) {
	if l, ok := idx.(caseInsensitiveLookup); ok {
		return l.Lookup(key)
	}
	if pos, ok := idx.Position(key); ok {
		return key, pos, true
	}
	lower := strings.ToLower(key)
	for i := 0; i < idx.Len(); i++ {
		if strings.ToLower(idx.KeyAt(i)) == lower {
			return idx.KeyAt(i), i, true
		}
	}
	return "", -1, false
}
