package search

import (
	"sort"
	"strings"

	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/vector"
)

// Suggester proposes stored terms within a small edit distance of an unknown word.
type Suggester struct {
	terms          []string // lowercased, store order
	keys           []string
	maxDistance    int
	maxSuggestions int
}

// SuggesterOption configures a Suggester.
type SuggesterOption func(*Suggester)

// WithMaxDistance sets the largest edit distance considered a suggestion.
func WithMaxDistance(d int) SuggesterOption {
	return func(s *Suggester) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions caps the candidates returned per word.
func WithMaxSuggestions(n int) SuggesterOption {
	return func(s *Suggester) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSuggester indexes the keys of idx.
func NewSuggester(idx vector.Index, opts ...SuggesterOption) *Suggester {
	s := &Suggester{maxDistance: 2, maxSuggestions: 5}
	for _, opt := range opts {
		opt(s)
	}
	n := idx.Len()
	s.terms = make([]string, n)
	s.keys = make([]string, n)
	for i := 0; i < n; i++ {
		s.keys[i] = idx.KeyAt(i)
		s.terms[i] = strings.ToLower(s.keys[i])
	}
	return s
}

// Suggest returns candidates for one word, closest first, ties in store order.
// Exact (case-insensitive) matches are not suggestions.
func (s *Suggester) Suggest(word string) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil
	}
	type candidate struct {
		key      string
		distance int
		order    int
	}
	var found []candidate
	wordLen := len([]rune(word))
	for i, term := range s.terms {
		if term == word {
			continue
		}
		lenDiff := len([]rune(term)) - wordLen
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > s.maxDistance {
			continue
		}
		if d := levenshtein(word, term); d <= s.maxDistance {
			found = append(found, candidate{key: s.keys[i], distance: d, order: i})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].distance != found[j].distance {
			return found[i].distance < found[j].distance
		}
		return found[i].order < found[j].order
	})
	if len(found) > s.maxSuggestions {
		found = found[:s.maxSuggestions]
	}
	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.key
	}
	return out
}

// SuggestAll returns suggestions for every word that has at least one candidate.
func (s *Suggester) SuggestAll(words []string) []models.Suggestion {
	var out []models.Suggestion
	for _, w := range words {
		if c := s.Suggest(w); len(c) > 0 {
			out = append(out, models.Suggestion{Word: w, Candidates: c})
		}
	}
	return out
}

// levenshtein is the edit distance between a and b counted in runes.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	// Two rows are enough.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
