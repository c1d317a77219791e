package search

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/vector"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{"identical empty", "", "", 0},
		{"identical word", "hello", "hello", 0},
		{"identical unicode", "こんにちは", "こんにちは", 0},
		{"empty a", "", "hello", 5},
		{"empty b", "hello", "", 5},
		{"one substitution", "cat", "bat", 1},
		{"one insertion", "cat", "cart", 1},
		{"one deletion", "cart", "cat", 1},
		{"kitten to sitting", "kitten", "sitting", 3},
		{"machine to machne", "machine", "machne", 1},
		{"unicode substitution", "café", "cafe", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := levenshtein(tt.a, tt.b); got != tt.expected {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
			if got := levenshtein(tt.b, tt.a); got != tt.expected {
				t.Errorf("levenshtein(%q, %q) = %d, want %d (symmetry)", tt.b, tt.a, got, tt.expected)
			}
		})
	}
}

func suggesterFor(t *testing.T, keys []string, opts ...SuggesterOption) *Suggester {
	t.Helper()
	recs := make([]models.EmbeddingRecord, len(keys))
	for i, k := range keys {
		recs[i] = models.EmbeddingRecord{Key: k, Vector: []float64{float64(i + 1), 1}}
	}
	store, err := vector.Load(recs)
	if err != nil {
		t.Fatal(err)
	}
	return NewSuggester(store, opts...)
}

func TestSuggester_Suggest(t *testing.T) {
	s := suggesterFor(t, []string{"Inflation", "inflaton", "deflation", "interest", "nation"})

	got := s.Suggest("inflaion")
	want := []string{"Inflation", "inflaton", "deflation"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(inflaion) = %v, want %v", got, want)
	}
	if got := s.Suggest("inflation"); !reflect.DeepEqual(got, []string{"inflaton", "deflation"}) {
		t.Errorf("exact match must be skipped, got %v", got)
	}
	if got := s.Suggest("zzzzzz"); len(got) != 0 {
		t.Errorf("Suggest(zzzzzz) = %v", got)
	}
	if got := s.Suggest("   "); got != nil {
		t.Errorf("blank word = %v", got)
	}
}

func TestSuggester_Options(t *testing.T) {
	s := suggesterFor(t, []string{"bond", "band", "bend", "bind", "blind"}, WithMaxDistance(1), WithMaxSuggestions(2))
	got := s.Suggest("bund")
	if !reflect.DeepEqual(got, []string{"bond", "band"}) {
		t.Errorf("Suggest(bund) = %v", got)
	}
}

func TestEngine_UnknownTermsCarrySuggestions(t *testing.T) {
	e := newTestEngine(t, nil)
	_, err := e.SearchTerms(context.Background(), &models.SearchQuery{Query: "cst xyzzy"})
	var unknown *models.UnknownTermsError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTermsError, got %v", err)
	}
	if !errors.Is(err, models.ErrNotFound) || models.Kind(err) != "not_found" {
		t.Errorf("UnknownTermsError must match ErrNotFound")
	}
	if len(unknown.Suggestions) != 1 || unknown.Suggestions[0].Word != "cst" {
		t.Fatalf("suggestions = %+v", unknown.Suggestions)
	}
	if !reflect.DeepEqual(unknown.Suggestions[0].Candidates, []string{"cat", "car"}) {
		t.Errorf("candidates = %v", unknown.Suggestions[0].Candidates)
	}
}
