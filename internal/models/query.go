package models

import (
	"fmt"
	"strings"
)

// MinQueryLength is the shortest title fragment accepted for document lookup.
const MinQueryLength = 3

// SearchTarget selects the collection a query is ranked against.
type SearchTarget string

const (
	TargetDocuments SearchTarget = "documents"
	TargetTerms     SearchTarget = "terms"
)

// SearchQuery is a free-text term query ranked against a target collection.
type SearchQuery struct {
	Query  string       `json:"query"`
	Target SearchTarget `json:"target,omitempty"`
	Limit  int          `json:"limit,omitempty"`
}

// Validate trims the query, rejects blank input and applies defaults.
func (q *SearchQuery) Validate(defaultLimit, maxLimit int) error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty: %w", ErrEmptyQuery)
	}
	switch q.Target {
	case "":
		q.Target = TargetDocuments
	case TargetDocuments, TargetTerms:
	default:
		return fmt.Errorf("unknown target %q: %w", q.Target, ErrEmptyQuery)
	}
	q.Limit = clampLimit(q.Limit, defaultLimit, maxLimit)
	return nil
}

// SimilarQuery asks for neighbours of one stored item, looked up by key or title fragment.
type SimilarQuery struct {
	Kind  SearchTarget `json:"kind"`
	Key   string       `json:"key"`
	Limit int          `json:"limit,omitempty"`
}

// Validate trims the key and enforces MinQueryLength for document lookups.
func (q *SimilarQuery) Validate(defaultLimit, maxLimit int) error {
	q.Key = strings.TrimSpace(q.Key)
	if q.Kind == "" {
		q.Kind = TargetDocuments
	}
	if q.Kind != TargetDocuments && q.Kind != TargetTerms {
		return fmt.Errorf("unknown kind %q: %w", q.Kind, ErrEmptyQuery)
	}
	if q.Key == "" {
		return fmt.Errorf("key cannot be empty: %w", ErrEmptyQuery)
	}
	if q.Kind == TargetDocuments && len([]rune(q.Key)) < MinQueryLength {
		return fmt.Errorf("title query must be at least %d characters: %w", MinQueryLength, ErrEmptyQuery)
	}
	q.Limit = clampLimit(q.Limit, defaultLimit, maxLimit)
	return nil
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}
