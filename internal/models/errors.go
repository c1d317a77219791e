package models

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Callers match with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrDimensionMismatch   = errors.New("dimension mismatch")
	ErrInsufficientSamples = errors.New("insufficient samples")
	ErrEmptyQuery          = errors.New("empty query")
	ErrAmbiguous           = errors.New("ambiguous match")
	ErrMalformedRecord     = errors.New("malformed record")
)

// AmbiguousError lists the candidates a caller must choose between.
type AmbiguousError struct {
	Query      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q matches %d items: %s", e.Query, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// Is reports ErrAmbiguous so AmbiguousError can be matched like the other sentinels.
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}

// Suggestion lists stored terms close in spelling to an unknown query word.
type Suggestion struct {
	Word       string   `json:"word"`
	Candidates []string `json:"candidates"`
}

// UnknownTermsError is returned when no query word is a known term. It matches ErrNotFound.
type UnknownTermsError struct {
	Query       string
	Suggestions []Suggestion
}

func (e *UnknownTermsError) Error() string {
	return fmt.Sprintf("no known terms in %q: %s", e.Query, ErrNotFound)
}

// Is reports ErrNotFound.
func (e *UnknownTermsError) Is(target error) bool {
	return target == ErrNotFound
}

// RecordError reports one rejected input line.
type RecordError struct {
	Source string
	Line   int
	Reason string
}

func (e *RecordError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
}

// Unwrap returns ErrMalformedRecord.
func (e *RecordError) Unwrap() error {
	return ErrMalformedRecord
}

// Kind returns the taxonomy name of err, or "internal" when it is none of them.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, ErrInsufficientSamples):
		return "insufficient_samples"
	case errors.Is(err, ErrEmptyQuery):
		return "empty_query"
	case errors.Is(err, ErrAmbiguous):
		return "ambiguous"
	case errors.Is(err, ErrMalformedRecord):
		return "malformed_record"
	default:
		return "internal"
	}
}

// Message is the short user-facing text for each error kind.
func Message(err error) string {
	switch Kind(err) {
	case "":
		return ""
	case "not_found":
		return "No matching item found."
	case "dimension_mismatch":
		return "Embedding dimensions are inconsistent."
	case "insufficient_samples":
		return "Not enough samples for the requested number of clusters."
	case "empty_query":
		return fmt.Sprintf("Enter a query (titles need at least %d characters).", MinQueryLength)
	case "ambiguous":
		return "Multiple items match. Select one."
	case "malformed_record":
		return "Input record is malformed."
	default:
		return "Internal error."
	}
}
