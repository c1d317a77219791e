// Package cli renders search results and diagnostics bundles for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/topic"
	"github.com/hyperjump/semspace/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const (
	keyMaxLen = 60
	barWidth  = 40
	rule      = "─────────────────────────────────────────────────────────"
)

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d results in %dms\n", len(response.Results), response.QueryTime)
	if len(response.Matched) > 0 {
		fmt.Fprintf(w, "Matched: %s\n", strings.Join(response.Matched, ", "))
	}
	fmt.Fprintln(w, rule)
	for _, r := range response.Results {
		fmt.Fprintf(w, "%3d. %-*s %8.4f\n", r.Rank, keyMaxLen, utils.Truncate(r.Key, keyMaxLen), r.Score)
	}
	return nil
}

// WriteAmbiguous lists the candidates of an ambiguous lookup.
func WriteAmbiguous(w io.Writer, amb *models.AmbiguousError, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, map[string]interface{}{
			"kind":       models.ResolvedAmbiguous,
			"query":      amb.Query,
			"candidates": amb.Candidates,
		})
	}
	fmt.Fprintf(w, "%q matches %d titles. Re-run with one of:\n", amb.Query, len(amb.Candidates))
	for _, c := range amb.Candidates {
		fmt.Fprintf(w, "  %s\n", c)
	}
	return nil
}

// WriteSuggestions lists spelling suggestions for query words that are not known terms.
func WriteSuggestions(w io.Writer, unknown *models.UnknownTermsError, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, map[string]interface{}{
			"kind":        "not_found",
			"query":       unknown.Query,
			"suggestions": unknown.Suggestions,
		})
	}
	fmt.Fprintf(w, "No known terms in %q.\n", unknown.Query)
	for _, s := range unknown.Suggestions {
		fmt.Fprintf(w, "  %s: did you mean %s?\n", s.Word, strings.Join(s.Candidates, ", "))
	}
	return nil
}

// WriteBundle writes a diagnostics bundle to w in the given format.
func WriteBundle(w io.Writer, b *models.DiagnosticsBundle, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, b)
	}
	fmt.Fprintf(w, "\nDiagnostics over %d samples (task %s)\n", len(b.Keys), b.TaskID)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "Silhouette by k:")
	best := 0.0
	for _, s := range b.SilhouetteScores {
		if s > best {
			best = s
		}
	}
	for i, s := range b.SilhouetteScores {
		k := b.KMin + i
		marker := " "
		if k == b.BestK {
			marker = "*"
		}
		fmt.Fprintf(w, " %s k=%-3d %7.4f %s\n", marker, k, s, bar(s, best))
	}
	fmt.Fprintf(w, "\nBest k: %d\n", b.BestK)
	if b.Cluster != nil {
		fmt.Fprintln(w, "\nCluster sizes:")
		for _, c := range b.Cluster.Counts {
			fmt.Fprintf(w, "  cluster %-3d %6d\n", c.ClusterID, c.Count)
		}
	}
	if len(b.TopicOrder) > 0 {
		total := topic.Total(b.TopicOrder)
		fmt.Fprintln(w, "\nTopic strength:")
		for _, t := range b.TopicOrder {
			fmt.Fprintf(w, "  %-12s %10.4f %s\n", utils.Truncate(t.TopicID, 12), t.SingularValue, bar(t.SingularValue, total))
		}
	}
	return nil
}

// bar draws v relative to max; non-positive values draw nothing.
func bar(v, max float64) string {
	if v <= 0 || max <= 0 {
		return ""
	}
	n := int(v / max * barWidth)
	if n < 1 {
		n = 1
	}
	if n > barWidth {
		n = barWidth
	}
	return strings.Repeat("█", n)
}
