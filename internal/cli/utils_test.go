package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/semspace/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query:     "wiki",
		Matched:   []string{"wiki"},
		QueryTime: 3,
		Results: []*models.SearchResult{
			{Key: "Wikipedia", Score: 0.98, Rank: 1},
			{Key: "Wiki News", Score: 0.75, Rank: 2},
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "wiki" || len(decoded.Results) != 2 || decoded.Results[1].Key != "Wiki News" {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Found 2 results", "Matched: wiki", "Wikipedia", "0.9800"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Wikipedia") > strings.Index(out, "Wiki News") {
		t.Error("results out of rank order")
	}
}

func TestWriteAmbiguous(t *testing.T) {
	amb := &models.AmbiguousError{Query: "wiki", Candidates: []string{"Wikipedia", "Wiki News"}}
	var buf bytes.Buffer
	if err := WriteAmbiguous(&buf, amb, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "matches 2 titles") || !strings.Contains(buf.String(), "Wiki News") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteAmbiguous(&buf, amb, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Kind       string   `json:"kind"`
		Candidates []string `json:"candidates"`
	}
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Kind != "ambiguous" || len(decoded.Candidates) != 2 {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestWriteSuggestions(t *testing.T) {
	unknown := &models.UnknownTermsError{
		Query:       "inflaion",
		Suggestions: []models.Suggestion{{Word: "inflaion", Candidates: []string{"inflation", "inflaton"}}},
	}
	var buf bytes.Buffer
	if err := WriteSuggestions(&buf, unknown, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "inflaion: did you mean inflation, inflaton?") {
		t.Errorf("text output:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteSuggestions(&buf, unknown, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Kind        string              `json:"kind"`
		Suggestions []models.Suggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Kind != "not_found" || len(decoded.Suggestions) != 1 {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestWriteBundle_Text(t *testing.T) {
	b := &models.DiagnosticsBundle{
		TaskID:           "task-9",
		Keys:             []string{"a", "b", "c", "d"},
		SilhouetteScores: []float64{0.3, 0.6, -0.1},
		KMin:             2,
		BestK:            3,
		Cluster: &models.ClusterResult{
			Counts: []models.ClusterCount{{ClusterID: 0, Count: 2}, {ClusterID: 1, Count: 1}, {ClusterID: 2, Count: 1}},
		},
		TopicOrder: []models.TopicPair{{TopicID: "5", SingularValue: 4}, {TopicID: "2", SingularValue: 1}},
	}
	var buf bytes.Buffer
	if err := WriteBundle(&buf, b, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"4 samples", "* k=3", "Best k: 3", "cluster 2", "Topic strength"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		v, max float64
		want   int
	}{
		{1, 1, barWidth},
		{0.5, 1, barWidth / 2},
		{0.001, 1, 1},
		{0, 1, 0},
		{-0.2, 1, 0},
		{2, 1, barWidth},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := len([]rune(bar(tt.v, tt.max))); got != tt.want {
			t.Errorf("bar(%v, %v) has %d cells, want %d", tt.v, tt.max, got, tt.want)
		}
	}
}
