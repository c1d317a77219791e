package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/session"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"economy"}, "economy"},
		{"multiple words", []string{"machine", "learning"}, "machine learning"},
		{"single quoted phrase", []string{"machine learning"}, "machine learning"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("lookup: %w", models.ErrNotFound), ExitNotFound},
		{"ambiguous", &models.AmbiguousError{Query: "war", Candidates: []string{"War", "Warp"}}, ExitAmbiguous},
		{"empty query", models.ErrEmptyQuery, ExitDataError},
		{"insufficient samples", models.ErrInsufficientSamples, ExitDataError},
		{"explicit code", &exitError{code: ExitConfigError, err: errors.New("bad config")}, ExitConfigError},
		{"other", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadConfigFallback(t *testing.T) {
	t.Run("defaults without a config file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		cfg, loaded, err := loadConfig("")
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if loaded != "" {
			t.Errorf("loaded = %q, want defaults", loaded)
		}
		if cfg.Search.TopN != 20 {
			t.Errorf("TopN = %d, want 20", cfg.Search.TopN)
		}
	})

	t.Run("uses semspace.yaml in the working directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		if err := os.WriteFile(filepath.Join(dir, defaultConfigName), []byte("search:\n  top_n: 7\n"), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, loaded, err := loadConfig("")
		if err != nil {
			t.Fatalf("loadConfig: %v", err)
		}
		if filepath.Base(loaded) != defaultConfigName {
			t.Errorf("loaded = %q", loaded)
		}
		if cfg.Search.TopN != 7 {
			t.Errorf("TopN = %d, want 7", cfg.Search.TopN)
		}
	})

	t.Run("explicit path that does not exist", func(t *testing.T) {
		t.Chdir(t.TempDir())
		if _, _, err := loadConfig("missing.yaml"); err == nil {
			t.Error("expected error for missing config")
		}
	})
}

func TestExportPath(t *testing.T) {
	b := &models.DiagnosticsBundle{FinishedAt: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)}
	dir := t.TempDir()

	if got := exportPath(dir, b); got != filepath.Join(dir, "diagnostics-20240305-140709.xlsx") {
		t.Errorf("directory target = %q", got)
	}
	if got := exportPath(filepath.Join(dir, "out"), b); got != filepath.Join(dir, "out", "diagnostics-20240305-140709.xlsx") {
		t.Errorf("extensionless target = %q", got)
	}
	file := filepath.Join(dir, "report.xlsx")
	if got := exportPath(file, b); got != file {
		t.Errorf("file target = %q", got)
	}
}

func TestSimilarViaHTTPAmbiguous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/search/similar" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"ambiguous match","kind":"ambiguous","candidates":["War and Peace","Star Wars"]}`))
	}))
	defer srv.Close()

	_, err := similarViaHTTP(context.Background(), srv.URL+"/", &models.SimilarQuery{Kind: models.TargetDocuments, Key: "war"})
	var amb *models.AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if amb.Query != "war" || len(amb.Candidates) != 2 {
		t.Errorf("amb = %+v", amb)
	}
	if exitCode(err) != ExitAmbiguous {
		t.Errorf("exitCode = %d", exitCode(err))
	}
}

func TestSearchTermsViaHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/search/terms" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"query":"economy","results":[{"key":"Doc A","score":0.9}]}`))
	}))
	defer srv.Close()

	resp, err := searchTermsViaHTTP(context.Background(), srv.URL, &models.SearchQuery{Query: "economy"})
	if err != nil {
		t.Fatalf("searchTermsViaHTTP: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Key != "Doc A" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchTermsViaHTTPNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found","kind":"not_found"}`))
	}))
	defer srv.Close()

	_, err := searchTermsViaHTTP(context.Background(), srv.URL, &models.SearchQuery{Query: "zzz"})
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWriteStatus(t *testing.T) {
	var buf bytes.Buffer
	writeStatus(&buf, &session.Status{
		Generation:    2,
		Terms:         10,
		Documents:     4,
		ClusterSource: "terms",
		BestKPolicy:   "argmax",
		LatestTaskID:  "abc",
	})
	out := buf.String()
	for _, want := range []string{"Generation:   2", "Terms:        10", "terms (best k: argmax)", "ready (abc)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
