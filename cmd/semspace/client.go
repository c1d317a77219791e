package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/session"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// apiError is the error body returned by the server.
type apiError struct {
	Error      string   `json:"error"`
	Kind       string   `json:"kind"`
	Detail     string   `json:"detail"`
	Candidates []string `json:"candidates"`

	Suggestions []models.Suggestion `json:"suggestions"`
}

// kindErrors maps server error kinds back onto the local taxonomy.
var kindErrors = map[string]error{
	"not_found":            models.ErrNotFound,
	"empty_query":          models.ErrEmptyQuery,
	"dimension_mismatch":   models.ErrDimensionMismatch,
	"insufficient_samples": models.ErrInsufficientSamples,
	"malformed_record":     models.ErrMalformedRecord,
}

func doJSON(ctx context.Context, method, serverURL, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(serverURL, "/")+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		var ae apiError
		if json.Unmarshal(b, &ae) == nil && ae.Kind != "" {
			if ae.Kind == "ambiguous" {
				return &models.AmbiguousError{Candidates: ae.Candidates}
			}
			if ae.Kind == "not_found" && len(ae.Suggestions) > 0 {
				return &models.UnknownTermsError{Suggestions: ae.Suggestions}
			}
			if sentinel, ok := kindErrors[ae.Kind]; ok {
				return fmt.Errorf("server: %s: %w", ae.Error, sentinel)
			}
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func searchTermsViaHTTP(ctx context.Context, serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	var response models.SearchResponse
	if err := doJSON(ctx, http.MethodPost, serverURL, "/api/v1/search/terms", query, &response); err != nil {
		var unknown *models.UnknownTermsError
		if errors.As(err, &unknown) {
			unknown.Query = query.Query
		}
		return nil, err
	}
	return &response, nil
}

func similarViaHTTP(ctx context.Context, serverURL string, query *models.SimilarQuery) (*models.SearchResponse, error) {
	var response models.SearchResponse
	if err := doJSON(ctx, http.MethodPost, serverURL, "/api/v1/search/similar", query, &response); err != nil {
		var amb *models.AmbiguousError
		if errors.As(err, &amb) {
			amb.Query = query.Key
		}
		return nil, err
	}
	return &response, nil
}

func statusViaHTTP(ctx context.Context, serverURL string) (*session.Status, error) {
	var status session.Status
	if err := doJSON(ctx, http.MethodGet, serverURL, "/api/v1/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
