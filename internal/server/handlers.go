package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hyperjump/semspace/internal/export"
	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/session"
)

type resolveRequest struct {
	Query string `json:"query"`
}

type submitRequest struct {
	Force bool `json:"force"`
}

type errorResponse struct {
	Error      string   `json:"error"`
	Kind       string   `json:"kind,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	Candidates []string `json:"candidates,omitempty"`

	Suggestions []models.Suggestion `json:"suggestions,omitempty"`
}

func (s *Server) handleSearchTerms(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("term search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	engine, err := s.backend.Engine()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	response, err := engine.SearchTerms(r.Context(), &query)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	var query models.SimilarQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("similar request", zap.String("kind", string(query.Kind)), zap.String("key", query.Key))
	engine, err := s.backend.Engine()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	response, err := engine.Similar(r.Context(), &query)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	engine, err := s.backend.Engine()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	res, err := engine.Resolve(req.Query)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleSubmitDiagnostics(w http.ResponseWriter, r *http.Request) {
	// an empty body, chunked or not, submits with defaults
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if v := r.URL.Query().Get("force"); v != "" {
		force, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid force parameter")
			return
		}
		req.Force = force
	}
	sub, err := s.backend.Submit(r.Context(), req.Force)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	status := http.StatusAccepted
	if sub.Cached {
		status = http.StatusOK
	}
	s.respondJSON(w, status, sub)
}

func (s *Server) handleLatestDiagnostics(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.backend.Latest()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleExportDiagnostics(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.backend.Latest()
	if err != nil {
		s.respondErr(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(bundle)))
	if err := export.Write(w, bundle); err != nil {
		s.logger.Error("export failed", zap.Error(err))
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if _, err := s.backend.Reload(r.Context()); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.backend.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.backend.Status())
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, session.ErrNoSnapshot) {
		return http.StatusServiceUnavailable
	}
	switch models.Kind(err) {
	case "not_found":
		return http.StatusNotFound
	case "empty_query", "malformed_record":
		return http.StatusBadRequest
	case "ambiguous":
		return http.StatusConflict
	case "dimension_mismatch", "insufficient_samples":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: models.Message(err), Kind: models.Kind(err), Detail: err.Error()}
	if errors.Is(err, session.ErrNoSnapshot) {
		resp.Error = "No data loaded."
	}
	var amb *models.AmbiguousError
	if errors.As(err, &amb) {
		resp.Candidates = amb.Candidates
	}
	var unknown *models.UnknownTermsError
	if errors.As(err, &unknown) {
		resp.Suggestions = unknown.Suggestions
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.respondJSON(w, status, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}
