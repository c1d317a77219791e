// Package server provides the HTTP API for semspace.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/semspace/internal/config"
	"github.com/hyperjump/semspace/internal/models"
	"github.com/hyperjump/semspace/internal/search"
	"github.com/hyperjump/semspace/internal/session"
	"github.com/hyperjump/semspace/pkg/utils"
)

// Backend is the session surface the API needs.
type Backend interface {
	Engine() (*search.Engine, error)
	Status() session.Status
	Submit(ctx context.Context, force bool) (*session.Submission, error)
	Latest() (*models.DiagnosticsBundle, error)
	Reload(ctx context.Context) (*session.Snapshot, error)
}

// Server is the HTTP server for the semspace API.
type Server struct {
	backend Backend
	config  *config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(backend Backend, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		backend: backend,
		config:  cfg,
		logger:  utils.OrNop(logger),
	}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5, "application/json"))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/search/terms", s.handleSearchTerms)
		r.Post("/search/similar", s.handleSimilar)
		r.Post("/resolve", s.handleResolve)
		r.Post("/diagnostics", s.handleSubmitDiagnostics)
		r.Get("/diagnostics", s.handleLatestDiagnostics)
		r.Get("/diagnostics/export", s.handleExportDiagnostics)
		r.Post("/reload", s.handleReload)
	})
	return r
}

// requestLogger logs each request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
