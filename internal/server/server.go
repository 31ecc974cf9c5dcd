// Package server exposes the template repository and the multiprocess
// engine over a REST API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scailfin/benchmark-multiproc-backend/internal/config"
	"github.com/scailfin/benchmark-multiproc-backend/internal/engine"
	"github.com/scailfin/benchmark-multiproc-backend/internal/repo"
)

// Server is the REST API server.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.Config
	startTime time.Time
	repo      *repo.Repository
	engine    *engine.Engine
}

// New creates a Server with all routes registered.
func New(cfg config.Config, templates *repo.Repository, eng *engine.Engine, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		startTime: time.Now(),
		repo:      templates,
		engine:    eng,
	}
	s.routes()
	return s
}

// routes registers all HTTP routes.
func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/templates", func(r chi.Router) {
			r.Post("/", s.handleCreateTemplate)
			r.Get("/", s.handleListTemplates)
			r.Get("/{id}", s.handleGetTemplate)
			r.Delete("/{id}", s.handleDeleteTemplate)
		})
		r.Route("/runs", func(r chi.Router) {
			r.Post("/", s.handleStartRun)
			r.Get("/{id}", s.handleGetRun)
			r.Delete("/{id}", s.handleCancelRun)
		})
	})
}

// Handler returns the root http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs one line per request with method, path, and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
