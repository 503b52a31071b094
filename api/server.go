// Package api provides the HTTP REST API server for ineqstat.
//
// It exposes read-only JSON endpoints for the full inequality report, the
// class allocation, the Gini coefficient, input validation and the
// decile-only reference bands.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/ineqstat/internal/allocation"
	"github.com/seenimoa/ineqstat/internal/config"
	"github.com/seenimoa/ineqstat/internal/infra"
	"github.com/seenimoa/ineqstat/internal/report"
	"github.com/seenimoa/ineqstat/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	logger  *zap.Logger
	input   func() allocation.Input
	version string
	reports *infra.Cache[*models.InequalityReport]
}

// Option configures a Server.
type Option func(*Server)

// WithInput replaces the compiled-in study input. Used by tests.
func WithInput(fn func() allocation.Input) Option {
	return func(s *Server) { s.input = fn }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{
		cfg:     cfg,
		logger:  logger,
		input:   report.StudyInput,
		version: "dev",
	}
	for _, opt := range opts {
		opt(srv)
	}
	var ttl time.Duration
	if cfg != nil {
		ttl = cfg.API.CacheTTL
	}
	srv.reports = infra.NewCache[*models.InequalityReport](ttl)
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("API server listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS
	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/report", s.handleReport)
		r.Get("/allocation", s.handleAllocation)
		r.Get("/gini", s.handleGini)
		r.Get("/validate", s.handleValidate)
		r.Get("/reference", s.handleReference)

		r.Get("/config", s.handleGetConfig)
	})

	return r
}

// requestLogger logs one line per request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// ============================================================
// API Types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ValidateResponse is the body of GET /api/v1/validate.
type ValidateResponse struct {
	Valid      bool               `json:"valid"`
	Violations []models.Violation `json:"violations"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": s.version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	cfg := s.reportConfig()
	if v := r.URL.Query().Get("reference"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "reference must be a boolean")
			return
		}
		cfg.IncludeReference = b
	}

	rep, err := s.buildReport(cfg)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if r.URL.Query().Get("format") == string(report.FormatText) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := report.RenderText(w, rep, cfg.Precision); err != nil {
			s.logger.Warn("failed to write text report", zap.Error(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep})
}

func (s *Server) handleAllocation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    allocation.Allocate(s.input()),
	})
}

func (s *Server) handleGini(w http.ResponseWriter, r *http.Request) {
	rep, err := s.buildReport(s.reportConfig())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep.Gini})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	rep, err := report.Build(s.input(), report.ReportConfig{Tolerance: s.reportConfig().Tolerance})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	violations := rep.Violations
	if violations == nil {
		violations = []models.Violation{}
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ValidateResponse{
			Valid:      len(violations) == 0,
			Violations: violations,
		},
	})
}

func (s *Server) handleReference(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    allocation.ReferenceClasses(s.input().Deciles),
	})
}

// buildReport returns a cached report for cfg, building it on a miss.
// Reports are immutable once built, so handlers share them.
func (s *Server) buildReport(cfg report.ReportConfig) (*models.InequalityReport, error) {
	key := "reference=" + strconv.FormatBool(cfg.IncludeReference)
	return s.reports.GetOrCompute(key, func() (*models.InequalityReport, error) {
		s.logger.Debug("building report", zap.String("key", key))
		return report.Build(s.input(), cfg)
	})
}

// reportConfig derives report settings from the running configuration.
func (s *Server) reportConfig() report.ReportConfig {
	cfg := report.DefaultReportConfig()
	if s.cfg == nil {
		return cfg
	}
	cfg.Precision = s.cfg.Report.Precision
	cfg.IncludeReference = s.cfg.Report.IncludeReference
	cfg.Strict = s.cfg.Report.Strict
	if s.cfg.Report.Tolerance > 0 {
		cfg.Tolerance = s.cfg.Report.Tolerance
	}
	return cfg
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
