// Package api exposes the serve-mode HTTP interface: health probes,
// Prometheus metrics, the latest filtered award set, and a refresh trigger.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spendwatch/awardfeed/internal/metrics"
	"github.com/spendwatch/awardfeed/internal/pipeline"
	"github.com/spendwatch/awardfeed/internal/tabular"
)

// Runner executes one pipeline run. Satisfied by *pipeline.Orchestrator.
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// Server wires HTTP handlers to the pipeline runner and caches the latest
// result. Runs are serialized: a refresh while one is in flight is
// rejected with 409.
type Server struct {
	router chi.Router
	runner Runner
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	latest  *pipeline.Result
	lastErr string
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner Runner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/awards", s.getAwards)
		r.Post("/refresh", s.refresh)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// awardsResponse is the JSON shape of GET /v1/awards.
type awardsResponse struct {
	RunID   string                  `json:"run_id"`
	Started time.Time               `json:"started"`
	Groups  []pipeline.GroupOutcome `json:"groups"`
	Rows    int                     `json:"rows"`
	Records []tabular.Row           `json:"records"`
}

func (s *Server) getAwards(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	latest := s.latest
	s.mu.Unlock()

	if latest == nil {
		writeError(w, http.StatusNotFound, "no completed run yet")
		return
	}
	records := latest.Table.Rows
	if records == nil {
		records = []tabular.Row{}
	}
	writeJSON(w, http.StatusOK, awardsResponse{
		RunID:   latest.RunID,
		Started: latest.Started,
		Groups:  latest.Groups,
		Rows:    latest.Table.Len(),
		Records: records,
	})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	// the poll loop can outlive the request, so detach from its context
	if !s.TriggerRefresh(context.WithoutCancel(r.Context())) {
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// TriggerRefresh starts a pipeline run in the background unless one is
// already in flight. It reports whether a run was started.
func (s *Server) TriggerRefresh(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	go s.runOnce(ctx)
	return true
}

func (s *Server) runOnce(ctx context.Context) {
	res, err := s.runner.Run(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("pipeline run failed", zap.Error(err))
		return
	}
	s.lastErr = ""
	s.latest = &res
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write json response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
