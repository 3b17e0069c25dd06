/*
PURPOSE:
  REST surface for Prompt Tuner. Accepts experiments as JSON, runs them
  through the engine and returns results keyed by experiment name.

REQUIREMENTS:
  User-specified:
  - POST /experiments/run        single experiment -> {name: [results]}
  - POST /experiments/run-batch  list of experiments -> {name: [results]}
  - GET  /health                 {"status": "healthy"}

  Implementation-discovered:
  - GET /metrics exposes Prometheus metrics.
  - Error bodies use {"detail": "..."} so existing clients keep parsing them.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (serve command)
  - Uses: internal/engine, internal/metrics, internal/model

ERROR HANDLING:
  - Malformed or invalid bodies -> 422.
  - Any execution failure -> 500 with the error text. No partial results.

IMPLEMENTATION RULES:
  - Handlers are thin: decode, validate, run, encode.
  - Shutdown is driven by context cancellation.
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daryltucker/prompt-tuner/internal/metrics"
	"github.com/daryltucker/prompt-tuner/internal/model"
	"github.com/daryltucker/prompt-tuner/internal/output"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 10 << 20

// Runner executes experiments. *engine.Runner satisfies it.
type Runner interface {
	RunExperiment(ctx context.Context, exp model.Experiment) ([]model.Result, error)
	RunExperiments(ctx context.Context, exps []model.Experiment) (map[string][]model.Result, error)
}

// Server serves the REST API.
type Server struct {
	runner   Runner
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// NewServer creates a Server. metrics and gatherer may be nil; /metrics is
// only mounted when gatherer is set.
func NewServer(runner Runner, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	return &Server{runner: runner, metrics: m, gatherer: gatherer}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /experiments/run", s.handleRun)
	mux.HandleFunc("POST /experiments/run-batch", s.handleRunBatch)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return s.instrument(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		output.Logger.Info("HTTP server listening", "addr", listener.Addr().String())
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		output.Logger.Info("HTTP server shutting down")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var exp model.Experiment
	if err := decodeBody(w, r, &exp); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := exp.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	results, err := s.runner.RunExperiment(r.Context(), exp)
	if err != nil {
		output.Logger.Error("Experiment failed", "experiment", exp.Name, "error", err)
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.Result{exp.Name: results})
}

func (s *Server) handleRunBatch(w http.ResponseWriter, r *http.Request) {
	var exps []model.Experiment
	if err := decodeBody(w, r, &exps); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	for _, exp := range exps {
		if err := exp.Validate(); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	results, err := s.runner.RunExperiments(r.Context(), exps)
	if err != nil {
		output.Logger.Error("Experiment batch failed", "experiments", len(exps), "error", err)
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid request body: unexpected data after JSON value")
	}
	return nil
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		output.Logger.Warn("Failed to encode response", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests and logs them at debug level.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.ObserveHTTPRequest(r.Method, r.URL.Path, rec.status)
		output.Logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
