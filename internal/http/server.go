// Package http serves the dashboard summary to the presentation layer. The
// payload is produced and persisted by the pipeline; this server only hands
// out the latest run and can trigger a fresh one.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"vendas/internal/core"
	"vendas/internal/pipeline"
	"vendas/internal/storage"
)

// RunSource reads persisted pipeline runs. Implemented by
// storage.SQLiteRepository.
type RunSource interface {
	LatestRun(ctx context.Context) (storage.Run, error)
	ListRuns(ctx context.Context, limit int) ([]storage.Run, error)
}

// Refresher executes a new pipeline run. Implemented by pipeline.Pipeline.
type Refresher interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

type Server struct {
	http.Server
	runs      RunSource
	refresher Refresher
}

// NewServer builds the API server. metricsHandler may be nil; refresher may
// be nil, in which case POST /api/refresh responds 503.
func NewServer(addr string, runs RunSource, refresher Refresher, metricsHandler http.Handler) *Server {
	s := &Server{
		runs:      runs,
		refresher: refresher,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/healthz", s.handleHealth)
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	s.Server = http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// handleDashboard serves the latest persisted summary payload verbatim.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	run, err := s.runs.LatestRun(ctx)
	if errors.Is(err, storage.ErrNoRuns) {
		http.Error(w, "no summary available yet", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read latest run", "error", err)
		http.Error(w, "failed to read latest run", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(run.Payload)
}

// handleRuns lists recent run metadata without payloads.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()

	runs, err := s.runs.ListRuns(ctx, 20)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list runs", "error", err)
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}

	type runView struct {
		ID           int64     `json:"id"`
		CreatedAt    time.Time `json:"created_at"`
		WindowStart  string    `json:"window_start"`
		WindowEnd    string    `json:"window_end"`
		FactRows     int       `json:"fact_rows"`
		TotalOrders  int       `json:"total_orders"`
		TotalRevenue string    `json:"total_revenue"`
	}
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView{
			ID:           run.ID,
			CreatedAt:    run.CreatedAt,
			WindowStart:  run.WindowStart,
			WindowEnd:    run.WindowEnd,
			FactRows:     run.FactRows,
			TotalOrders:  run.TotalOrders,
			TotalRevenue: core.Money{Centavos: run.TotalRevenueCentavos}.String(),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// handleRefresh triggers a full pipeline run and reports its outcome.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.refresher == nil {
		http.Error(w, "refresh not available", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	result, err := s.refresher.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Pipeline refresh failed", "error", err)
		http.Error(w, "pipeline run failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":      result.RunID,
		"fact_rows":   result.Summary.Metadata.FactRows,
		"duration_ms": result.Duration.Milliseconds(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
