package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/CrudyLame/convlens/internal/processor"
)

// ProgressSource reports the state of the current batch run.
type ProgressSource interface {
	Snapshot() processor.RunState
}

// AnalysisCounter reports how many analyzed conversations are persisted.
// Nil when the service runs without a database.
type AnalysisCounter interface {
	CountAnalyzed(ctx context.Context) (int, error)
}

type Server struct {
	router    *chi.Mux
	port      int
	progress  ProgressSource
	analytics AnalysisCounter
}

func NewServer(port int, progress ProgressSource, analytics AnalysisCounter) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		progress:  progress,
		analytics: analytics,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/convlens/status", s.status)
	router.Get("/api/v1/convlens/progress", s.batchProgress)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"service": "convlens",
		"status":  "ok",
	}
	if s.analytics != nil {
		n, err := s.analytics.CountAnalyzed(r.Context())
		if err != nil {
			slog.Warn("failed to count analyzed conversations", "error", err)
		} else {
			payload["analyzed_conversations"] = n
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) batchProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.progress == nil {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"state": "idle"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(s.progress.Snapshot())
}
