package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// APIServer exposes agent status, health, and Prometheus metrics over HTTP.
type APIServer struct {
	server *http.Server
	agents []*Agent
	logger *zap.Logger
}

// NewAPIServer creates a server for the given agents.
func NewAPIServer(port int, agents []*Agent, logger *zap.Logger) *APIServer {
	s := &APIServer{
		agents: agents,
		logger: logger.Named("api-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

// statusHandler returns every agent's status keyed by agent id, or a single
// agent's status when ?agent=<id> is given.
func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("agent"); id != "" {
		for _, a := range s.agents {
			if a.ID() == id {
				s.writeJSON(w, a.Status())
				return
			}
		}
		http.Error(w, fmt.Sprintf("unknown agent %q", id), http.StatusNotFound)
		return
	}

	statuses := make(map[string]Status, len(s.agents))
	for _, a := range s.agents {
		statuses[a.ID()] = a.Status()
	}
	s.writeJSON(w, statuses)
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *APIServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write status response", zap.Error(err))
		http.Error(w, "Failed to encode status", http.StatusInternalServerError)
	}
}
