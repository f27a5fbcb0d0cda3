package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/storage"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) error
}

// Server exposes the pipeline trigger and a health endpoint.
type Server struct {
	config config.ServerConfig
	runner Runner
	store  storage.Store
	server *http.Server
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, runner Runner, store storage.Store) *Server {
	s := &Server{
		config: cfg,
		runner: runner,
		store:  store,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleTrigger)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// A triggered run spends most of its time on upstream fetches, so the
		// response can take a while to start.
		WriteTimeout: 5 * time.Minute,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleTrigger runs the pipeline synchronously and reports only whether it
// completed or errored.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain")

	if err := s.runner.Run(r.Context()); err != nil {
		log.Printf("Pipeline run failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "An error occurred during the operation.")
		return
	}

	fmt.Fprint(w, "Operation completed.")
}

// handleHealth reports ledger-store connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := s.store.Ping(r.Context()); err != nil {
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
