// Package api provides the HTTP surface for the PlanVoice task agent.
//
// It exposes session lifecycle endpoints and the per-turn entrypoint the
// UI/voice layer calls, and wires the store, enhancement, and agent modules
// together at startup.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/BenefitSphere/PlanVoice/internal/agent"
	"github.com/BenefitSphere/PlanVoice/internal/enhance"
	"github.com/BenefitSphere/PlanVoice/internal/models"
	"github.com/BenefitSphere/PlanVoice/internal/store"
	"github.com/BenefitSphere/PlanVoice/internal/task"
)

// DefaultAddr is the default API listen address.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	Addr     string
	Defaults task.Profile
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the API server listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithDefaultProfile sets the account profile applied to sessions that do
// not provide their own values.
func WithDefaultProfile(p task.Profile) Option {
	return func(o *Opts) {
		o.Defaults = p
	}
}

// Server holds the wired modules behind the HTTP handlers.
type Server struct {
	manager *agent.Manager
	store   store.Store
}

// NewServer wires a server from its modules.
func NewServer(manager *agent.Manager, st store.Store) *Server {
	return &Server{manager: manager, store: st}
}

// Run builds the store and session manager from the given options and
// serves the API until the listener fails.
func Run(storeOpts []store.Option, enhancer enhance.TextEnhancer, apiOpts ...Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to build store: %w", err)
	}
	defer st.Close()

	manager := agent.NewManager(cfg.Defaults, enhancer, st)
	srv := NewServer(manager, st)

	slog.Info("PlanVoice API running", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv.Routes())
}

// buildStore selects the backend from the configured DSN: PostgreSQL for
// connection strings, SQLite for file paths, in-memory when unset.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Debug("No store DSN configured, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		return store.NewPostgresStore(storeOpts...)
	}
	return store.NewSQLiteStore(storeOpts...)
}

// Routes builds the HTTP mux for the API surface.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleEndSession)
	mux.HandleFunc("POST /sessions/{id}/turns", s.handleTurn)
	mux.HandleFunc("GET /sessions/{id}/transcript", s.handleTranscript)
	mux.HandleFunc("GET /submissions", s.handleSubmissions)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode API response", "error", err)
	}
}
