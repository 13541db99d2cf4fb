// Package httpapi exposes the operator surface: health, metrics, the event
// feed with its suppression toggle, the region snapshot, the home-region
// setting, and the force-refresh control.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/vartalabs/varta-ingest/internal/domain"
	"github.com/vartalabs/varta-ingest/internal/sink"
	"github.com/vartalabs/varta-ingest/internal/store"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Refresher triggers one immediate status fetch outside the poll cadence.
type Refresher interface {
	ForceRefresh(ctx context.Context) error
}

// Server is the operator HTTP API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	state      *sink.State
	history    *store.HistoryStore
	settings   *store.SettingsStore
	refresher  Refresher
	ready      ReadinessChecker
}

// NewServer wires the routes and middleware.
func NewServer(addr string, allowedOrigins []string, state *sink.State,
	history *store.HistoryStore, settings *store.SettingsStore,
	refresher Refresher, ready ReadinessChecker, logger *slog.Logger,
) *Server {
	s := &Server{
		logger:    logger,
		state:     state,
		history:   history,
		settings:  settings,
		refresher: refresher,
		ready:     ready,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleClearHistory).Methods(http.MethodDelete)
	api.HandleFunc("/regions", s.handleRegions).Methods(http.MethodGet)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/settings/region", s.handleGetRegion).Methods(http.MethodGet)
	api.HandleFunc("/settings/region", s.handleSetRegion).Methods(http.MethodPut)

	handler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
	}).Handler(r)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleHistory returns the event feed newest-first. Suppressible events are
// hidden unless include_suppressed=true.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	include := r.URL.Query().Get("include_suppressed") == "true"
	events := s.state.Events(include)
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// handleClearHistory truncates the durable log and the in-memory feed. This
// is the only deletion path.
func (s *Server) handleClearHistory(w http.ResponseWriter, _ *http.Request) {
	if err := s.history.Clear(); err != nil {
		s.logger.Error("history clear failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "clear failed"})
		return
	}
	s.state.Clear()
	s.logger.Info("history cleared")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"states":     s.state.Snapshot(),
		"highlights": s.state.Highlights(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.refresher.ForceRefresh(r.Context()); err != nil {
		s.logger.Error("force refresh failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (s *Server) handleGetRegion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"region": string(s.settings.Region())})
}

// handleSetRegion accepts a free-text region name, canonicalizes it, and
// persists the code. An empty name clears the setting; an unresolvable one is
// rejected.
func (s *Server) handleSetRegion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Region string `json:"region"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var code domain.RegionCode
	if body.Region != "" {
		var ok bool
		code, ok = domain.Resolve(body.Region)
		if !ok {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
				"error": "unknown region: " + body.Region,
			})
			return
		}
	}

	if err := s.settings.SetRegion(code); err != nil {
		s.logger.Error("settings write failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "settings write failed"})
		return
	}
	s.logger.Info("home region updated", "region", code)
	writeJSON(w, http.StatusOK, map[string]string{"region": string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
