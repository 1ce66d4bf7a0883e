// Package server exposes the engine over HTTP: session lifecycle routes,
// a run endpoint, a WebSocket stream, health and metrics.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	talkengine "github.com/radiantlogicinc/TalkEngine"
	"github.com/radiantlogicinc/TalkEngine/command"
	"github.com/radiantlogicinc/TalkEngine/internal/config"
	"github.com/radiantlogicinc/TalkEngine/internal/metrics"
	"github.com/radiantlogicinc/TalkEngine/internal/session"
	"github.com/radiantlogicinc/TalkEngine/internal/translog"
)

// HealthResponse represents the health check response structure.
type HealthResponse struct {
	Status string         `json:"status"`
	Checks map[string]any `json:"checks"`
}

// CreateSessionResponse is returned by the session creation route.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// RunRequest is the body of a run call.
type RunRequest struct {
	Query    string   `json:"query"`
	Excluded []string `json:"excluded,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP server for TalkEngine.
type Server struct {
	cfg          *config.Config
	mux          *http.ServeMux
	httpServer   *httpServer
	httpServerMu sync.RWMutex  // protects httpServer pointer
	ready        chan struct{} // closed when server is ready to accept connections
	apiReady     bool

	sessions   *session.Manager
	limiter    *rate.Limiter
	transcript *translog.Writer
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// New creates a Server and its session manager over the given command
// metadata.
func New(cfg *config.Config, meta command.Metadata, logger *zap.Logger) *Server {
	return NewWithSessions(cfg, session.NewManager(cfg, meta, logger), logger)
}

// NewWithSessions creates a Server over an existing session manager.
// This allows dependency injection for testing; the caller keeps
// ownership of the manager.
func NewWithSessions(cfg *config.Config, sessions *session.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	// A rate of 0 disables limiting
	limit := rate.Limit(cfg.Server.RateLimit)
	if cfg.Server.RateLimit <= 0 {
		limit = rate.Inf
	}

	s := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		ready:    make(chan struct{}),
		apiReady: apiStrategiesReady(cfg),
		sessions: sessions,
		limiter:  rate.NewLimiter(limit, cfg.Server.RateBurst),
		logger:   logger,
	}
	if cfg.Logging.Dir != "" {
		s.transcript = translog.NewWriter(cfg.Logging.Dir)
	}
	s.routes()
	return s
}

// Ready returns a channel that is closed when the server is ready to accept connections.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Sessions returns the server's session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// apiStrategiesReady reports whether the configured strategies can run:
// network-backed strategies need an API key.
func apiStrategiesReady(cfg *config.Config) bool {
	needsKey := cfg.Strategies.Classification == "api" ||
		cfg.Strategies.Extraction == "api" ||
		cfg.Strategies.Generation == "api"
	return !needsKey || cfg.Strategies.APIKey != ""
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// routes sets up the HTTP routes.
func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /metrics", s.handleMetrics)
	s.mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	s.mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("POST /v1/sessions/{id}/run", s.handleRun)
	s.mux.HandleFunc("GET /v1/sessions/{id}/stream", s.handleStream)
}

// handleHealth responds with server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]any{
		"strategies":      s.apiReady,
		"active_sessions": s.sessions.Len(),
	}

	status := "ok"
	if !s.apiReady {
		status = "degraded"
	}

	health := HealthResponse{
		Status: status,
		Checks: checks,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleMetrics responds with current operational metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := metrics.Get()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

// handleCreateSession creates a new engine session. The optional body
// carries per-session engine overrides.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var overrides *config.EngineOverrides
	var o config.EngineOverrides
	err := json.NewDecoder(r.Body).Decode(&o)
	switch {
	case errors.Is(err, io.EOF):
		// Empty body: server defaults
	case err != nil:
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	default:
		overrides = &o
	}

	sess, err := s.sessions.Create(overrides)
	if err != nil {
		if errors.Is(err, session.ErrSessionLimit) {
			s.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateSessionResponse{SessionID: sess.ID})
}

// handleDeleteSession removes a session.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Remove(r.PathValue("id")); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRun runs one query through a session's engine and returns the
// engine result.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		metrics.RateLimited()
		s.writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id := r.PathValue("id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "session not found: "+id)
		return
	}

	res, err := sess.Run(r.Context(), req.Query, req.Excluded...)
	if err != nil {
		s.logger.Error("running query", zap.String("session_id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.appendTranscript(id, req.Query, res)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// appendTranscript records a completed run. Transcript failures are
// logged, never surfaced to the client.
func (s *Server) appendTranscript(sessionID, query string, res *talkengine.Result) {
	if s.transcript == nil {
		return
	}
	rec := translog.Record{
		Time:       time.Now(),
		SessionID:  sessionID,
		Query:      query,
		Command:    res.Command,
		Response:   res.Response,
		Hint:       string(res.Hint),
		Parameters: res.Parameters,
		Log:        res.Log,
	}
	if _, err := s.transcript.Append(rec); err != nil {
		s.logger.Warn("appending transcript", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
