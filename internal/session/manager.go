// Package session tracks engine sessions for the server. Each session
// owns one engine instance; the engine itself is single-conversation, so
// runs within a session are serialized behind the session's mutex.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	talkengine "github.com/radiantlogicinc/TalkEngine"
	"github.com/radiantlogicinc/TalkEngine/command"
	"github.com/radiantlogicinc/TalkEngine/internal/config"
	"github.com/radiantlogicinc/TalkEngine/internal/metrics"
	"github.com/radiantlogicinc/TalkEngine/nlu"
)

var (
	// ErrSessionLimit is returned by Create when the session cap is reached.
	ErrSessionLimit = errors.New("max sessions limit reached")
	// ErrSessionNotFound is returned when no session has the given ID.
	ErrSessionNotFound = errors.New("session not found")
)

// Session binds an engine to an ID and serializes access to it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	engine   *talkengine.Engine
	lastUsed time.Time
}

// Run forwards one query to the session's engine. Concurrent callers
// queue on the session mutex; the engine never sees overlapping runs.
func (s *Session) Run(ctx context.Context, query string, excluded ...string) (*talkengine.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return s.engine.Run(ctx, query, excluded...)
}

// Reset reinitializes the session's engine with fresh metadata.
func (s *Session) Reset(meta command.Metadata, opts ...talkengine.Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return s.engine.Reset(meta, opts...)
}

// LastUsed reports when the session last served a query. It blocks while
// a run is in flight, which by definition is not an idle session.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Manager creates, looks up and expires sessions.
type Manager struct {
	cfg      *config.Config
	meta     command.Metadata
	logger   *zap.Logger
	sessions map[string]*Session
	mu       sync.RWMutex

	stopSweeper func()
	stopOnce    sync.Once
}

// NewManager creates a session manager over the given command metadata.
// It starts a background sweeper that removes idle sessions; call Close
// to stop it.
func NewManager(cfg *config.Config, meta command.Metadata, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		cfg:      cfg,
		meta:     meta,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
	m.stopSweeper = m.startSweeper()
	return m
}

// Close stops the idle sweeper. Safe to call more than once.
func (m *Manager) Close() {
	m.stopOnce.Do(m.stopSweeper)
}

// Create builds a new engine from the server config merged with the
// given per-session overrides and registers it under a fresh ID.
func (m *Manager) Create(o *config.EngineOverrides) (*Session, error) {
	es := config.MergeEngine(m.cfg, o)

	ns := nlu.Settings{
		APIKey:  m.cfg.Strategies.APIKey,
		Model:   m.cfg.Strategies.Model,
		BaseURL: m.cfg.Strategies.BaseURL,
	}

	classifier, err := nlu.NewClassifier(es.Classification, ns)
	if err != nil {
		return nil, fmt.Errorf("building classifier: %w", err)
	}
	extractor, err := nlu.NewExtractor(es.Extraction, ns)
	if err != nil {
		return nil, fmt.Errorf("building extractor: %w", err)
	}
	generator, err := nlu.NewGenerator(es.Generation, ns)
	if err != nil {
		return nil, fmt.Errorf("building generator: %w", err)
	}

	eng, err := talkengine.New(m.meta,
		talkengine.WithClassifier(classifier),
		talkengine.WithExtractor(extractor),
		talkengine.WithGenerator(generator),
		talkengine.WithClarifyThreshold(es.ClarifyThreshold),
		talkengine.WithFeedbackPrompts(es.FeedbackPrompts),
		talkengine.WithLogger(m.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Check concurrency limit
	if max := m.cfg.Sessions.MaxSessions; max > 0 && len(m.sessions) >= max {
		return nil, fmt.Errorf("%w (%d)", ErrSessionLimit, max)
	}

	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		engine:    eng,
		lastUsed:  now,
	}
	m.sessions[sess.ID] = sess

	metrics.SessionCreated()
	m.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("classification", es.Classification),
		zap.String("extraction", es.Extraction),
		zap.String("generation", es.Generation))
	return sess, nil
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Remove deletes a session. Any run already in flight completes against
// the removed engine.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)

	metrics.SessionClosed()
	m.logger.Info("session closed", zap.String("session_id", id))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than maxIdle and returns how
// many it removed. A maxIdle of 0 disables expiry.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	now := time.Now()

	// Snapshot first: LastUsed takes each session's own lock, and a
	// session busy in a run would otherwise stall every manager call.
	m.mu.RLock()
	candidates := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		candidates = append(candidates, sess)
	}
	m.mu.RUnlock()

	var stale []string
	for _, sess := range candidates {
		if now.Sub(sess.LastUsed()) > maxIdle {
			stale = append(stale, sess.ID)
		}
	}
	if len(stale) == 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for _, id := range stale {
		if _, ok := m.sessions[id]; !ok {
			continue
		}
		delete(m.sessions, id)
		metrics.SessionExpired()
		m.logger.Info("session expired", zap.String("session_id", id))
		removed++
	}
	return removed
}

// startSweeper starts a goroutine that periodically removes idle
// sessions. Returns a function to stop it.
func (m *Manager) startSweeper() func() {
	interval := time.Duration(m.cfg.Sessions.SweepSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	maxIdle := time.Duration(m.cfg.Sessions.IdleTimeoutMinutes) * time.Minute

	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				m.Sweep(maxIdle)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
