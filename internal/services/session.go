package services

import (
	"context"
	"sync"
	"time"

	"healthmap/internal/geocoder"
	"healthmap/internal/interaction"
	"healthmap/internal/metrics"

	"go.uber.org/zap"
)

// Session is one client's interaction context: its own position resolver and
// selection state.
type Session struct {
	ID        string
	Position  *PositionResolver
	State     *interaction.State
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	s.lastSeen = t
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore keeps sessions in memory and drops those idle for longer than
// idleTTL. Sessions are not persisted across restarts.
type SessionStore struct {
	geocoder geocoder.Geocoder
	idleTTL  time.Duration
	metrics  *metrics.Collector
	logr     *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(g geocoder.Geocoder, idleTTL time.Duration, m *metrics.Collector, logr *zap.Logger) *SessionStore {
	if logr == nil {
		logr = zap.NewNop()
	}
	return &SessionStore{
		geocoder: g,
		idleTTL:  idleTTL,
		metrics:  m,
		logr:     logr,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating it on first use.
func (s *SessionStore) Get(id string) *Session {
	now := s.now()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{
			ID:        id,
			Position:  NewPositionResolver(s.geocoder, s.metrics, s.logr.With(zap.String("session", id))),
			State:     interaction.New(),
			CreatedAt: now,
		}
		s.sessions[id] = sess
	}
	n := len(s.sessions)
	s.mu.Unlock()

	sess.touch(now)
	if !ok {
		s.metrics.SetActiveSessions(n)
		s.logr.Debug("session created", zap.String("session", id))
	}
	return sess
}

// Lookup returns an existing session without creating one.
func (s *SessionStore) Lookup(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	n := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(n)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than idleTTL and returns how many
// were removed. A non-positive idleTTL disables expiry.
func (s *SessionStore) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		s.metrics.SetActiveSessions(n)
		s.logr.Info("expired idle sessions", zap.Int("removed", removed), zap.Int("active", n))
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
