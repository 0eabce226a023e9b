package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meur/guideforge/internal/logger"
)

// Manager keeps the live sessions of a server in memory.
type Manager struct {
	validator Validator
	ttl       time.Duration
	log       *logger.Logger
	clock     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions share v and expire after ttl
// without activity.
func NewManager(v Validator, ttl time.Duration, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{
		validator: v,
		ttl:       ttl,
		log:       log,
		clock:     time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a session on the default guide.
func (m *Manager) Create() (*Session, error) {
	s, err := newSession(uuid.NewString(), m.validator, m.clock)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	m.log.Debug("session created", "session", s.id)
	return s, nil
}

// Get returns the session with id and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.touch()
	return s, nil
}

// Delete drops the session id.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the TTL and reports how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := m.clock().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.log.Info("expired sessions swept", "removed", n, "remaining", len(m.sessions))
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
