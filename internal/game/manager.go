package game

import (
	"context"
	"sync"
	"time"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

// DefaultPlayer names sessions created without a player.
const DefaultPlayer = "guest"

// Manager holds the live sessions keyed by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	deps     Deps
	ttl      time.Duration
}

// NewManager creates a session manager. Nil collaborators in deps get in-memory defaults.
func NewManager(deps Deps, ttl time.Duration) *Manager {
	deps = deps.withDefaults()
	if ttl <= 0 {
		deps.Logger.Warn().Dur("ttl", ttl).Dur("default", DefaultSessionTTL).Msg("invalid session ttl, using default")
		ttl = DefaultSessionTTL
	}
	return &Manager{
		sessions: make(map[string]*Session),
		deps:     deps,
		ttl:      ttl,
	}
}

// Deps returns the shared collaborators.
func (m *Manager) Deps() Deps {
	return m.deps
}

// Create starts a session for player. An empty player becomes DefaultPlayer.
func (m *Manager) Create(ctx context.Context, player string) (*Session, error) {
	if player == "" {
		player = DefaultPlayer
	}
	s, err := NewSession(ctx, player, m.deps)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.deps.Logger.Info().Str("session", s.ID()).Str("player", player).Msg("session created")
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// CleanupIdle removes sessions idle for longer than the TTL and returns how many were removed.
func (m *Manager) CleanupIdle() int {
	now := m.deps.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
