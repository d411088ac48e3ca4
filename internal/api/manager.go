package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"scalpr/internal/game"
	"scalpr/internal/obs"
)

// GameSession bundles one live game with its event feed and watcher hub.
type GameSession struct {
	ID       string
	Game     *game.Session
	Feed     *feed
	Hub      *Hub
	lastSeen time.Time
}

// Manager owns every in-memory session. One shared ticker drives all
// sellout countdowns; idle sessions are evicted after the TTL.
type Manager struct {
	log *slog.Logger
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*GameSession
}

func NewManager(logger *slog.Logger, ttl time.Duration) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		log:      logger,
		ttl:      ttl,
		sessions: make(map[string]*GameSession),
	}
}

// Create starts a new game session and its hub goroutine.
func (m *Manager) Create() *GameSession {
	id := uuid.NewString()
	hub := newHub(m.log.With("session", id))
	f := newFeed(hub)
	gs := &GameSession{
		ID:       id,
		Game:     game.NewSession(m.log.With("session", id), f, time.Now().UnixNano()),
		Feed:     f,
		Hub:      hub,
		lastSeen: time.Now(),
	}
	go hub.run()

	m.mu.Lock()
	m.sessions[id] = gs
	n := len(m.sessions)
	m.mu.Unlock()

	obs.SetActiveSessions(n)
	m.log.Info("session created", "session", id, "active", n)
	return gs
}

// Get returns the session by id and refreshes its idle clock.
func (m *Manager) Get(id string) (*GameSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gs, ok := m.sessions[id]
	if ok {
		gs.lastSeen = time.Now()
	}
	return gs, ok
}

// Run drives every session's sellout countdown until ctx is done. tick is
// the countdown period, one second in production; tests pass something
// shorter.
func (m *Manager) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return
		case <-ticker.C:
			for _, gs := range m.snapshotSessions() {
				gs.Game.TickSellout()
			}
		case <-sweep.C:
			m.evictIdle()
		}
	}
}

func (m *Manager) snapshotSessions() []*GameSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*GameSession, 0, len(m.sessions))
	for _, gs := range m.sessions {
		out = append(out, gs)
	}
	return out
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	var evicted []*GameSession
	for id, gs := range m.sessions {
		if gs.lastSeen.Before(cutoff) {
			evicted = append(evicted, gs)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, gs := range evicted {
		gs.Hub.stop()
		m.log.Info("session evicted", "session", gs.ID)
	}
	if len(evicted) > 0 {
		obs.SetActiveSessions(n)
	}
}

func (m *Manager) shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*GameSession)
	m.mu.Unlock()
	for _, gs := range sessions {
		gs.Hub.stop()
	}
}
