package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

// Manager owns the live sessions at this station, one per game,
// created lazily the first time an operator opens a game.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	st     store.Store
	rules  game.Rules
	tick   time.Duration
	logger *slog.Logger
}

// NewManager builds a session manager over the given store.
func NewManager(st store.Store, rules game.Rules, tick time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		st:       st,
		rules:    rules,
		tick:     tick,
		logger:   logger,
	}
}

// Session returns the live session for a game, loading it on first
// use: the game document is read, rosters derived from the stored
// lineups, and the ledger rows pulled in.
func (m *Manager) Session(ctx context.Context, gameID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[gameID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Load outside the manager lock; a slow store call must not block
	// unrelated sessions.
	s, err := loadSession(ctx, m.st, gameID, m.rules, m.tick, m.logger)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[gameID]; ok {
		return existing, nil
	}
	m.sessions[gameID] = s
	return s, nil
}

// Refresh re-syncs an already-loaded session from the store. Unknown
// ids are ignored: a notification for a game nobody here is running
// needs no work.
func (m *Manager) Refresh(ctx context.Context, gameID string) error {
	m.mu.Lock()
	s, ok := m.sessions[gameID]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Refresh(ctx)
}

// Matches lists games for the match picker.
func (m *Manager) Matches(ctx context.Context, statuses ...game.Status) ([]game.Game, error) {
	return m.st.ListByStatus(ctx, statuses...)
}

// Close stops every session's clock runner.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.mu.Lock()
		s.stopRunnerLocked()
		s.mu.Unlock()
	}
}
