package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
)

// Memory is an in-memory Store. It backs the engine and handler tests
// and doubles as a reference implementation of the increment/merge
// contracts.
type Memory struct {
	mu        sync.Mutex
	games     map[string]*game.Game
	ledger    map[string]map[string]*game.PlayerStats // gameID -> playerID -> row
	standings map[string]*game.StandingsDelta         // teamID -> accumulated

	notifications []Notification

	// FailNext, when set, makes the next mutating call return the
	// error and clears itself. Lets tests exercise the persistence-
	// failure paths without a broken connection.
	FailNext error
}

// Notification records one NotifyGameUpdated call.
type Notification struct {
	GameID string
	Kind   string
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		games:     make(map[string]*game.Game),
		ledger:    make(map[string]map[string]*game.PlayerStats),
		standings: make(map[string]*game.StandingsDelta),
	}
}

// Put seeds a game, replacing any existing copy.
func (m *Memory) Put(g *game.Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.games[g.ID] = &cp
}

func (m *Memory) failNext() error {
	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return err
	}
	return nil
}

func (m *Memory) Game(ctx context.Context, id string) (*game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	cp.Log = append([]game.LogEntry(nil), g.Log...)
	return &cp, nil
}

func (m *Memory) ListByStatus(ctx context.Context, statuses ...game.Status) ([]game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []game.Game
	for _, g := range m.games {
		if len(statuses) == 0 {
			out = append(out, *g)
			continue
		}
		for _, s := range statuses {
			if g.Status == s {
				out = append(out, *g)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) IncrementTeam(ctx context.Context, gameID string, side game.Side, field TeamField, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext(); err != nil {
		return err
	}
	g, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	t := g.Team(side)
	switch field {
	case FieldScore:
		t.Score += delta
	case FieldFouls:
		t.Fouls += delta
	case FieldTimeouts:
		t.Timeouts += delta
	default:
		return fmt.Errorf("store: unknown team field %q", field)
	}
	return nil
}

func (m *Memory) SetFields(ctx context.Context, gameID string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext(); err != nil {
		return err
	}
	g, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	for f, v := range fields {
		switch f {
		case FieldStatus:
			g.Status = v.(game.Status)
		case FieldPeriod:
			g.Period = v.(int)
		case FieldClock:
			g.Clock = v.(int)
		case FieldRunning:
			g.Running = v.(bool)
		case FieldLocalScore:
			g.Local.Score = v.(int)
		case FieldVisitingScore:
			g.Visiting.Score = v.(int)
		case FieldLocalFouls:
			g.Local.Fouls = v.(int)
		case FieldVisitingFouls:
			g.Visiting.Fouls = v.(int)
		case FieldLocalTimeouts:
			g.Local.Timeouts = v.(int)
		case FieldVisitingTimeouts:
			g.Visiting.Timeouts = v.(int)
		case FieldLocalStaff:
			g.LocalStaff = v.(game.Staff)
		case FieldVisitingStaff:
			g.VisitingStaff = v.(game.Staff)
		default:
			return fmt.Errorf("store: unknown field %q", f)
		}
	}
	return nil
}

func (m *Memory) SetLog(ctx context.Context, gameID string, entries []game.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext(); err != nil {
		return err
	}
	g, ok := m.games[gameID]
	if !ok {
		return ErrNotFound
	}
	g.Log = append([]game.LogEntry(nil), entries...)
	return nil
}

func (m *Memory) MergeStats(ctx context.Context, delta game.PlayerStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext(); err != nil {
		return err
	}
	rows, ok := m.ledger[delta.GameID]
	if !ok {
		rows = make(map[string]*game.PlayerStats)
		m.ledger[delta.GameID] = rows
	}
	row, ok := rows[delta.PlayerID]
	if !ok {
		cp := delta
		rows[delta.PlayerID] = &cp
		return nil
	}

	row.Name = delta.Name
	row.Number = delta.Number
	row.TeamName = delta.TeamName
	row.Points += delta.Points
	row.Rebounds += delta.Rebounds
	row.Assists += delta.Assists
	row.Steals += delta.Steals
	row.Blocks += delta.Blocks
	row.PersonalFouls += delta.PersonalFouls
	row.TechnicalFouls += delta.TechnicalFouls
	row.UnsportsmanlikeFouls += delta.UnsportsmanlikeFouls
	row.DisqualifyingFouls += delta.DisqualifyingFouls
	row.ThreesMade += delta.ThreesMade
	row.Ejected = row.Ejected || delta.Ejected
	if !delta.Date.IsZero() {
		row.Date = delta.Date
	}
	return nil
}

func (m *Memory) GameStats(ctx context.Context, gameID string) ([]game.PlayerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []game.PlayerStats
	for _, row := range m.ledger[gameID] {
		out = append(out, *row)
	}
	return out, nil
}

func (m *Memory) DeleteGameStats(ctx context.Context, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext(); err != nil {
		return err
	}
	delete(m.ledger, gameID)
	return nil
}

func (m *Memory) ApplyStandings(ctx context.Context, teamID string, delta game.StandingsDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext(); err != nil {
		return err
	}
	agg, ok := m.standings[teamID]
	if !ok {
		agg = &game.StandingsDelta{}
		m.standings[teamID] = agg
	}
	agg.Wins += delta.Wins
	agg.Losses += delta.Losses
	agg.TablePoints += delta.TablePoints
	agg.PointsFor += delta.PointsFor
	agg.PointsAgainst += delta.PointsAgainst
	return nil
}

func (m *Memory) NotifyGameUpdated(ctx context.Context, gameID, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, Notification{GameID: gameID, Kind: kind})
	return nil
}

// Standings exposes the accumulated aggregate for assertions.
func (m *Memory) Standings(teamID string) game.StandingsDelta {
	m.mu.Lock()
	defer m.mu.Unlock()
	if agg, ok := m.standings[teamID]; ok {
		return *agg
	}
	return game.StandingsDelta{}
}

// Notifications returns a copy of the recorded notifications.
func (m *Memory) Notifications() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.notifications...)
}
