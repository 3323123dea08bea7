// Package engine runs live Mesa Técnica sessions: one Session per
// in-progress game, applying operator actions to the shared game
// document through the store's atomic-increment contract and keeping
// the play-by-play current. A Manager owns the sessions and hands them
// out to the API and admin layers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

// PendingSub is the armed substitution marker: the bench player chosen
// to come in, waiting for the operator to pick who goes out.
type PendingSub struct {
	Team     game.Side   `json:"team"`
	Incoming game.Player `json:"incoming"`
}

// Session is the live state of one game at this station. All
// operations lock the session; persisted counter writes are atomic
// increments so concurrent stations compose rather than clobber.
type Session struct {
	mu sync.Mutex

	st     store.Store
	rules  game.Rules
	tick   time.Duration
	logger *slog.Logger

	g       *game.Game
	rosters map[game.Side]*game.Roster
	stats   map[string]*game.PlayerStats // playerID -> ledger row
	side    map[string]game.Side         // playerID -> team
	pending *PendingSub

	clock *clockRunner
}

// loadSession materializes a session from the persisted game document:
// the rosters are re-derived from the stored lineup submissions and
// the ledger rows are loaded so ejection flags survive a reload.
func loadSession(ctx context.Context, st store.Store, id string, rules game.Rules, tick time.Duration, logger *slog.Logger) (*Session, error) {
	g, err := st.Game(ctx, id)
	if err != nil {
		return nil, err
	}

	s := &Session{
		st:     st,
		rules:  rules,
		tick:   tick,
		logger: logger.With("game", id),
		g:      g,
	}
	s.materialize()

	rows, err := st.GameStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load ledger for game %s: %w", id, err)
	}
	for i := range rows {
		row := rows[i]
		s.stats[row.PlayerID] = &row
	}
	return s, nil
}

// materialize rebuilds rosters and the player-side index from the
// lineup submissions. Called at load and after a remote re-sync.
func (s *Session) materialize() {
	s.rosters = map[game.Side]*game.Roster{}
	s.side = map[string]game.Side{}
	s.stats = map[string]*game.PlayerStats{}
	for _, side := range []game.Side{game.SideLocal, game.SideVisiting} {
		r := game.Resolve(s.g.Team(side).Lineup)
		s.rosters[side] = &r
		for _, p := range r.OnCourt {
			s.side[p.ID] = side
		}
		for _, p := range r.Bench {
			s.side[p.ID] = side
		}
	}
}

// Snapshot is a read-only view of the session for the console.
type Snapshot struct {
	Game    game.Game                 `json:"game"`
	Rosters map[game.Side]game.Roster `json:"rosters"`
	Pending *PendingSub               `json:"pendingSubstitution,omitempty"`
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Game: *s.g, Rosters: map[game.Side]game.Roster{}}
	snap.Game.Log = append([]game.LogEntry(nil), s.g.Log...)
	for side, r := range s.rosters {
		cp := game.Roster{
			OnCourt:   append([]game.Player(nil), r.OnCourt...),
			Bench:     append([]game.Player(nil), r.Bench...),
			CaptainID: r.CaptainID,
		}
		snap.Rosters[side] = cp
	}
	if s.pending != nil {
		p := *s.pending
		snap.Pending = &p
	}
	return snap
}

// BoxScore is the stat ledger rendered per bench.
type BoxScore struct {
	Local    []game.PlayerStats `json:"local"`
	Visiting []game.PlayerStats `json:"visiting"`
}

// BoxScore returns the persisted ledger rows grouped by side. Rows are
// assigned through the roster index; a row whose player left the
// submission falls back to the denormalized team name.
func (s *Session) BoxScore(ctx context.Context) (BoxScore, error) {
	s.mu.Lock()
	id := s.g.ID
	s.mu.Unlock()

	rows, err := s.st.GameStats(ctx, id)
	if err != nil {
		return BoxScore{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var b BoxScore
	for _, row := range rows {
		if s.sideOfLocked(row) == game.SideLocal {
			b.Local = append(b.Local, row)
		} else {
			b.Visiting = append(b.Visiting, row)
		}
	}
	return b, nil
}

// sideOfLocked resolves which bench a ledger row belongs to. Caller
// holds s.mu.
func (s *Session) sideOfLocked(row game.PlayerStats) game.Side {
	if side, ok := s.side[row.PlayerID]; ok {
		return side
	}
	if row.TeamName == s.g.Local.Name {
		return game.SideLocal
	}
	return game.SideVisiting
}

// Refresh replaces local state with the persisted document. Called by
// the listener when another station writes the game. The pending
// substitution marker is station-local UI state and survives; the
// clock runner stops if the remote copy says the clock is paused.
// Partitions only re-derive when the stored lineup submission itself
// changed: substitutions live in the session, and the station's own
// notify echoes back through the listener moments after every write.
func (s *Session) Refresh(ctx context.Context) error {
	g, err := s.st.Game(ctx, s.g.ID)
	if err != nil {
		return err
	}
	rows, err := s.st.GameStats(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("reload ledger for game %s: %w", g.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sameLineups := s.g.Local.Lineup.Equal(g.Local.Lineup) &&
		s.g.Visiting.Lineup.Equal(g.Visiting.Lineup)
	s.g = g
	if sameLineups {
		s.stats = map[string]*game.PlayerStats{}
	} else {
		s.materialize()
	}
	for i := range rows {
		row := rows[i]
		s.stats[row.PlayerID] = &row
	}
	if !s.g.Running {
		s.stopRunnerLocked()
	}
	return nil
}

// --------------------------------------------------------------------------
// Internal helpers — all called with s.mu held
// --------------------------------------------------------------------------

// finishedLocked rejects mutation of a closed game.
func (s *Session) finishedLocked() error {
	if s.g.Status == game.StatusFinished {
		return game.ErrAlreadyFinished
	}
	return nil
}

// playerOn returns the roster entry for a player on the given side.
func (s *Session) playerOn(side game.Side, playerID string) (game.Player, error) {
	r, ok := s.rosters[side]
	if !ok {
		return game.Player{}, fmt.Errorf("engine: no roster for side %q", side)
	}
	p, ok := r.Find(playerID)
	if !ok {
		return game.Player{}, game.ErrWrongTeam
	}
	return p, nil
}

// row returns the ledger row for a player, creating the in-memory row
// on first touch. Rows are persisted lazily through merge deltas.
func (s *Session) row(side game.Side, p game.Player) *game.PlayerStats {
	if row, ok := s.stats[p.ID]; ok {
		return row
	}
	row := &game.PlayerStats{
		GameID:   s.g.ID,
		PlayerID: p.ID,
		Name:     p.Name,
		Number:   p.Number,
		TeamName: s.g.Team(side).Name,
		Date:     s.g.StartsAt,
	}
	s.stats[p.ID] = row
	return row
}

// delta builds a single-event ledger delta carrying the denormalized
// player fields every merge refreshes.
func (s *Session) delta(side game.Side, p game.Player) game.PlayerStats {
	return game.PlayerStats{
		GameID:   s.g.ID,
		PlayerID: p.ID,
		Name:     p.Name,
		Number:   p.Number,
		TeamName: s.g.Team(side).Name,
		Date:     s.g.StartsAt,
	}
}

// appendLog prepends an entry locally and persists the capped list.
// Log loss is accepted over blocking play: a persistence failure here
// is logged and swallowed, the counters the entry annotates are
// already durable.
func (s *Session) appendLog(ctx context.Context, entry game.LogEntry) {
	s.g.Log = game.PrependLog(s.g.Log, entry, s.rules.LogCap)
	if err := s.st.SetLog(ctx, s.g.ID, s.g.Log); err != nil {
		s.logger.Warn("play log write failed", "error", err)
	}
}

// notify fans out a change signal for other stations. Best effort.
func (s *Session) notify(ctx context.Context, kind string) {
	if err := s.st.NotifyGameUpdated(ctx, s.g.ID, kind); err != nil {
		s.logger.Warn("notify failed", "kind", kind, "error", err)
	}
}

// playerLabel renders a player for the play-by-play.
func playerLabel(p game.Player) string {
	return fmt.Sprintf("#%d %s", p.Number, p.Name)
}
