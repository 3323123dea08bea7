package engine

import (
	"context"
	"fmt"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

// ScoreResult reports an applied basket.
type ScoreResult struct {
	TeamScore    int  `json:"teamScore"`
	PlayerPoints int  `json:"playerPoints"`
	AutoPaused   bool `json:"autoPaused"`
}

// Score credits a made basket to a player and their team. Rejected for
// ejected players. In crunch time (period >= 4 inside the configured
// window) a made basket auto-pauses the clock so the table can settle
// the situation before play resumes.
func (s *Session) Score(ctx context.Context, side game.Side, playerID string, points int) (ScoreResult, error) {
	if !side.Valid() {
		return ScoreResult{}, fmt.Errorf("engine: invalid side %q", side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishedLocked(); err != nil {
		return ScoreResult{}, err
	}

	p, err := s.playerOn(side, playerID)
	if err != nil {
		return ScoreResult{}, err
	}
	row := s.row(side, p)

	// Validate against a scratch copy so a rejected or failed call
	// leaves the row untouched.
	next := *row
	if err := game.ApplyScore(&next, points); err != nil {
		return ScoreResult{}, err
	}

	// Persist first: both writes are increments, so a retry after a
	// partial failure cannot clobber another station.
	if err := s.st.IncrementTeam(ctx, s.g.ID, side, store.FieldScore, points); err != nil {
		return ScoreResult{}, fmt.Errorf("persist team score: %w", err)
	}
	delta := s.delta(side, p)
	delta.Points = points
	if points == 3 {
		delta.ThreesMade = 1
	}
	if err := s.st.MergeStats(ctx, delta); err != nil {
		return ScoreResult{}, fmt.Errorf("persist player score: %w", err)
	}

	*row = next
	s.g.Team(side).Score += points

	s.appendLog(ctx, s.g.NewLogEntry(side, game.LogScore,
		fmt.Sprintf("+%d %s (%s)", points, playerLabel(p), s.g.Team(side).Name)))

	res := ScoreResult{
		TeamScore:    s.g.Team(side).Score,
		PlayerPoints: row.Points,
	}
	if s.g.Running && s.g.InCrunchTime(s.rules) {
		s.stopClockLocked(ctx)
		s.appendLog(ctx, s.g.NewLogEntry(game.SideSystem, game.LogSystem, "Clock stopped, final stretch"))
		res.AutoPaused = true
	}
	s.notify(ctx, "score")
	return res, nil
}

// Stat records a non-scoring stat (rebound, assist, steal, block) on
// the ledger. No score, foul, or clock side effects.
func (s *Session) Stat(ctx context.Context, side game.Side, playerID string, kind game.StatKind) error {
	if !side.Valid() {
		return fmt.Errorf("engine: invalid side %q", side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishedLocked(); err != nil {
		return err
	}

	p, err := s.playerOn(side, playerID)
	if err != nil {
		return err
	}
	row := s.row(side, p)

	next := *row
	if err := game.ApplyStat(&next, kind); err != nil {
		return err
	}

	delta := s.delta(side, p)
	switch kind {
	case game.StatRebound:
		delta.Rebounds = 1
	case game.StatAssist:
		delta.Assists = 1
	case game.StatSteal:
		delta.Steals = 1
	case game.StatBlock:
		delta.Blocks = 1
	}
	if err := s.st.MergeStats(ctx, delta); err != nil {
		return fmt.Errorf("persist stat: %w", err)
	}

	*row = next
	s.appendLog(ctx, s.g.NewLogEntry(side, game.LogStat,
		fmt.Sprintf("%s %s", statLabel(kind), playerLabel(p))))
	s.notify(ctx, "stat")
	return nil
}

func statLabel(kind game.StatKind) string {
	switch kind {
	case game.StatRebound:
		return "Rebound"
	case game.StatAssist:
		return "Assist"
	case game.StatSteal:
		return "Steal"
	case game.StatBlock:
		return "Block"
	}
	return string(kind)
}
