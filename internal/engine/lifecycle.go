package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

// ErrTiedGame rejects a finalize attempt on a level score. Basketball
// does not end in a draw; the table advances to overtime instead.
var ErrTiedGame = errors.New("engine: tied game cannot be finalized")

// FinalResult reports a committed finalize.
type FinalResult struct {
	Winner        game.Side `json:"winner"`
	LocalScore    int       `json:"localScore"`
	VisitingScore int       `json:"visitingScore"`
}

// Finalize closes the game: winner and loser standings deltas are
// committed via atomic increments and status becomes finished. The
// status guard makes an accidental second invocation a rejected no-op,
// so the standings are written exactly once per game.
func (s *Session) Finalize(ctx context.Context) (FinalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.g.Status == game.StatusFinished {
		return FinalResult{}, game.ErrAlreadyFinished
	}
	if s.g.Local.Score == s.g.Visiting.Score {
		return FinalResult{}, ErrTiedGame
	}

	winner, loser := &s.g.Local, &s.g.Visiting
	winSide := game.SideLocal
	if s.g.Visiting.Score > s.g.Local.Score {
		winner, loser = &s.g.Visiting, &s.g.Local
		winSide = game.SideVisiting
	}

	if err := s.st.ApplyStandings(ctx, winner.ID, game.StandingsDelta{
		Wins:          1,
		TablePoints:   2,
		PointsFor:     winner.Score,
		PointsAgainst: loser.Score,
	}); err != nil {
		return FinalResult{}, fmt.Errorf("commit winner standings: %w", err)
	}
	if err := s.st.ApplyStandings(ctx, loser.ID, game.StandingsDelta{
		Losses:        1,
		TablePoints:   1,
		PointsFor:     loser.Score,
		PointsAgainst: winner.Score,
	}); err != nil {
		return FinalResult{}, fmt.Errorf("commit loser standings: %w", err)
	}

	if err := s.st.SetFields(ctx, s.g.ID, store.Fields{
		store.FieldStatus:  game.StatusFinished,
		store.FieldRunning: false,
	}); err != nil {
		return FinalResult{}, fmt.Errorf("persist final status: %w", err)
	}

	s.stopRunnerLocked()
	s.g.Running = false
	s.g.Status = game.StatusFinished

	s.appendLog(ctx, s.g.NewLogEntry(game.SideSystem, game.LogSystem,
		fmt.Sprintf("Final: %s %d - %d %s", s.g.Local.Name, s.g.Local.Score, s.g.Visiting.Score, s.g.Visiting.Name)))
	s.notify(ctx, "finalize")

	return FinalResult{
		Winner:        winSide,
		LocalScore:    s.g.Local.Score,
		VisitingScore: s.g.Visiting.Score,
	}, nil
}

// Reset is the administrative override: scores, fouls, timeouts,
// period, log and staff all return to their scheduled-game values and
// the ledger rows are deleted. The lineup submissions stay, so the
// rosters re-derive on the next load.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.st.DeleteGameStats(ctx, s.g.ID); err != nil {
		return fmt.Errorf("delete ledger: %w", err)
	}

	if err := s.st.SetFields(ctx, s.g.ID, store.Fields{
		store.FieldStatus:           game.StatusScheduled,
		store.FieldPeriod:           1,
		store.FieldClock:            s.rules.PeriodLength,
		store.FieldRunning:          false,
		store.FieldLocalScore:       0,
		store.FieldVisitingScore:    0,
		store.FieldLocalFouls:       0,
		store.FieldVisitingFouls:    0,
		store.FieldLocalTimeouts:    s.rules.TimeoutsInitial,
		store.FieldVisitingTimeouts: s.rules.TimeoutsInitial,
		store.FieldLocalStaff:       game.Staff{Name: s.g.LocalStaff.Name},
		store.FieldVisitingStaff:    game.Staff{Name: s.g.VisitingStaff.Name},
	}); err != nil {
		return fmt.Errorf("persist reset: %w", err)
	}
	if err := s.st.SetLog(ctx, s.g.ID, nil); err != nil {
		s.logger.Warn("clear play log failed", "error", err)
	}

	s.stopRunnerLocked()
	s.g.Status = game.StatusScheduled
	s.g.Period = 1
	s.g.Clock = s.rules.PeriodLength
	s.g.Running = false
	s.g.Local.Score, s.g.Local.Fouls, s.g.Local.Timeouts = 0, 0, s.rules.TimeoutsInitial
	s.g.Visiting.Score, s.g.Visiting.Fouls, s.g.Visiting.Timeouts = 0, 0, s.rules.TimeoutsInitial
	s.g.LocalStaff = game.Staff{Name: s.g.LocalStaff.Name}
	s.g.VisitingStaff = game.Staff{Name: s.g.VisitingStaff.Name}
	s.g.Log = nil
	s.pending = nil
	s.materialize()

	s.logger.Info("game reset to scheduled")
	s.notify(ctx, "reset")
	return nil
}
