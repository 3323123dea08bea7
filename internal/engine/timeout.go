package engine

import (
	"context"
	"fmt"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

// CallTimeout spends one of a team's timeouts and stops the clock.
// Rejected with no state change when the budget is empty. Returns the
// remaining budget.
func (s *Session) CallTimeout(ctx context.Context, side game.Side) (int, error) {
	if !side.Valid() {
		return 0, fmt.Errorf("engine: invalid side %q", side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishedLocked(); err != nil {
		return 0, err
	}

	t := s.g.Team(side)
	if t.Timeouts <= 0 {
		return 0, game.ErrNoTimeoutsLeft
	}

	if err := s.st.IncrementTeam(ctx, s.g.ID, side, store.FieldTimeouts, -1); err != nil {
		return 0, fmt.Errorf("persist timeout: %w", err)
	}

	t.Timeouts--
	s.stopClockLocked(ctx)
	s.appendLog(ctx, s.g.NewLogEntry(side, game.LogTimeout,
		fmt.Sprintf("Timeout %s (%d left)", t.Name, t.Timeouts)))
	s.notify(ctx, "timeout")
	return t.Timeouts, nil
}
