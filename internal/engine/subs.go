package engine

import (
	"context"
	"fmt"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
)

// BeginSubstitution arms the pending marker with a bench player to
// bring in. Ejected players cannot come in; everyone else on the bench
// is eligible regardless of foul count. An existing marker is
// replaced, the operator simply changed their mind.
func (s *Session) BeginSubstitution(side game.Side, playerID string) (*PendingSub, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("engine: invalid side %q", side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishedLocked(); err != nil {
		return nil, err
	}

	r := s.rosters[side]
	idx := r.BenchIndex(playerID)
	if idx < 0 {
		return nil, game.ErrPlayerNotOnBench
	}
	p := r.Bench[idx]
	if row, ok := s.stats[p.ID]; ok && row.Ejected {
		return nil, game.ErrPlayerEjected
	}

	s.pending = &PendingSub{Team: side, Incoming: p}
	cp := *s.pending
	return &cp, nil
}

// CancelSubstitution clears the pending marker.
func (s *Session) CancelSubstitution() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// CompleteSubstitution swaps the armed incoming player for an on-court
// player of the same team. Ejected players can go out this way, that
// is how an ejected starter leaves the floor. The partition is derived
// state: the swap lives in the session and the log, never as its own
// record.
func (s *Session) CompleteSubstitution(ctx context.Context, outgoingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishedLocked(); err != nil {
		return err
	}

	if s.pending == nil {
		return game.ErrNoPendingSub
	}
	side := s.pending.Team
	r := s.rosters[side]

	outIdx := r.OnCourtIndex(outgoingID)
	if outIdx < 0 {
		// Either not on court or on the other team; same answer.
		if _, onTeam := r.Find(outgoingID); !onTeam {
			return game.ErrWrongTeam
		}
		return game.ErrPlayerNotOnCourt
	}

	in := s.pending.Incoming
	out := r.OnCourt[outIdx]

	inIdx := r.BenchIndex(in.ID)
	if inIdx < 0 {
		// Marker went stale against a remote re-sync.
		s.pending = nil
		return game.ErrPlayerNotOnBench
	}

	r.OnCourt[outIdx] = in
	r.Bench[inIdx] = out
	s.pending = nil

	s.appendLog(ctx, s.g.NewLogEntry(side, game.LogSubstitution,
		fmt.Sprintf("Substitution: %s in, %s out", playerLabel(in), playerLabel(out))))
	s.notify(ctx, "substitution")
	return nil
}
