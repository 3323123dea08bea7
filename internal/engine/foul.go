package engine

import (
	"context"
	"fmt"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

// FoulResult reports an applied foul.
type FoulResult struct {
	PlayerTotal int                 `json:"playerTotal"`
	TeamFouls   int                 `json:"teamFouls"`
	Ejected     bool                `json:"ejected"`
	Reason      game.EjectionReason `json:"reason,omitempty"`
}

// Foul charges a foul to a player: subtype counter and team-foul
// counter go up, the clock stops, ejection thresholds are evaluated.
// Rejected for already-ejected players with no state change.
func (s *Session) Foul(ctx context.Context, side game.Side, playerID string, kind game.FoulKind) (FoulResult, error) {
	if !side.Valid() {
		return FoulResult{}, fmt.Errorf("engine: invalid side %q", side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishedLocked(); err != nil {
		return FoulResult{}, err
	}

	p, err := s.playerOn(side, playerID)
	if err != nil {
		return FoulResult{}, err
	}
	row := s.row(side, p)

	next := *row
	out, err := game.ApplyFoul(&next, kind)
	if err != nil {
		return FoulResult{}, err
	}

	if err := s.st.IncrementTeam(ctx, s.g.ID, side, store.FieldFouls, 1); err != nil {
		return FoulResult{}, fmt.Errorf("persist team foul: %w", err)
	}
	delta := s.delta(side, p)
	switch kind {
	case game.FoulPersonal:
		delta.PersonalFouls = 1
	case game.FoulTechnical:
		delta.TechnicalFouls = 1
	case game.FoulUnsportsmanlike:
		delta.UnsportsmanlikeFouls = 1
	case game.FoulDisqualifying:
		delta.DisqualifyingFouls = 1
	}
	delta.Ejected = out.Ejected
	if err := s.st.MergeStats(ctx, delta); err != nil {
		return FoulResult{}, fmt.Errorf("persist player foul: %w", err)
	}

	*row = next
	s.g.Team(side).Fouls++

	// Every foul stops play.
	s.stopClockLocked(ctx)

	text := fmt.Sprintf("Foul (%s) %s, total %d", kind.Glyph(), playerLabel(p), out.Total)
	if out.Ejected {
		text = fmt.Sprintf("Foul (%s) %s, EJECTED: %s", kind.Glyph(), playerLabel(p), out.Reason)
	}
	s.appendLog(ctx, s.g.NewLogEntry(side, game.LogFoul, text))
	s.notify(ctx, "foul")

	return FoulResult{
		PlayerTotal: row.TotalFouls(),
		TeamFouls:   s.g.Team(side).Fouls,
		Ejected:     out.Ejected,
		Reason:      out.Reason,
	}, nil
}

// StaffFoul charges a technical or disqualifying foul to the bench
// staff. A no-op when no head coach is on record. Does not touch the
// team-foul counter; always stops the clock.
func (s *Session) StaffFoul(ctx context.Context, side game.Side, kind game.FoulKind) (FoulResult, error) {
	if !side.Valid() {
		return FoulResult{}, fmt.Errorf("engine: invalid side %q", side)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishedLocked(); err != nil {
		return FoulResult{}, err
	}

	st := s.g.StaffFor(side)
	next := *st
	out, err := game.ApplyStaffFoul(&next, kind)
	if err != nil {
		return FoulResult{}, err
	}

	field := store.FieldLocalStaff
	if side == game.SideVisiting {
		field = store.FieldVisitingStaff
	}
	if err := s.st.SetFields(ctx, s.g.ID, store.Fields{field: next}); err != nil {
		return FoulResult{}, fmt.Errorf("persist staff foul: %w", err)
	}

	*st = next
	s.stopClockLocked(ctx)

	text := fmt.Sprintf("Bench technical (%s), coach %s", kind.Glyph(), st.Name)
	if out.Ejected {
		text = fmt.Sprintf("Coach %s EJECTED: %s", st.Name, out.Reason)
	}
	s.appendLog(ctx, s.g.NewLogEntry(side, game.LogFoul, text))
	s.notify(ctx, "foul")

	return FoulResult{
		PlayerTotal: st.TechnicalFouls,
		TeamFouls:   s.g.Team(side).Fouls,
		Ejected:     out.Ejected,
		Reason:      out.Reason,
	}, nil
}
