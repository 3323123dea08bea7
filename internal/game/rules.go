package game

import "errors"

// Rejected-action sentinels. These are no-op signals, not failures:
// the caller reports them to the operator and nothing was mutated.
var (
	ErrPlayerEjected    = errors.New("player is ejected")
	ErrStaffEjected     = errors.New("staff member is ejected")
	ErrNoStaffOnRecord  = errors.New("no coaching staff on record")
	ErrNoTimeoutsLeft   = errors.New("no timeouts left")
	ErrNoPendingSub     = errors.New("no pending substitution")
	ErrWrongTeam        = errors.New("player is not on the expected team")
	ErrPlayerNotOnCourt = errors.New("player is not on court")
	ErrPlayerNotOnBench = errors.New("player is not on the bench")
	ErrAlreadyFinished  = errors.New("game is already finished")
	ErrClockExpired     = errors.New("clock is at zero")
	ErrInvalidPoints    = errors.New("points must be 1, 2 or 3")
	ErrInvalidFoulKind  = errors.New("unknown foul kind")
	ErrInvalidStatKind  = errors.New("unknown stat kind")
	ErrStaffFoulKind    = errors.New("staff fouls are technical or disqualifying")
)

// Foul-out thresholds. These are FIBA rules, not tunables.
const (
	foulOutTotal           = 5
	foulOutTechnical       = 2
	foulOutUnsportsmanlike = 2
	staffOutTechnical      = 2
)

// EjectionReason names which threshold fired, for the play-by-play
// text. The ejection effect is identical regardless of reason.
type EjectionReason string

const (
	EjectedFifthFoul             EjectionReason = "fifth foul"
	EjectedSecondUnsportsmanlike EjectionReason = "second unsportsmanlike foul"
	EjectedSecondTechnical       EjectionReason = "second technical foul"
	EjectedDisqualifying         EjectionReason = "disqualifying foul"
)

// FoulOutcome reports the result of applying one foul.
type FoulOutcome struct {
	Total   int
	Ejected bool
	Reason  EjectionReason
}

// ApplyFoul increments the matching subtype counter on the ledger row
// and evaluates ejection. Rejected with ErrPlayerEjected when the row
// is already flagged; the row is untouched in that case.
//
// Ejection fires on a disqualifying foul immediately, otherwise when
// total ≥ 5, unsportsmanlike ≥ 2, or technical ≥ 2 after the
// increment. The reason reflects that priority order.
func ApplyFoul(s *PlayerStats, kind FoulKind) (FoulOutcome, error) {
	if !kind.Valid() {
		return FoulOutcome{}, ErrInvalidFoulKind
	}
	if s.Ejected {
		return FoulOutcome{}, ErrPlayerEjected
	}

	switch kind {
	case FoulPersonal:
		s.PersonalFouls++
	case FoulTechnical:
		s.TechnicalFouls++
	case FoulUnsportsmanlike:
		s.UnsportsmanlikeFouls++
	case FoulDisqualifying:
		s.DisqualifyingFouls++
	}

	out := FoulOutcome{Total: s.TotalFouls()}

	switch {
	case kind == FoulDisqualifying:
		out.Ejected, out.Reason = true, EjectedDisqualifying
	case out.Total >= foulOutTotal:
		out.Ejected, out.Reason = true, EjectedFifthFoul
	case s.UnsportsmanlikeFouls >= foulOutUnsportsmanlike:
		out.Ejected, out.Reason = true, EjectedSecondUnsportsmanlike
	case s.TechnicalFouls >= foulOutTechnical:
		out.Ejected, out.Reason = true, EjectedSecondTechnical
	}

	if out.Ejected {
		s.Ejected = true
	}
	return out, nil
}

// ApplyStaffFoul increments a coaching-staff foul. Only technical and
// disqualifying apply to the bench staff. Rejected when the record has
// no name (no head coach registered) or is already ejected.
func ApplyStaffFoul(st *Staff, kind FoulKind) (FoulOutcome, error) {
	if kind != FoulTechnical && kind != FoulDisqualifying {
		return FoulOutcome{}, ErrStaffFoulKind
	}
	if st.Name == "" {
		return FoulOutcome{}, ErrNoStaffOnRecord
	}
	if st.Ejected {
		return FoulOutcome{}, ErrStaffEjected
	}

	var out FoulOutcome
	if kind == FoulDisqualifying {
		st.Ejected = true
		out.Ejected, out.Reason = true, EjectedDisqualifying
	} else {
		st.TechnicalFouls++
		if st.TechnicalFouls >= staffOutTechnical {
			st.Ejected = true
			out.Ejected, out.Reason = true, EjectedSecondTechnical
		}
	}
	out.Total = st.TechnicalFouls
	return out, nil
}

// ApplyScore credits points to the ledger row. Rejected when ejected.
// A made three also bumps the threes counter.
func ApplyScore(s *PlayerStats, points int) error {
	if points < 1 || points > 3 {
		return ErrInvalidPoints
	}
	if s.Ejected {
		return ErrPlayerEjected
	}
	s.Points += points
	if points == 3 {
		s.ThreesMade++
	}
	return nil
}

// ApplyStat increments a non-scoring counter. Rejected when ejected.
func ApplyStat(s *PlayerStats, kind StatKind) error {
	if !kind.Valid() {
		return ErrInvalidStatKind
	}
	if s.Ejected {
		return ErrPlayerEjected
	}
	switch kind {
	case StatRebound:
		s.Rebounds++
	case StatAssist:
		s.Assists++
	case StatSteal:
		s.Steals++
	case StatBlock:
		s.Blocks++
	}
	return nil
}
