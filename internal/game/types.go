// Package game holds the Mesa Técnica domain core: the live game
// aggregate, the lineup resolver, and the pure rule transitions (fouls,
// scoring, clock, period advance). Nothing in this package touches the
// network or the database — persistence side effects belong to
// internal/engine.
package game

import (
	"fmt"
	"time"
)

// Status is the game lifecycle state. Transitions are
// scheduled → live → finished; a reset is an administrative override
// back to scheduled, not part of the normal forward flow.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
)

// Side identifies a team within a game, or "system" for log entries
// that belong to neither bench.
type Side string

const (
	SideLocal    Side = "local"
	SideVisiting Side = "visiting"
	SideSystem   Side = "system"
)

// Opponent returns the other bench. System has no opponent.
func (s Side) Opponent() Side {
	switch s {
	case SideLocal:
		return SideVisiting
	case SideVisiting:
		return SideLocal
	}
	return SideSystem
}

// Valid reports whether s names an actual team.
func (s Side) Valid() bool {
	return s == SideLocal || s == SideVisiting
}

// Player is a roster entry as submitted by the team delegate.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number int    `json:"number"`
}

// TeamState is the per-team slice of the game aggregate. Fouls is the
// per-period team foul counter (bonus counter); it resets to zero at
// every period advance.
type TeamState struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Fouls    int    `json:"fouls"`
	Timeouts int    `json:"timeouts"`
	Lineup   Lineup `json:"lineup"`
}

// Staff is a coaching-staff record. A staff member is ejected at the
// second technical, or immediately on a disqualifying action.
type Staff struct {
	Name           string `json:"name"`
	TechnicalFouls int    `json:"technicalFouls"`
	Ejected        bool   `json:"ejected"`
}

// Game is the aggregate root shared by every operator station.
type Game struct {
	ID       string    `json:"id"`
	Local    TeamState `json:"local"`
	Visiting TeamState `json:"visiting"`

	Period  int  `json:"period"`      // 1..4 regulation, 5+ overtime
	Clock   int  `json:"clockTenths"` // remaining time in tenths of a second
	Running bool `json:"clockRunning"`

	Status        Status `json:"status"`
	LocalStaff    Staff  `json:"localStaff"`
	VisitingStaff Staff  `json:"visitingStaff"`

	Log []LogEntry `json:"log"` // newest first, capped

	Venue    string    `json:"venue,omitempty"`
	StartsAt time.Time `json:"startsAt"`
}

// Team returns the state for the given side. Panics on SideSystem —
// callers must validate the side first.
func (g *Game) Team(side Side) *TeamState {
	switch side {
	case SideLocal:
		return &g.Local
	case SideVisiting:
		return &g.Visiting
	}
	panic(fmt.Sprintf("game: no team for side %q", side))
}

// StaffFor returns the coaching-staff record for the given side.
func (g *Game) StaffFor(side Side) *Staff {
	if side == SideLocal {
		return &g.LocalStaff
	}
	return &g.VisitingStaff
}

// FoulKind classifies a foul event.
type FoulKind string

const (
	FoulPersonal        FoulKind = "personal"
	FoulTechnical       FoulKind = "technical"
	FoulUnsportsmanlike FoulKind = "unsportsmanlike"
	FoulDisqualifying   FoulKind = "disqualifying"
)

// Valid reports whether k is one of the four subtypes.
func (k FoulKind) Valid() bool {
	switch k {
	case FoulPersonal, FoulTechnical, FoulUnsportsmanlike, FoulDisqualifying:
		return true
	}
	return false
}

// Glyph is the short marker the play-by-play uses per subtype.
func (k FoulKind) Glyph() string {
	switch k {
	case FoulPersonal:
		return "P"
	case FoulTechnical:
		return "T"
	case FoulUnsportsmanlike:
		return "U"
	case FoulDisqualifying:
		return "D"
	}
	return "?"
}

// StatKind classifies a non-scoring stat event.
type StatKind string

const (
	StatRebound StatKind = "rebound"
	StatAssist  StatKind = "assist"
	StatSteal   StatKind = "steal"
	StatBlock   StatKind = "block"
)

// Valid reports whether k is a known stat kind.
func (k StatKind) Valid() bool {
	switch k {
	case StatRebound, StatAssist, StatSteal, StatBlock:
		return true
	}
	return false
}

// PlayerStats is one ledger row, keyed (GameID, PlayerID). Numeric
// fields carry merge-increment semantics when persisted: writing a row
// adds its values to the stored row, creating it if absent.
type PlayerStats struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`

	// Denormalized for box-score rendering.
	Name     string `json:"name"`
	Number   int    `json:"number"`
	TeamName string `json:"teamName"`

	Points   int `json:"points"`
	Rebounds int `json:"rebounds"`
	Assists  int `json:"assists"`
	Steals   int `json:"steals"`
	Blocks   int `json:"blocks"`

	PersonalFouls        int `json:"personalFouls"`
	TechnicalFouls       int `json:"technicalFouls"`
	UnsportsmanlikeFouls int `json:"unsportsmanlikeFouls"`
	DisqualifyingFouls   int `json:"disqualifyingFouls"`

	ThreesMade int  `json:"threesMade"`
	Ejected    bool `json:"ejected"`

	Date time.Time `json:"date"`
}

// TotalFouls is the derived sum of the four subtype counters.
func (s *PlayerStats) TotalFouls() int {
	return s.PersonalFouls + s.TechnicalFouls + s.UnsportsmanlikeFouls + s.DisqualifyingFouls
}

// StandingsDelta is the per-team standings commit applied exactly once
// at finalize.
type StandingsDelta struct {
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	TablePoints   int `json:"tablePoints"`
	PointsFor     int `json:"pointsFor"`
	PointsAgainst int `json:"pointsAgainst"`
}
