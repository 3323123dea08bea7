// Package store defines the persistence contracts the engine runs
// against, plus the Postgres implementation and an in-memory fake.
//
// The engine never does read-modify-write on counters: every counter
// mutation goes through IncrementTeam (atomic "add N to field F"), so
// two stations awarding points at the same instant both land. The one
// exception is the play-by-play log, persisted as a whole-field
// overwrite of the capped list — see game.PrependLog for why that race
// is accepted.
package store

import (
	"context"
	"errors"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
)

// ErrNotFound is returned when a game id matches nothing.
var ErrNotFound = errors.New("store: game not found")

// TeamField names a per-team counter eligible for atomic increments.
type TeamField string

const (
	FieldScore    TeamField = "score"
	FieldFouls    TeamField = "fouls"
	FieldTimeouts TeamField = "timeouts"
)

// Field names a game document field eligible for overwrite.
type Field string

const (
	FieldStatus           Field = "status"
	FieldPeriod           Field = "period"
	FieldClock            Field = "clock"
	FieldRunning          Field = "running"
	FieldLocalScore       Field = "local_score"
	FieldVisitingScore    Field = "visiting_score"
	FieldLocalFouls       Field = "local_fouls"
	FieldVisitingFouls    Field = "visiting_fouls"
	FieldLocalTimeouts    Field = "local_timeouts"
	FieldVisitingTimeouts Field = "visiting_timeouts"
	FieldLocalStaff       Field = "local_staff"
	FieldVisitingStaff    Field = "visiting_staff"
)

// Fields is a partial overwrite of the game document.
type Fields map[Field]any

// GameStore persists the shared game document.
type GameStore interface {
	// Game loads one game by id. ErrNotFound when absent.
	Game(ctx context.Context, id string) (*game.Game, error)

	// ListByStatus returns games in any of the given states, for the
	// match picker. No statuses means all games.
	ListByStatus(ctx context.Context, statuses ...game.Status) ([]game.Game, error)

	// IncrementTeam atomically adds delta to one team counter.
	IncrementTeam(ctx context.Context, gameID string, side game.Side, field TeamField, delta int) error

	// SetFields overwrites the given document fields.
	SetFields(ctx context.Context, gameID string, fields Fields) error

	// SetLog overwrites the capped play-by-play list.
	SetLog(ctx context.Context, gameID string, entries []game.LogEntry) error
}

// LedgerStore persists per-player stat rows keyed (gameID, playerID).
type LedgerStore interface {
	// MergeStats upserts a ledger row with increment semantics: the
	// numeric fields of delta are added to the stored row (created if
	// absent), Ejected is sticky once set, and the denormalized
	// name/number/team fields are overwritten. Retry-safe only in the
	// sense that a created row exists; callers pass single-event
	// deltas.
	MergeStats(ctx context.Context, delta game.PlayerStats) error

	// GameStats lists the ledger rows for one game.
	GameStats(ctx context.Context, gameID string) ([]game.PlayerStats, error)

	// DeleteGameStats removes every ledger row for one game.
	DeleteGameStats(ctx context.Context, gameID string) error
}

// StandingsStore applies the finalize commit via atomic increments.
type StandingsStore interface {
	ApplyStandings(ctx context.Context, teamID string, delta game.StandingsDelta) error
}

// Notifier fans out "this game changed" signals so other stations
// re-sync. Kind names the action that caused the write.
type Notifier interface {
	NotifyGameUpdated(ctx context.Context, gameID, kind string) error
}

// Store is the full contract the engine needs. Both the Postgres
// implementation and the in-memory fake satisfy it.
type Store interface {
	GameStore
	LedgerStore
	StandingsStore
	Notifier
}
