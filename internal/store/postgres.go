package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ligaboreal/mesa-tecnica/internal/db"
	"github.com/ligaboreal/mesa-tecnica/internal/game"
)

// Postgres is the production Store. Counter writes go through the
// incr_* prepared statements registered in internal/db so they are
// atomic under concurrent operator stations.
type Postgres struct {
	pool *db.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres wraps a connection pool in the Store contract.
func NewPostgres(pool *db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func scanGame(row pgx.Row) (*game.Game, error) {
	var g game.Game
	err := row.Scan(
		&g.ID,
		&g.Local.ID, &g.Local.Name, &g.Local.Score, &g.Local.Fouls, &g.Local.Timeouts, &g.Local.Lineup, &g.LocalStaff,
		&g.Visiting.ID, &g.Visiting.Name, &g.Visiting.Score, &g.Visiting.Fouls, &g.Visiting.Timeouts, &g.Visiting.Lineup, &g.VisitingStaff,
		&g.Period, &g.Clock, &g.Running, &g.Status, &g.Log, &g.Venue, &g.StartsAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (p *Postgres) Game(ctx context.Context, id string) (*game.Game, error) {
	g, err := scanGame(p.pool.QueryRow(ctx, "game_by_id", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", id, err)
	}
	return g, nil
}

func (p *Postgres) ListByStatus(ctx context.Context, statuses ...game.Status) ([]game.Game, error) {
	if len(statuses) == 0 {
		statuses = []game.Status{game.StatusScheduled, game.StatusLive, game.StatusFinished}
	}
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	rows, err := p.pool.Query(ctx, "games_by_status", values)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

func (p *Postgres) IncrementTeam(ctx context.Context, gameID string, side game.Side, field TeamField, delta int) error {
	if !side.Valid() {
		return fmt.Errorf("store: invalid side %q", side)
	}
	switch field {
	case FieldScore, FieldFouls, FieldTimeouts:
	default:
		return fmt.Errorf("store: unknown team field %q", field)
	}

	stmt := "incr_" + string(side) + "_" + string(field)
	tag, err := p.pool.Exec(ctx, stmt, gameID, delta)
	if err != nil {
		return fmt.Errorf("increment %s.%s: %w", side, field, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// fieldColumns whitelists the overwritable game columns. SetFields SQL
// is composed from this map only, never from caller strings.
var fieldColumns = map[Field]string{
	FieldStatus:           "status",
	FieldPeriod:           "period",
	FieldClock:            "clock_tenths",
	FieldRunning:          "clock_running",
	FieldLocalScore:       "local_score",
	FieldVisitingScore:    "visiting_score",
	FieldLocalFouls:       "local_fouls",
	FieldVisitingFouls:    "visiting_fouls",
	FieldLocalTimeouts:    "local_timeouts",
	FieldVisitingTimeouts: "visiting_timeouts",
	FieldLocalStaff:       "local_staff",
	FieldVisitingStaff:    "visiting_staff",
}

func (p *Postgres) SetFields(ctx context.Context, gameID string, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	args = append(args, gameID)
	for f, v := range fields {
		col, ok := fieldColumns[f]
		if !ok {
			return fmt.Errorf("store: unknown field %q", f)
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	sql := "UPDATE games SET " + strings.Join(sets, ", ") + " WHERE id = $1"
	tag, err := p.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set fields on game %s: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SetLog(ctx context.Context, gameID string, entries []game.LogEntry) error {
	if entries == nil {
		entries = []game.LogEntry{}
	}
	tag, err := p.pool.Exec(ctx, "set_play_log", gameID, entries)
	if err != nil {
		return fmt.Errorf("set play log on game %s: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) MergeStats(ctx context.Context, delta game.PlayerStats) error {
	_, err := p.pool.Exec(ctx, "merge_player_stats",
		delta.GameID, delta.PlayerID, delta.Name, delta.Number, delta.TeamName,
		delta.Points, delta.Rebounds, delta.Assists, delta.Steals, delta.Blocks,
		delta.PersonalFouls, delta.TechnicalFouls, delta.UnsportsmanlikeFouls, delta.DisqualifyingFouls,
		delta.ThreesMade, delta.Ejected, delta.Date,
	)
	if err != nil {
		return fmt.Errorf("merge stats %s/%s: %w", delta.GameID, delta.PlayerID, err)
	}
	return nil
}

func (p *Postgres) GameStats(ctx context.Context, gameID string) ([]game.PlayerStats, error) {
	rows, err := p.pool.Query(ctx, "stats_by_game", gameID)
	if err != nil {
		return nil, fmt.Errorf("list stats for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var out []game.PlayerStats
	for rows.Next() {
		var s game.PlayerStats
		err := rows.Scan(
			&s.GameID, &s.PlayerID, &s.Name, &s.Number, &s.TeamName,
			&s.Points, &s.Rebounds, &s.Assists, &s.Steals, &s.Blocks,
			&s.PersonalFouls, &s.TechnicalFouls, &s.UnsportsmanlikeFouls, &s.DisqualifyingFouls,
			&s.ThreesMade, &s.Ejected, &s.Date,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteGameStats(ctx context.Context, gameID string) error {
	if _, err := p.pool.Exec(ctx, "delete_stats_by_game", gameID); err != nil {
		return fmt.Errorf("delete stats for game %s: %w", gameID, err)
	}
	return nil
}

func (p *Postgres) ApplyStandings(ctx context.Context, teamID string, delta game.StandingsDelta) error {
	_, err := p.pool.Exec(ctx, "apply_standings",
		teamID, delta.Wins, delta.Losses, delta.TablePoints, delta.PointsFor, delta.PointsAgainst)
	if err != nil {
		return fmt.Errorf("apply standings for team %s: %w", teamID, err)
	}
	return nil
}

// gameUpdatedPayload is the pg_notify payload internal/listener decodes.
type gameUpdatedPayload struct {
	GameID string `json:"game_id"`
	Kind   string `json:"kind"`
}

func (p *Postgres) NotifyGameUpdated(ctx context.Context, gameID, kind string) error {
	payload, err := json.Marshal(gameUpdatedPayload{GameID: gameID, Kind: kind})
	if err != nil {
		return fmt.Errorf("encode notify payload: %w", err)
	}
	if _, err := p.pool.Exec(ctx, "notify_game_updated", string(payload)); err != nil {
		return fmt.Errorf("notify game %s: %w", gameID, err)
	}
	return nil
}
