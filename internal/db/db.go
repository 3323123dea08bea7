// Package db provides a pgxpool-based connection pool with prepared
// statement registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ligaboreal/mesa-tecnica/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// GameColumns is the column list every game query selects, in the
// order store/postgres.go scans them.
const GameColumns = `id,
	local_team_id, local_team_name, local_score, local_fouls, local_timeouts, local_lineup, local_staff,
	visiting_team_id, visiting_team_name, visiting_score, visiting_fouls, visiting_timeouts, visiting_lineup, visiting_staff,
	period, clock_tenths, clock_running, status, play_log, venue, starts_at`

// registerPreparedStatements registers every statement the console and
// admin layers use. Prepared statements eliminate parse overhead on
// hot-path writes (every score and foul lands through one of these).
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Game document
		"game_by_id":      "SELECT " + GameColumns + " FROM games WHERE id = $1",
		"games_by_status": "SELECT " + GameColumns + " FROM games WHERE status = ANY($1) ORDER BY starts_at",
		"set_play_log":    "UPDATE games SET play_log = $2 WHERE id = $1",

		// Team counters — atomic increments, one statement per
		// (side, field) pair so concurrent writers never clobber.
		"incr_local_score":       "UPDATE games SET local_score = local_score + $2 WHERE id = $1",
		"incr_local_fouls":       "UPDATE games SET local_fouls = local_fouls + $2 WHERE id = $1",
		"incr_local_timeouts":    "UPDATE games SET local_timeouts = local_timeouts + $2 WHERE id = $1",
		"incr_visiting_score":    "UPDATE games SET visiting_score = visiting_score + $2 WHERE id = $1",
		"incr_visiting_fouls":    "UPDATE games SET visiting_fouls = visiting_fouls + $2 WHERE id = $1",
		"incr_visiting_timeouts": "UPDATE games SET visiting_timeouts = visiting_timeouts + $2 WHERE id = $1",

		// Stat ledger — merge-upsert keyed (game_id, player_id);
		// numeric fields accumulate, ejected is sticky.
		"merge_player_stats": `INSERT INTO player_game_stats (
				game_id, player_id, name, number, team_name,
				points, rebounds, assists, steals, blocks,
				personal_fouls, technical_fouls, unsportsmanlike_fouls, disqualifying_fouls,
				threes_made, ejected, date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			ON CONFLICT (game_id, player_id) DO UPDATE SET
				name = EXCLUDED.name,
				number = EXCLUDED.number,
				team_name = EXCLUDED.team_name,
				points = player_game_stats.points + EXCLUDED.points,
				rebounds = player_game_stats.rebounds + EXCLUDED.rebounds,
				assists = player_game_stats.assists + EXCLUDED.assists,
				steals = player_game_stats.steals + EXCLUDED.steals,
				blocks = player_game_stats.blocks + EXCLUDED.blocks,
				personal_fouls = player_game_stats.personal_fouls + EXCLUDED.personal_fouls,
				technical_fouls = player_game_stats.technical_fouls + EXCLUDED.technical_fouls,
				unsportsmanlike_fouls = player_game_stats.unsportsmanlike_fouls + EXCLUDED.unsportsmanlike_fouls,
				disqualifying_fouls = player_game_stats.disqualifying_fouls + EXCLUDED.disqualifying_fouls,
				threes_made = player_game_stats.threes_made + EXCLUDED.threes_made,
				ejected = player_game_stats.ejected OR EXCLUDED.ejected,
				date = EXCLUDED.date`,
		"stats_by_game": `SELECT game_id, player_id, name, number, team_name,
				points, rebounds, assists, steals, blocks,
				personal_fouls, technical_fouls, unsportsmanlike_fouls, disqualifying_fouls,
				threes_made, ejected, date
			FROM player_game_stats WHERE game_id = $1 ORDER BY team_name, number`,
		"delete_stats_by_game": "DELETE FROM player_game_stats WHERE game_id = $1",

		// Standings — atomic increments, written once per finalize.
		"apply_standings": `INSERT INTO standings (team_id, wins, losses, table_points, points_for, points_against)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (team_id) DO UPDATE SET
				wins = standings.wins + EXCLUDED.wins,
				losses = standings.losses + EXCLUDED.losses,
				table_points = standings.table_points + EXCLUDED.table_points,
				points_for = standings.points_for + EXCLUDED.points_for,
				points_against = standings.points_against + EXCLUDED.points_against`,

		// Live re-sync fan-out
		"notify_game_updated": "SELECT pg_notify('mesa_game_updated', $1)",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
