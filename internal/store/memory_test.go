package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligaboreal/mesa-tecnica/internal/game"
)

func seedGame(m *Memory) *game.Game {
	g := &game.Game{
		ID:       "g1",
		Local:    game.TeamState{ID: "t1", Name: "Osos", Timeouts: 2},
		Visiting: game.TeamState{ID: "t2", Name: "Linces", Timeouts: 2},
		Period:   1,
		Clock:    6000,
		Status:   game.StatusScheduled,
	}
	m.Put(g)
	return g
}

func TestMemoryIncrementTeam(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedGame(m)

	require.NoError(t, m.IncrementTeam(ctx, "g1", game.SideLocal, FieldScore, 2))
	require.NoError(t, m.IncrementTeam(ctx, "g1", game.SideLocal, FieldScore, 3))
	require.NoError(t, m.IncrementTeam(ctx, "g1", game.SideVisiting, FieldFouls, 1))
	require.NoError(t, m.IncrementTeam(ctx, "g1", game.SideLocal, FieldTimeouts, -1))

	g, err := m.Game(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 5, g.Local.Score)
	assert.Equal(t, 1, g.Visiting.Fouls)
	assert.Equal(t, 1, g.Local.Timeouts)

	assert.ErrorIs(t, m.IncrementTeam(ctx, "missing", game.SideLocal, FieldScore, 2), ErrNotFound)
	assert.Error(t, m.IncrementTeam(ctx, "g1", game.SideLocal, TeamField("rebounds"), 1))
}

func TestMemorySetFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedGame(m)

	err := m.SetFields(ctx, "g1", Fields{
		FieldStatus:  game.StatusLive,
		FieldClock:   5400,
		FieldRunning: true,
		FieldPeriod:  2,
	})
	require.NoError(t, err)

	g, _ := m.Game(ctx, "g1")
	assert.Equal(t, game.StatusLive, g.Status)
	assert.Equal(t, 5400, g.Clock)
	assert.True(t, g.Running)
	assert.Equal(t, 2, g.Period)

	assert.Error(t, m.SetFields(ctx, "g1", Fields{Field("bogus"): 1}))
	assert.ErrorIs(t, m.SetFields(ctx, "missing", Fields{FieldPeriod: 1}), ErrNotFound)
}

func TestMemoryGameReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedGame(m)

	g1, _ := m.Game(ctx, "g1")
	g1.Local.Score = 99

	g2, _ := m.Game(ctx, "g1")
	assert.Zero(t, g2.Local.Score, "mutating a loaded snapshot must not leak into the store")
}

func TestMemoryMergeStats(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	row := game.PlayerStats{GameID: "g1", PlayerID: "p1", Name: "García", Number: 7, TeamName: "Osos"}

	first := row
	first.Points = 2
	require.NoError(t, m.MergeStats(ctx, first))

	second := row
	second.Points = 3
	second.ThreesMade = 1
	require.NoError(t, m.MergeStats(ctx, second))

	third := row
	third.PersonalFouls = 1
	third.Ejected = true
	require.NoError(t, m.MergeStats(ctx, third))

	// Ejected stays sticky across later merges.
	fourth := row
	fourth.Rebounds = 1
	require.NoError(t, m.MergeStats(ctx, fourth))

	rows, err := m.GameStats(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	got := rows[0]
	assert.Equal(t, 5, got.Points)
	assert.Equal(t, 1, got.ThreesMade)
	assert.Equal(t, 1, got.PersonalFouls)
	assert.Equal(t, 1, got.Rebounds)
	assert.True(t, got.Ejected)
}

func TestMemoryDeleteGameStats(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.MergeStats(ctx, game.PlayerStats{GameID: "g1", PlayerID: "p1", Points: 2}))
	require.NoError(t, m.MergeStats(ctx, game.PlayerStats{GameID: "g2", PlayerID: "p2", Points: 2}))

	require.NoError(t, m.DeleteGameStats(ctx, "g1"))

	rows, _ := m.GameStats(ctx, "g1")
	assert.Empty(t, rows)
	rows, _ = m.GameStats(ctx, "g2")
	assert.Len(t, rows, 1, "other games keep their ledger")
}

func TestMemoryApplyStandings(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.ApplyStandings(ctx, "t1", game.StandingsDelta{Wins: 1, TablePoints: 2, PointsFor: 80, PointsAgainst: 75}))
	require.NoError(t, m.ApplyStandings(ctx, "t1", game.StandingsDelta{Losses: 1, TablePoints: 1, PointsFor: 60, PointsAgainst: 70}))

	agg := m.Standings("t1")
	assert.Equal(t, 1, agg.Wins)
	assert.Equal(t, 1, agg.Losses)
	assert.Equal(t, 3, agg.TablePoints)
	assert.Equal(t, 140, agg.PointsFor)
	assert.Equal(t, 145, agg.PointsAgainst)
}

func TestMemoryListByStatus(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Put(&game.Game{ID: "a", Status: game.StatusScheduled})
	m.Put(&game.Game{ID: "b", Status: game.StatusLive})
	m.Put(&game.Game{ID: "c", Status: game.StatusFinished})

	open, err := m.ListByStatus(ctx, game.StatusScheduled, game.StatusLive)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	all, err := m.ListByStatus(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryFailNext(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedGame(m)

	boom := errors.New("connection reset")
	m.FailNext = boom

	assert.ErrorIs(t, m.IncrementTeam(ctx, "g1", game.SideLocal, FieldScore, 2), boom)
	assert.NoError(t, m.IncrementTeam(ctx, "g1", game.SideLocal, FieldScore, 2), "failure injection is one-shot")
}
