package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligaboreal/mesa-tecnica/internal/api/handler"
	"github.com/ligaboreal/mesa-tecnica/internal/config"
	"github.com/ligaboreal/mesa-tecnica/internal/engine"
	"github.com/ligaboreal/mesa-tecnica/internal/game"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

func seedGame(m *store.Memory) string {
	rules := game.DefaultRules()
	local := make([]game.Player, 0, 8)
	visiting := make([]game.Player, 0, 7)
	for i := 1; i <= 8; i++ {
		local = append(local, game.Player{
			ID: fmt.Sprintf("L%d", i), Name: fmt.Sprintf("Local %d", i), Number: i + 3,
		})
	}
	for i := 1; i <= 7; i++ {
		visiting = append(visiting, game.Player{
			ID: fmt.Sprintf("V%d", i), Name: fmt.Sprintf("Visitante %d", i), Number: i + 6,
		})
	}
	g := &game.Game{
		ID: "g1",
		Local: game.TeamState{
			ID: "t-osos", Name: "Osos", Timeouts: rules.TimeoutsInitial,
			Lineup: game.Lineup{Players: local},
		},
		Visiting: game.TeamState{
			ID: "t-linces", Name: "Linces", Timeouts: rules.TimeoutsInitial,
			Lineup: game.Lineup{Players: visiting},
		},
		Period:     1,
		Clock:      rules.PeriodLength,
		Status:     game.StatusScheduled,
		LocalStaff: game.Staff{Name: "Coach Ríos"},
		StartsAt:   time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC),
	}
	m.Put(g)
	return g.ID
}

func newTestRouter(t *testing.T) (http.Handler, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	seedGame(m)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := engine.NewManager(m, game.DefaultRules(), time.Hour, logger)
	t.Cleanup(mgr.Close)
	cfg := &config.Config{CORSAllowOrigins: []string{"*"}}
	return NewRouter(handler.New(mgr, nil), cfg), m
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Error.Code
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// No database wired in tests.
	rec = doJSON(t, r, http.MethodGet, "/health/db", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMatchesList(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/matches?status=scheduled", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["count"])

	rec = doJSON(t, r, http.MethodGet, "/api/v1/matches?status=live", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["count"])

	rec = doJSON(t, r, http.MethodGet, "/api/v1/matches?status=bogus", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSnapshotAndUnknownGame(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/games/g1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Contains(t, body, "rosters")

	rec = doJSON(t, r, http.MethodGet, "/api/v1/games/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "game_not_found", errCode(t, rec))
}

func TestScoreFlow(t *testing.T) {
	r, m := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/clock/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["running"])

	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/score", map[string]interface{}{
		"team": "local", "playerId": "L1", "points": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(3), body["teamScore"])
	assert.Equal(t, float64(3), body["playerPoints"])

	g, err := m.Game(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 3, g.Local.Score)
	assert.Equal(t, game.StatusLive, g.Status)
}

func TestScoreValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/score", map[string]interface{}{
		"team": "local", "playerId": "L1", "points": 5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errCode(t, rec))

	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/score", map[string]interface{}{
		"team": "home", "playerId": "L1", "points": 2,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// V1 plays for the visitors.
	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/score", map[string]interface{}{
		"team": "local", "playerId": "V1", "points": 2,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "action_rejected", errCode(t, rec))
}

func TestMalformedBody(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games/g1/score", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_body", errCode(t, rec))
}

func TestFoulUntilEjection(t *testing.T) {
	r, _ := newTestRouter(t)

	var body map[string]interface{}
	for i := 0; i < 5; i++ {
		rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/fouls", map[string]interface{}{
			"team": "visiting", "playerId": "V2", "subtype": "personal",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body = decode(t, rec)
	}
	assert.Equal(t, true, body["ejected"])
	assert.Equal(t, float64(5), body["playerTotal"])

	// An ejected player takes no further part.
	rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/score", map[string]interface{}{
		"team": "visiting", "playerId": "V2", "points": 2,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestStaffFoulConfirmGate(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/staff-fouls", map[string]interface{}{
		"team": "local", "subtype": "technical",
	})
	require.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Equal(t, "confirmation_required", errCode(t, rec))

	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/staff-fouls", map[string]interface{}{
		"team": "local", "subtype": "technical", "confirm": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// No staff on record for the visiting bench.
	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/staff-fouls", map[string]interface{}{
		"team": "visiting", "subtype": "technical", "confirm": true,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestStatEndpoint(t *testing.T) {
	r, m := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/stats", map[string]interface{}{
		"team": "local", "playerId": "L3", "kind": "steal",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rows, err := m.GameStats(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Steals)
}

func TestSubstitutionFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/substitutions/begin", map[string]interface{}{
		"team": "local", "playerId": "L6",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/substitutions/complete", map[string]interface{}{
		"playerId": "L1",
	})
	require.Equal(t, http.StatusPreconditionRequired, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/substitutions/complete", map[string]interface{}{
		"playerId": "L1", "confirm": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/games/g1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap engine.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.GreaterOrEqual(t, snap.Rosters[game.SideLocal].OnCourtIndex("L6"), 0)
}

func TestTimeoutBudgetOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/timeouts", map[string]interface{}{
			"team": "local", "confirm": true,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/timeouts", map[string]interface{}{
		"team": "local", "confirm": true,
	})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestClockAdjustValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/clock/adjust", map[string]interface{}{
		"unit": "hour", "delta": 1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/clock/adjust", map[string]interface{}{
		"unit": "minute", "delta": 3,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/clock/adjust", map[string]interface{}{
		"unit": "minute", "delta": -1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5400), decode(t, rec)["clockTenths"])
}

func TestPeriodAdvance(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/period/advance", map[string]interface{}{
		"confirm": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["period"])
	assert.Equal(t, "Q2", body["label"])
}

func TestFinalizeAndReset(t *testing.T) {
	r, m := newTestRouter(t)

	// A tied game cannot be finalized.
	rec := doJSON(t, r, http.MethodPost, "/api/v1/games/g1/finalize", map[string]interface{}{
		"confirm": true,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	doJSON(t, r, http.MethodPost, "/api/v1/games/g1/clock/toggle", nil)
	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/score", map[string]interface{}{
		"team": "local", "playerId": "L2", "points": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/finalize", map[string]interface{}{
		"confirm": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "local", decode(t, rec)["winner"])
	assert.Equal(t, 1, m.Standings("t-osos").Wins)

	// Further events are rejected once final.
	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/score", map[string]interface{}{
		"team": "local", "playerId": "L2", "points": 2,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/games/g1/reset", map[string]interface{}{
		"confirm": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	g, err := m.Game(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, game.StatusScheduled, g.Status)
	assert.Equal(t, 0, g.Local.Score)
}

func TestBoxScoreGrouping(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/v1/games/g1/clock/toggle", nil)
	doJSON(t, r, http.MethodPost, "/api/v1/games/g1/score", map[string]interface{}{
		"team": "local", "playerId": "L1", "points": 2,
	})
	doJSON(t, r, http.MethodPost, "/api/v1/games/g1/score", map[string]interface{}{
		"team": "visiting", "playerId": "V1", "points": 3,
	})

	rec := doJSON(t, r, http.MethodGet, "/api/v1/games/g1/boxscore", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	local, ok := body["local"].([]interface{})
	require.True(t, ok)
	assert.Len(t, local, 1)
	visiting, ok := body["visiting"].([]interface{})
	require.True(t, ok)
	assert.Len(t, visiting, 1)
	assert.Equal(t, float64(2), body["count"])
}

func TestGameLogEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/v1/games/g1/clock/toggle", nil)
	doJSON(t, r, http.MethodPost, "/api/v1/games/g1/score", map[string]interface{}{
		"team": "local", "playerId": "L1", "points": 2,
	})

	rec := doJSON(t, r, http.MethodGet, "/api/v1/games/g1/log", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	entries, ok := body["entries"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, entries)
	// Newest first.
	first := entries[0].(map[string]interface{})
	assert.Contains(t, first["text"], "+2")
}
