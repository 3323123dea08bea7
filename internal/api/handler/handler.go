// Package handler provides HTTP handlers for the Mesa Técnica console.
// Handlers are a thin shell over the engine: decode, call the session,
// map rejections to status codes. The rule logic never lives here.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ligaboreal/mesa-tecnica/internal/api/respond"
	"github.com/ligaboreal/mesa-tecnica/internal/engine"
	"github.com/ligaboreal/mesa-tecnica/internal/game"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	mgr     *engine.Manager
	dbCheck func(context.Context) error
}

// New creates a Handler. dbCheck may be nil when no database is wired
// (handler tests run against the in-memory store).
func New(mgr *engine.Manager, dbCheck func(context.Context) error) *Handler {
	return &Handler{mgr: mgr, dbCheck: dbCheck}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Mesa Técnica API",
		"version": "1.0.0",
		"status":  "running",
	})
}

// HealthCheck reports process liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthCheckDB verifies database connectivity.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.dbCheck == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "db_not_configured", "No database configured")
		return
	}
	if err := h.dbCheck(r.Context()); err != nil {
		respond.WriteErrorDetail(w, http.StatusServiceUnavailable, "db_unreachable", "Database unreachable", err.Error())
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]string{"status": "ok"})
}

// rejected lists the no-op signals: the action was refused, nothing
// changed, the operator is told why.
var rejected = []error{
	game.ErrPlayerEjected,
	game.ErrStaffEjected,
	game.ErrNoStaffOnRecord,
	game.ErrNoTimeoutsLeft,
	game.ErrNoPendingSub,
	game.ErrWrongTeam,
	game.ErrPlayerNotOnCourt,
	game.ErrPlayerNotOnBench,
	game.ErrAlreadyFinished,
	game.ErrClockExpired,
	engine.ErrTiedGame,
}

// invalid lists plain request errors.
var invalid = []error{
	game.ErrInvalidPoints,
	game.ErrInvalidFoulKind,
	game.ErrInvalidStatKind,
	game.ErrStaffFoulKind,
}

// writeActionError maps engine errors onto the API error envelope.
func writeActionError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "game_not_found", "Game not found")
		return
	}
	for _, r := range rejected {
		if errors.Is(err, r) {
			respond.WriteError(w, http.StatusConflict, "action_rejected", err.Error())
			return
		}
	}
	for _, r := range invalid {
		if errors.Is(err, r) {
			respond.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}
	respond.WriteErrorDetail(w, http.StatusInternalServerError, "persistence_failure",
		"The action could not be persisted; retry is safe", err.Error())
}

// decodeBody decodes a JSON request body, answering 400 on garbage.
// Returns false when the response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "invalid_body", "Malformed JSON body")
		return false
	}
	return true
}

// requireSide rejects requests naming a team that is neither local nor
// visiting. Returns false when the response has already been written.
func requireSide(w http.ResponseWriter, side game.Side) bool {
	if !side.Valid() {
		respond.WriteError(w, http.StatusBadRequest, "invalid_request", "Team must be local or visiting")
		return false
	}
	return true
}

// requireConfirm gates destructive actions on an explicit confirm flag.
// Returns false when the response has already been written.
func requireConfirm(w http.ResponseWriter, confirmed bool) bool {
	if !confirmed {
		respond.WriteError(w, http.StatusPreconditionRequired, "confirmation_required",
			"This action is destructive; pass confirm=true")
		return false
	}
	return true
}

// session loads the session for the route's game id, answering the
// error itself when loading fails.
func (h *Handler) session(w http.ResponseWriter, r *http.Request, gameID string) (*engine.Session, bool) {
	s, err := h.mgr.Session(r.Context(), gameID)
	if err != nil {
		writeActionError(w, err)
		return nil, false
	}
	return s, true
}
