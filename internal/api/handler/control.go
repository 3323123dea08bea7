package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ligaboreal/mesa-tecnica/internal/api/respond"
	"github.com/ligaboreal/mesa-tecnica/internal/game"
)

// ClockToggle starts or pauses the game clock. The first start of a
// scheduled game flips it live.
func (h *Handler) ClockToggle(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	res, err := s.ToggleClock(r.Context())
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, res)
}

// ClockAdjust shifts the clock by one minute or one second to match
// the venue clock.
func (h *Handler) ClockAdjust(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Unit  game.ClockUnit `json:"unit"`
		Delta int            `json:"delta"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Unit.Tenths() == 0 {
		respond.WriteError(w, http.StatusBadRequest, "invalid_request", "Unit must be minute or second")
		return
	}
	if req.Delta != 1 && req.Delta != -1 {
		respond.WriteError(w, http.StatusBadRequest, "invalid_request", "Delta must be +1 or -1")
		return
	}
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	clock, err := s.AdjustClock(r.Context(), req.Unit, req.Delta)
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"clockTenths": clock,
		"clock":       game.ClockStamp(clock),
	})
}

// PeriodAdvance moves to the next period.
func (h *Handler) PeriodAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireConfirm(w, req.Confirm) {
		return
	}
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	period, err := s.AdvancePeriod(r.Context())
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"period": period,
		"label":  game.PeriodLabel(period),
	})
}

// Finalize closes the game and commits the standings deltas.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireConfirm(w, req.Confirm) {
		return
	}
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	res, err := s.Finalize(r.Context())
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, res)
}

// Reset returns the game to its pre-game state, wiping score, fouls,
// ledger and log. Lineups survive.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireConfirm(w, req.Confirm) {
		return
	}
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	if err := s.Reset(r.Context()); err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]bool{"reset": true})
}
