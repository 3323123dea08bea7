package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ligaboreal/mesa-tecnica/internal/api/respond"
	"github.com/ligaboreal/mesa-tecnica/internal/game"
)

// Score credits a made basket: POST /games/{gameID}/score
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team     game.Side `json:"team"`
		PlayerID string    `json:"playerId"`
		Points   int       `json:"points"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireSide(w, req.Team) {
		return
	}
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	res, err := s.Score(r.Context(), req.Team, req.PlayerID, req.Points)
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, res)
}

// Foul charges a foul to a player: POST /games/{gameID}/fouls
func (h *Handler) Foul(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team     game.Side     `json:"team"`
		PlayerID string        `json:"playerId"`
		Subtype  game.FoulKind `json:"subtype"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireSide(w, req.Team) {
		return
	}
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	res, err := s.Foul(r.Context(), req.Team, req.PlayerID, req.Subtype)
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, res)
}

// StaffFoul charges a technical or disqualifying foul to the bench
// staff: POST /games/{gameID}/staff-fouls
func (h *Handler) StaffFoul(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team    game.Side     `json:"team"`
		Subtype game.FoulKind `json:"subtype"`
		Confirm bool          `json:"confirm"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireSide(w, req.Team) {
		return
	}
	if !requireConfirm(w, req.Confirm) {
		return
	}
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	res, err := s.StaffFoul(r.Context(), req.Team, req.Subtype)
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, res)
}

// Stat records a non-scoring stat event: POST /games/{gameID}/stats
func (h *Handler) Stat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team     game.Side     `json:"team"`
		PlayerID string        `json:"playerId"`
		Kind     game.StatKind `json:"kind"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireSide(w, req.Team) {
		return
	}
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	if err := s.Stat(r.Context(), req.Team, req.PlayerID, req.Kind); err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"recorded": true,
		"kind":     req.Kind,
	})
}

// SubstitutionBegin arms a substitution with the incoming bench
// player: POST /games/{gameID}/substitutions/begin
func (h *Handler) SubstitutionBegin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team     game.Side `json:"team"`
		PlayerID string    `json:"playerId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireSide(w, req.Team) {
		return
	}
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	pending, err := s.BeginSubstitution(req.Team, req.PlayerID)
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, pending)
}

// SubstitutionComplete swaps the armed bench player for the chosen
// on-court player: POST /games/{gameID}/substitutions/complete
func (h *Handler) SubstitutionComplete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
		Confirm  bool   `json:"confirm"`
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
	if err := s.CompleteSubstitution(r.Context(), req.PlayerID); err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]bool{"completed": true})
}

// Timeout spends one of the team's timeouts: POST /games/{gameID}/timeouts
func (h *Handler) Timeout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team    game.Side `json:"team"`
		Confirm bool      `json:"confirm"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !requireSide(w, req.Team) {
		return
	}
	if !requireConfirm(w, req.Confirm) {
		return
	}
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	left, err := s.CallTimeout(r.Context(), req.Team)
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"team":         req.Team,
		"timeoutsLeft": left,
	})
}
