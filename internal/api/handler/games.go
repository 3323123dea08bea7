package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ligaboreal/mesa-tecnica/internal/api/respond"
	"github.com/ligaboreal/mesa-tecnica/internal/game"
)

// Matches lists games for the match picker, optionally filtered by
// status: GET /api/v1/matches?status=scheduled,live
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	var statuses []game.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			switch s := game.Status(strings.TrimSpace(part)); s {
			case game.StatusScheduled, game.StatusLive, game.StatusFinished:
				statuses = append(statuses, s)
			default:
				respond.WriteError(w, http.StatusBadRequest, "invalid_status", "Unknown status "+part)
				return
			}
		}
	}

	games, err := h.mgr.Matches(r.Context(), statuses...)
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"matches": games,
		"count":   len(games),
	})
}

// GameSnapshot returns the live session view: game document, derived
// rosters and any armed substitution.
func (h *Handler) GameSnapshot(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, s.Snapshot())
}

// GameLog returns the play-by-play, newest first.
func (h *Handler) GameLog(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	snap := s.Snapshot()
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"gameId":  snap.Game.ID,
		"entries": snap.Game.Log,
		"count":   len(snap.Game.Log),
	})
}

// GameBoxScore renders the stat ledger grouped by side.
func (h *Handler) GameBoxScore(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r, chi.URLParam(r, "gameID"))
	if !ok {
		return
	}
	box, err := s.BoxScore(r.Context())
	if err != nil {
		writeActionError(w, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"gameId":   chi.URLParam(r, "gameID"),
		"local":    box.Local,
		"visiting": box.Visiting,
		"count":    len(box.Local) + len(box.Visiting),
	})
}
