package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/quizdeck/quizdeck/go/internal/board"
	"github.com/quizdeck/quizdeck/go/internal/events"
	"github.com/quizdeck/quizdeck/go/internal/session"
)

// BoardHandler serves the board editor API. Mutations require the shared
// secret; reads are open so displays can preview boards.
type BoardHandler struct {
	boards     *board.Service
	controller *session.Controller
	cm         *ConnectionManager
	hostSecret string
}

// NewBoardHandler wires the board API.
func NewBoardHandler(boards *board.Service, controller *session.Controller, cm *ConnectionManager, hostSecret string) *BoardHandler {
	return &BoardHandler{
		boards:     boards,
		controller: controller,
		cm:         cm,
		hostSecret: hostSecret,
	}
}

// RegisterRoutes registers the board API endpoints.
func (h *BoardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/boards", h.handleList)
	mux.HandleFunc("POST /api/boards", h.requireSecret(h.handleCreate))
	mux.HandleFunc("GET /api/boards/{id}", h.handleGet)
	mux.HandleFunc("PUT /api/boards/{id}", h.requireSecret(h.handleUpdate))
	mux.HandleFunc("DELETE /api/boards/{id}", h.requireSecret(h.handleDelete))
	mux.HandleFunc("POST /api/boards/{id}/activate", h.requireSecret(h.handleActivate))
}

func (h *BoardHandler) requireSecret(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+h.hostSecret {
			writeError(w, http.StatusUnauthorized, "invalid secret")
			return
		}
		next(w, r)
	}
}

func (h *BoardHandler) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"activeBoardId": h.boards.ActiveBoardID(),
		"boards":        h.boards.List(),
	})
}

func (h *BoardHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	b, err := h.boards.Get(r.PathValue("id"))
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BoardHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b, err := h.boards.Create(req.Name)
	if err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BoardHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req board.UpdateBoardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b, err := h.boards.Update(id, req)
	if err != nil {
		writeBoardError(w, err)
		return
	}

	// Editing the live board re-syncs every screen without resetting play.
	if id == h.boards.ActiveBoardID() {
		h.publishBoard()
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BoardHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	wasActive := id == h.boards.ActiveBoardID()

	if err := h.boards.Delete(id); err != nil {
		writeBoardError(w, err)
		return
	}
	if wasActive {
		// Deleting the live board activates a survivor and resets the game.
		h.controller.BoardChanged()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) handleActivate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.boards.SetActive(id); err != nil {
		writeBoardError(w, err)
		return
	}
	h.controller.BoardChanged()
	writeJSON(w, http.StatusOK, map[string]string{"activeBoardId": id})
}

// publishBoard broadcasts the active board content to every connection.
func (h *BoardHandler) publishBoard() {
	snap := h.controller.Snapshot()
	ev, err := events.New(events.TypeBoardUpdate, events.BoardUpdatePayload{
		Board:        h.boards.ActiveBoard(),
		CurrentRound: snap.Round,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to build board update event")
		return
	}
	h.cm.Publish(ev)
}

func writeBoardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrBoardNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, board.ErrLastBoard):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("board request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
