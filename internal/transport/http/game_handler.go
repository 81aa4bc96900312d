package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"escaperoom-service/internal/app"
	"escaperoom-service/internal/domain"
)

// GameHandler exposes the event state machine. Mutations sit behind the
// admin-key middleware; status is public.
type GameHandler struct {
	service *app.GameService
}

func NewGameHandler(service *app.GameService) *GameHandler {
	return &GameHandler{service: service}
}

type gamePayload struct {
	GameID string `json:"gameId"`
}

func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Game started successfully", h.service.Start)
}

func (h *GameHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Game paused successfully", h.service.Pause)
}

func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Game reset successfully", h.service.Reset)
}

func (h *GameHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	op func(ctx context.Context, id uuid.UUID) (domain.Game, error),
) {
	var payload gamePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.GameID == "" {
		writeValidationError(w, "Game ID is required")
		return
	}
	gameID, err := uuid.Parse(payload.GameID)
	if err != nil {
		writeError(w, domain.ErrGameNotFound)
		return
	}

	game, err := op(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"game":    game,
	})
}

func (h *GameHandler) Status(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameId"))
	if err != nil {
		writeError(w, domain.ErrGameNotFound)
		return
	}
	game, err := h.service.Status(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}
