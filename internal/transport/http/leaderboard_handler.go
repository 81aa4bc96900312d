package http

import (
	"net/http"

	"escaperoom-service/internal/app"
)

// LeaderboardHandler serves the read-only ranking views. /api/leaderboard and
// /api/results return the same aggregation; the results route exists for the
// admin dashboard.
type LeaderboardHandler struct {
	service *app.LeaderboardService
}

func NewLeaderboardHandler(service *app.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	leaderboard, err := h.service.Global(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboard.Entries)
}
