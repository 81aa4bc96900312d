package http

import (
	"encoding/json"
	"io"
	"net/http"

	"escaperoom-service/internal/app"
)

// SettingsHandler round-trips the singleton settings blob verbatim. The
// server never interprets its contents; the frontend owns the schema.
type SettingsHandler struct {
	repo app.SettingsRepository
}

func NewSettingsHandler(repo app.SettingsRepository) *SettingsHandler {
	return &SettingsHandler{repo: repo}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	blob, err := h.repo.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob)
}

func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if !json.Valid(body) {
		writeValidationError(w, "settings must be valid JSON")
		return
	}
	if err := h.repo.Put(r.Context(), body); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Settings saved"})
}
