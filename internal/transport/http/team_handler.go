package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"escaperoom-service/internal/app"
	"escaperoom-service/internal/domain"
)

// TeamHandler is plain CRUD over teams. The listing mirrors the shape the
// admin dashboard expects, with member_count as a derived display field.
type TeamHandler struct {
	service  *app.TeamService
	validate *validator.Validate
}

func NewTeamHandler(service *app.TeamService) *TeamHandler {
	return &TeamHandler{service: service, validate: validator.New()}
}

type teamPayload struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type teamView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	MemberCount int       `json:"member_count"`
}

func toTeamView(team domain.Team) teamView {
	return teamView{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		CreatedBy:   team.CreatedBy,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
		MemberCount: len(team.Members),
	}
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]teamView, len(teams))
	for i, team := range teams {
		views[i] = toTeamView(team)
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload teamPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeValidationError(w, "team name is required")
		return
	}

	team, err := h.service.Create(r.Context(), payload.Name, payload.Description, "admin")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeamView(team))
}

func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domain.ErrTeamNotFound)
		return
	}
	var payload teamPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeValidationError(w, "team name is required")
		return
	}

	team, err := h.service.Update(r.Context(), id, payload.Name, payload.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeamView(team))
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, domain.ErrTeamNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Team deleted successfully"})
}
