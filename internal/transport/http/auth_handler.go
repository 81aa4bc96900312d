package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"escaperoom-service/internal/app"
)

// AuthHandler covers the minimal register/login flow. There are no sessions
// or tokens; the frontend only needs a yes/no on credentials.
type AuthHandler struct {
	service  *app.AuthService
	validate *validator.Validate
}

func NewAuthHandler(service *app.AuthService) *AuthHandler {
	return &AuthHandler{service: service, validate: validator.New()}
}

type registerPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeValidationError(w, "name, a valid email, and a password of at least 8 characters are required")
		return
	}

	user, err := h.service.Register(r.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

type loginPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeValidationError(w, "email and password are required")
		return
	}

	user, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
