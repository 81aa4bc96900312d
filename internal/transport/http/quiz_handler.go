package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"escaperoom-service/internal/app"
)

// QuizHandler exposes the quiz lifecycle over REST.
type QuizHandler struct {
	service  *app.QuizService
	validate *validator.Validate
}

func NewQuizHandler(service *app.QuizService) *QuizHandler {
	return &QuizHandler{service: service, validate: validator.New()}
}

type questionPayload struct {
	Question  string `json:"question" validate:"required"`
	Answer    string `json:"answer" validate:"required"`
	TimeLimit int    `json:"timeLimit"`
}

type createQuizPayload struct {
	Title            string            `json:"title" validate:"required"`
	Description      string            `json:"description"`
	Questions        []questionPayload `json:"questions" validate:"required,min=1,dive"`
	TotalTimeMinutes int               `json:"totalTimeMinutes"`
	IsPublished      bool              `json:"isPublished"`
	SequentialUnlock bool              `json:"sequentialUnlock"`
}

func (p createQuizPayload) toInput() app.CreateQuizInput {
	input := app.CreateQuizInput{
		Title:            p.Title,
		Description:      p.Description,
		TotalTimeMinutes: p.TotalTimeMinutes,
		IsPublished:      p.IsPublished,
		SequentialUnlock: p.SequentialUnlock,
	}
	for _, q := range p.Questions {
		input.Questions = append(input.Questions, app.QuestionInput{
			Text:             q.Question,
			Answer:           q.Answer,
			TimeLimitSeconds: q.TimeLimit,
		})
	}
	return input
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createQuizPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeValidationError(w, "quiz must have a title and at least one question with an answer")
		return
	}

	quiz, link, err := h.service.Create(r.Context(), payload.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"quiz": quiz,
		"link": link,
	})
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid quiz id")
		return
	}
	var payload createQuizPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeValidationError(w, "quiz must have a title and at least one question with an answer")
		return
	}

	quiz, err := h.service.Update(r.Context(), id, payload.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quiz": quiz})
}

// Get serves the full quiz, answers included, for the admin editor.
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid quiz id")
		return
	}
	quiz, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quiz": quiz})
}

func (h *QuizHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid quiz id")
		return
	}
	quiz, err := h.service.Publish(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Quiz published",
		"quizLink": quiz.Link,
	})
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid quiz id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz deleted"})
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	quizzes, pagination, err := h.service.List(r.Context(), app.QuizFilter{
		Page:   page,
		Limit:  limit,
		Search: query.Get("search"),
		Status: query.Get("status"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"quizzes":    quizzes,
		"pagination": pagination,
	})
}

func (h *QuizHandler) Results(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, "invalid quiz id")
		return
	}
	submissions, err := h.service.Results(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

func (h *QuizHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.GetPublic(r.Context(), chi.URLParam(r, "link"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"quiz": quiz})
}

type checkPayload struct {
	TeamName      string `json:"teamName" validate:"required"`
	QuestionIndex int    `json:"questionIndex" validate:"min=0"`
	Answer        string `json:"answer"`
}

func (h *QuizHandler) Check(w http.ResponseWriter, r *http.Request) {
	var payload checkPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeValidationError(w, "teamName and a non-negative questionIndex are required")
		return
	}

	correct, err := h.service.CheckAnswer(r.Context(), chi.URLParam(r, "link"), payload.TeamName, payload.QuestionIndex, payload.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"correct": correct})
}

type submitPayload struct {
	TeamName  string    `json:"teamName" validate:"required"`
	Answers   []string  `json:"answers"`
	TimeSpent []int     `json:"timeSpent"`
	StartTime time.Time `json:"startTime"`
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidationError(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeValidationError(w, "teamName is required")
		return
	}

	answers := make([]app.SubmittedAnswer, len(payload.Answers))
	for i, answer := range payload.Answers {
		answers[i] = app.SubmittedAnswer{Answer: answer}
		if i < len(payload.TimeSpent) {
			answers[i].TimeSpentSeconds = payload.TimeSpent[i]
		}
	}

	result, err := h.service.Submit(r.Context(), chi.URLParam(r, "link"), payload.TeamName, answers, payload.StartTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
