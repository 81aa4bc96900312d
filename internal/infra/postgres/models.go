package postgres

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"escaperoom-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID               uuid.UUID      `bun:"id,pk,type:uuid"`
	Title            string         `bun:"title,notnull"`
	Description      string         `bun:"description"`
	Link             string         `bun:"quiz_link,notnull"`
	IsPublished      bool           `bun:"is_published,notnull"`
	TotalTimeMinutes int            `bun:"total_time_minutes,notnull"`
	SequentialUnlock bool           `bun:"sequential_unlock,notnull"`
	CreatedAt        time.Time      `bun:"created_at,notnull"`
	Questions        []*questionRow `bun:"rel:has-many,join:id=quiz_id"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:quiz_questions,alias:qq"`

	ID               uuid.UUID `bun:"id,pk,type:uuid"`
	QuizID           uuid.UUID `bun:"quiz_id,notnull,type:uuid"`
	Text             string    `bun:"question_text,notnull"`
	CorrectAnswer    string    `bun:"correct_answer,notnull"`
	QuestionOrder    int       `bun:"question_order,notnull"`
	TimeLimitSeconds int       `bun:"time_limit_seconds,notnull"`
}

type submissionRow struct {
	bun.BaseModel `bun:"table:quiz_submissions,alias:qs"`

	ID          uuid.UUID       `bun:"id,pk,type:uuid"`
	QuizID      uuid.UUID       `bun:"quiz_id,notnull,type:uuid"`
	TeamName    string          `bun:"team_name,notnull"`
	Answers     json.RawMessage `bun:"answers,type:jsonb"`
	Score       int             `bun:"score,notnull"`
	Percentage  int             `bun:"percentage,notnull"`
	StartedAt   time.Time       `bun:"started_at,notnull"`
	SubmittedAt time.Time       `bun:"submitted_at,notnull"`
	Quiz        *quizRow        `bun:"rel:belongs-to,join:quiz_id=id"`
}

type teamRow struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID          uuid.UUID       `bun:"id,pk,type:uuid"`
	Name        string          `bun:"name,notnull"`
	Description string          `bun:"description"`
	CreatedBy   string          `bun:"created_by"`
	Members     json.RawMessage `bun:"members,type:jsonb"`
	CreatedAt   time.Time       `bun:"created_at,notnull"`
	UpdatedAt   time.Time       `bun:"updated_at,notnull"`
}

type gameRow struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid"`
	Name        string     `bun:"event_name,notnull"`
	IsActive    bool       `bun:"is_active,notnull"`
	IsCompleted bool       `bun:"is_completed,notnull"`
	StartTime   *time.Time `bun:"start_time"`
	EndTime     *time.Time `bun:"end_time"`
	WinnerTeam  string     `bun:"winner_team"`
}

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

type settingsRow struct {
	bun.BaseModel `bun:"table:settings,alias:s"`

	ID   int64           `bun:"id,pk"`
	Data json.RawMessage `bun:"data,type:jsonb"`
}

func (r *quizRow) toDomain() domain.Quiz {
	quiz := domain.Quiz{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Link:             r.Link,
		IsPublished:      r.IsPublished,
		TotalTimeMinutes: r.TotalTimeMinutes,
		SequentialUnlock: r.SequentialUnlock,
		CreatedAt:        r.CreatedAt,
	}
	for _, q := range r.Questions {
		quiz.Questions = append(quiz.Questions, domain.Question{
			Text:             q.Text,
			CorrectAnswer:    q.CorrectAnswer,
			Order:            q.QuestionOrder,
			TimeLimitSeconds: q.TimeLimitSeconds,
		})
	}
	return quiz
}

func quizToRows(quiz *domain.Quiz) (*quizRow, []*questionRow) {
	row := &quizRow{
		ID:               quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		Link:             quiz.Link,
		IsPublished:      quiz.IsPublished,
		TotalTimeMinutes: quiz.TotalTimeMinutes,
		SequentialUnlock: quiz.SequentialUnlock,
		CreatedAt:        quiz.CreatedAt,
	}
	questions := make([]*questionRow, len(quiz.Questions))
	for i, q := range quiz.Questions {
		questions[i] = &questionRow{
			ID:               uuid.New(),
			QuizID:           quiz.ID,
			Text:             q.Text,
			CorrectAnswer:    q.CorrectAnswer,
			QuestionOrder:    q.Order,
			TimeLimitSeconds: q.TimeLimitSeconds,
		}
	}
	return row, questions
}

func (r *submissionRow) toDomain() (domain.Submission, error) {
	submission := domain.Submission{
		ID:          r.ID,
		QuizID:      r.QuizID,
		TeamName:    r.TeamName,
		Score:       r.Score,
		Percentage:  r.Percentage,
		StartedAt:   r.StartedAt,
		SubmittedAt: r.SubmittedAt,
	}
	if r.Quiz != nil {
		submission.QuizTitle = r.Quiz.Title
	}
	if len(r.Answers) > 0 {
		if err := json.Unmarshal(r.Answers, &submission.Answers); err != nil {
			return domain.Submission{}, err
		}
	}
	return submission, nil
}

func (r *teamRow) toDomain() (domain.Team, error) {
	team := domain.Team{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Members) > 0 {
		if err := json.Unmarshal(r.Members, &team.Members); err != nil {
			return domain.Team{}, err
		}
	}
	return team, nil
}

func (r *gameRow) toDomain() domain.Game {
	return domain.Game{
		ID:          r.ID,
		Name:        r.Name,
		IsActive:    r.IsActive,
		IsCompleted: r.IsCompleted,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		WinnerTeam:  r.WinnerTeam,
	}
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
