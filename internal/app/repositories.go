package app

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"escaperoom-service/internal/domain"
)

// QuizRepository is the admin-side store for quizzes and their questions.
type QuizRepository interface {
	Create(ctx context.Context, quiz *domain.Quiz) error
	Update(ctx context.Context, quiz *domain.Quiz) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Quiz, error)
	List(ctx context.Context, filter QuizFilter) ([]domain.Quiz, int, error)
	Publish(ctx context.Context, id uuid.UUID) (domain.Quiz, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuizFilter narrows the admin quiz listing. Status is "published", "draft",
// or empty for all.
type QuizFilter struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// QuizCache serves published quizzes by link, including correct answers.
// Implementations cache aggressively; Invalidate must be called after any
// admin mutation that touches the quiz.
type QuizCache interface {
	GetPublished(ctx context.Context, link string) (domain.Quiz, error)
	Invalidate(ctx context.Context, link string)
}

// SubmissionRepository is the append-only store of completed attempts.
// DeleteByQuiz exists for the quiz-deletion cascade; stores whose schema
// already cascades may treat it as a no-op.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	ListAll(ctx context.Context) ([]domain.Submission, error)
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]domain.Submission, error)
	DeleteByQuiz(ctx context.Context, quizID uuid.UUID) error
}

// ProgressStore tracks which questions a team has cleared on a quiz, keyed by
// (quiz link, team). It backs server-authoritative sequential unlocking.
type ProgressStore interface {
	IsUnlocked(ctx context.Context, link, team string, order int) (bool, error)
	MarkCleared(ctx context.Context, link, team string, order int) error
}

// TeamRepository is plain CRUD over team records.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (domain.Team, error)
	GetByName(ctx context.Context, name string) (domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
	Update(ctx context.Context, team *domain.Team) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GameRepository stores event state records.
type GameRepository interface {
	Create(ctx context.Context, game *domain.Game) error
	Get(ctx context.Context, id uuid.UUID) (domain.Game, error)
	Save(ctx context.Context, game *domain.Game) error
}

// UserRepository stores admin credentials. GetByEmail returns
// domain.ErrInvalidCredentials for unknown emails so login failures are
// indistinguishable from bad passwords.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// SettingsRepository round-trips the singleton settings blob verbatim.
type SettingsRepository interface {
	Get(ctx context.Context) (json.RawMessage, error)
	Put(ctx context.Context, blob json.RawMessage) error
}
