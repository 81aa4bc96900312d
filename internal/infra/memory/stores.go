package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"escaperoom-service/internal/domain"
)

// SubmissionRepository is the in-memory append-only submission store.
type SubmissionRepository struct {
	mu          sync.RWMutex
	submissions []domain.Submission
}

func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{}
}

func (r *SubmissionRepository) Create(_ context.Context, submission *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, *submission)
	return nil
}

func (r *SubmissionRepository) ListAll(_ context.Context) ([]domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Submission(nil), r.submissions...), nil
}

func (r *SubmissionRepository) ListByQuiz(_ context.Context, quizID uuid.UUID) ([]domain.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Submission
	for _, submission := range r.submissions {
		if submission.QuizID == quizID {
			out = append(out, submission)
		}
	}
	return out, nil
}

func (r *SubmissionRepository) DeleteByQuiz(_ context.Context, quizID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.submissions[:0]
	for _, submission := range r.submissions {
		if submission.QuizID != quizID {
			kept = append(kept, submission)
		}
	}
	r.submissions = kept
	return nil
}

// TeamRepository is the in-memory team store.
type TeamRepository struct {
	mu    sync.RWMutex
	teams map[uuid.UUID]domain.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{teams: make(map[uuid.UUID]domain.Team)}
}

func (r *TeamRepository) Create(_ context.Context, team *domain.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.Name == team.Name {
			return domain.ErrTeamExists
		}
	}
	r.teams[team.ID] = *team
	return nil
}

func (r *TeamRepository) GetByID(_ context.Context, id uuid.UUID) (domain.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	team, ok := r.teams[id]
	if !ok {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	return team, nil
}

func (r *TeamRepository) GetByName(_ context.Context, name string) (domain.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, team := range r.teams {
		if team.Name == name {
			return team, nil
		}
	}
	return domain.Team{}, domain.ErrTeamNotFound
}

func (r *TeamRepository) List(_ context.Context) ([]domain.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	teams := make([]domain.Team, 0, len(r.teams))
	for _, team := range r.teams {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].CreatedAt.After(teams[j].CreatedAt)
	})
	return teams, nil
}

func (r *TeamRepository) Update(_ context.Context, team *domain.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.ID]; !ok {
		return domain.ErrTeamNotFound
	}
	r.teams[team.ID] = *team
	return nil
}

func (r *TeamRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return domain.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

// GameRepository is the in-memory event state store.
type GameRepository struct {
	mu    sync.RWMutex
	games map[uuid.UUID]domain.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{games: make(map[uuid.UUID]domain.Game)}
}

func (r *GameRepository) Create(_ context.Context, game *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.ID] = *game
	return nil
}

func (r *GameRepository) Get(_ context.Context, id uuid.UUID) (domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (r *GameRepository) Save(_ context.Context, game *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.ID]; !ok {
		return domain.ErrGameNotFound
	}
	r.games[game.ID] = *game
	return nil
}

// UserRepository is the in-memory credential store.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return domain.ErrUserExists
	}
	r.users[user.Email] = *user
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[email]
	if !ok {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// SettingsRepository holds the singleton settings blob in memory.
type SettingsRepository struct {
	mu   sync.RWMutex
	blob json.RawMessage
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{}
}

func (r *SettingsRepository) Get(_ context.Context) (json.RawMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.blob == nil {
		return json.RawMessage(`{}`), nil
	}
	return append(json.RawMessage(nil), r.blob...), nil
}

func (r *SettingsRepository) Put(_ context.Context, blob json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blob = append(json.RawMessage(nil), blob...)
	return nil
}
