package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"escaperoom-service/internal/app"
	"escaperoom-service/internal/domain"
)

// QuizRepository is the in-memory admin quiz store. It doubles as the
// QuizLoader for the public cache, so the no-database mode behaves like the
// real stack end to end.
type QuizRepository struct {
	mu      sync.RWMutex
	quizzes map[uuid.UUID]domain.Quiz
	byLink  map[string]uuid.UUID
}

func NewQuizRepository() *QuizRepository {
	return &QuizRepository{
		quizzes: make(map[uuid.UUID]domain.Quiz),
		byLink:  make(map[string]uuid.UUID),
	}
}

func (r *QuizRepository) Create(_ context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quizzes[quiz.ID] = cloneQuiz(*quiz)
	r.byLink[quiz.Link] = quiz.ID
	return nil
}

func (r *QuizRepository) Update(_ context.Context, quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	r.quizzes[quiz.ID] = cloneQuiz(*quiz)
	return nil
}

func (r *QuizRepository) GetByID(_ context.Context, id uuid.UUID) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (r *QuizRepository) List(_ context.Context, filter app.QuizFilter) ([]domain.Quiz, int, error) {
	r.mu.RLock()
	all := make([]domain.Quiz, 0, len(r.quizzes))
	for _, quiz := range r.quizzes {
		all = append(all, cloneQuiz(quiz))
	}
	r.mu.RUnlock()

	filtered := all[:0]
	search := strings.ToLower(filter.Search)
	for _, quiz := range all {
		if search != "" && !strings.Contains(strings.ToLower(quiz.Title), search) {
			continue
		}
		if filter.Status == "published" && !quiz.IsPublished {
			continue
		}
		if filter.Status == "draft" && quiz.IsPublished {
			continue
		}
		filtered = append(filtered, quiz)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

func (r *QuizRepository) Publish(_ context.Context, id uuid.UUID) (domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz.IsPublished = true
	r.quizzes[id] = quiz
	return cloneQuiz(quiz), nil
}

func (r *QuizRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.quizzes[id]
	if !ok {
		return domain.ErrQuizNotFound
	}
	delete(r.byLink, quiz.Link)
	delete(r.quizzes, id)
	return nil
}

// LoadPublished implements QuizLoader for the public cache.
func (r *QuizRepository) LoadPublished(_ context.Context, link string) (domain.Quiz, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byLink[link]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	quiz := r.quizzes[id]
	if !quiz.IsPublished {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	quiz.Questions = append([]domain.Question(nil), quiz.Questions...)
	return quiz
}
