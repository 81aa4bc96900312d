package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"escaperoom-service/internal/domain"
)

// QuizLoader serves the public quiz-by-link read path with raw SQL over a pgx
// pool, bypassing the ORM. Unpublished quizzes are invisible here.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadPublished(ctx context.Context, link string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.pool.QueryRow(ctx, `
		SELECT id, title, description, quiz_link, is_published,
		       total_time_minutes, sequential_unlock, created_at
		FROM quizzes
		WHERE quiz_link = $1 AND is_published`, link).
		Scan(&quiz.ID, &quiz.Title, &quiz.Description, &quiz.Link, &quiz.IsPublished,
			&quiz.TotalTimeMinutes, &quiz.SequentialUnlock, &quiz.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx, `
		SELECT question_text, correct_answer, question_order, time_limit_seconds
		FROM quiz_questions
		WHERE quiz_id = $1
		ORDER BY question_order`, quiz.ID)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var question domain.Question
		if err := rows.Scan(&question.Text, &question.CorrectAnswer, &question.Order, &question.TimeLimitSeconds); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("read questions: %w", err)
	}
	return quiz, nil
}
