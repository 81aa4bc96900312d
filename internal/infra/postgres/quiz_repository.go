package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"escaperoom-service/internal/app"
	"escaperoom-service/internal/domain"
)

// QuizRepository is the bun-backed admin quiz store. Quiz and question writes
// always run inside one transaction so a crash cannot leave an orphaned quiz
// row with a partial question list.
type QuizRepository struct {
	db *bun.DB
}

func NewQuizRepository(db *bun.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	row, questions := quizToRows(quiz)
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		if len(questions) > 0 {
			if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
				return fmt.Errorf("insert questions: %w", err)
			}
		}
		return nil
	})
}

func (r *QuizRepository) Update(ctx context.Context, quiz *domain.Quiz) error {
	row, questions := quizToRows(quiz)
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(row).
			Column("title", "description", "is_published", "total_time_minutes", "sequential_unlock").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update quiz: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return domain.ErrQuizNotFound
		}

		// Wholesale question replace; the question list has no independent identity.
		if _, err := tx.NewDelete().
			Model((*questionRow)(nil)).
			Where("quiz_id = ?", quiz.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		if len(questions) > 0 {
			if _, err := tx.NewInsert().Model(&questions).Exec(ctx); err != nil {
				return fmt.Errorf("insert questions: %w", err)
			}
		}
		return nil
	})
}

func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Quiz, error) {
	row := new(quizRow)
	err := r.db.NewSelect().
		Model(row).
		Relation("Questions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("question_order ASC")
		}).
		Where("q.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return row.toDomain(), nil
}

func (r *QuizRepository) List(ctx context.Context, filter app.QuizFilter) ([]domain.Quiz, int, error) {
	var rows []*quizRow
	query := r.db.NewSelect().
		Model(&rows).
		Relation("Questions", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("question_order ASC")
		})

	if filter.Search != "" {
		query = query.Where("q.title ILIKE ?", "%"+filter.Search+"%")
	}
	switch filter.Status {
	case "published":
		query = query.Where("q.is_published")
	case "draft":
		query = query.Where("NOT q.is_published")
	}

	total, err := query.
		Order("q.created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list quizzes: %w", err)
	}

	quizzes := make([]domain.Quiz, len(rows))
	for i, row := range rows {
		quizzes[i] = row.toDomain()
	}
	return quizzes, total, nil
}

func (r *QuizRepository) Publish(ctx context.Context, id uuid.UUID) (domain.Quiz, error) {
	res, err := r.db.NewUpdate().
		Model((*quizRow)(nil)).
		Set("is_published = TRUE").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("publish quiz: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Questions and submissions cascade via foreign keys.
	res, err := r.db.NewDelete().
		Model((*quizRow)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}
