package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"escaperoom-service/internal/domain"
)

// SubmissionRepository persists completed attempts; answers live in one jsonb
// column since they have no identity outside their submission.
type SubmissionRepository struct {
	db *bun.DB
}

func NewSubmissionRepository(db *bun.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	answers, err := json.Marshal(submission.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	row := &submissionRow{
		ID:          submission.ID,
		QuizID:      submission.QuizID,
		TeamName:    submission.TeamName,
		Answers:     answers,
		Score:       submission.Score,
		Percentage:  submission.Percentage,
		StartedAt:   submission.StartedAt,
		SubmittedAt: submission.SubmittedAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) ListAll(ctx context.Context) ([]domain.Submission, error) {
	var rows []*submissionRow
	if err := r.db.NewSelect().
		Model(&rows).
		Relation("Quiz").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return rowsToSubmissions(rows)
}

func (r *SubmissionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]domain.Submission, error) {
	var rows []*submissionRow
	if err := r.db.NewSelect().
		Model(&rows).
		Relation("Quiz").
		Where("qs.quiz_id = ?", quizID).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quiz submissions: %w", err)
	}
	return rowsToSubmissions(rows)
}

// DeleteByQuiz is covered by the ON DELETE CASCADE foreign key; the explicit
// delete keeps the cascade contract even if the schema changes.
func (r *SubmissionRepository) DeleteByQuiz(ctx context.Context, quizID uuid.UUID) error {
	if _, err := r.db.NewDelete().
		Model((*submissionRow)(nil)).
		Where("quiz_id = ?", quizID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete quiz submissions: %w", err)
	}
	return nil
}

func rowsToSubmissions(rows []*submissionRow) ([]domain.Submission, error) {
	submissions := make([]domain.Submission, len(rows))
	for i, row := range rows {
		submission, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("decode submission %s: %w", row.ID, err)
		}
		submissions[i] = submission
	}
	return submissions, nil
}

// TeamRepository is the bun-backed team store.
type TeamRepository struct {
	db *bun.DB
}

func NewTeamRepository(db *bun.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) error {
	row, err := teamToRow(team)
	if err != nil {
		return err
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTeamExists
		}
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Team, error) {
	row := new(teamRow)
	err := r.db.NewSelect().Model(row).Where("t.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}
	return row.toDomain()
}

func (r *TeamRepository) GetByName(ctx context.Context, name string) (domain.Team, error) {
	row := new(teamRow)
	err := r.db.NewSelect().Model(row).Where("t.name = ?", name).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Team{}, domain.ErrTeamNotFound
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("get team by name: %w", err)
	}
	return row.toDomain()
}

func (r *TeamRepository) List(ctx context.Context) ([]domain.Team, error) {
	var rows []*teamRow
	if err := r.db.NewSelect().Model(&rows).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teams := make([]domain.Team, len(rows))
	for i, row := range rows {
		team, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		teams[i] = team
	}
	return teams, nil
}

func (r *TeamRepository) Update(ctx context.Context, team *domain.Team) error {
	row, err := teamToRow(team)
	if err != nil {
		return err
	}
	res, err := r.db.NewUpdate().
		Model(row).
		Column("name", "description", "members", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().Model((*teamRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

func teamToRow(team *domain.Team) (*teamRow, error) {
	members, err := json.Marshal(team.Members)
	if err != nil {
		return nil, fmt.Errorf("encode members: %w", err)
	}
	return &teamRow{
		ID:          team.ID,
		Name:        team.Name,
		Description: team.Description,
		CreatedBy:   team.CreatedBy,
		Members:     members,
		CreatedAt:   team.CreatedAt,
		UpdatedAt:   team.UpdatedAt,
	}, nil
}

// GameRepository is the bun-backed event state store.
type GameRepository struct {
	db *bun.DB
}

func NewGameRepository(db *bun.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Create(ctx context.Context, game *domain.Game) error {
	row := gameToRow(game)
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *GameRepository) Get(ctx context.Context, id uuid.UUID) (domain.Game, error) {
	row := new(gameRow)
	err := r.db.NewSelect().Model(row).Where("g.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("get game: %w", err)
	}
	return row.toDomain(), nil
}

func (r *GameRepository) Save(ctx context.Context, game *domain.Game) error {
	row := gameToRow(game)
	res, err := r.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

func gameToRow(game *domain.Game) *gameRow {
	return &gameRow{
		ID:          game.ID,
		Name:        game.Name,
		IsActive:    game.IsActive,
		IsCompleted: game.IsCompleted,
		StartTime:   game.StartTime,
		EndTime:     game.EndTime,
		WinnerTeam:  game.WinnerTeam,
	}
}

// UserRepository is the bun-backed credential store.
type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	row := &userRow{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := new(userRow)
	err := r.db.NewSelect().Model(row).Where("u.email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return domain.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}, nil
}

// SettingsRepository stores the singleton settings blob in a one-row table.
type SettingsRepository struct {
	db *bun.DB
}

func NewSettingsRepository(db *bun.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (json.RawMessage, error) {
	row := new(settingsRow)
	err := r.db.NewSelect().Model(row).Where("s.id = 1").Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return json.RawMessage(`{}`), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if len(row.Data) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return row.Data, nil
}

func (r *SettingsRepository) Put(ctx context.Context, blob json.RawMessage) error {
	row := &settingsRow{ID: 1, Data: blob}
	if _, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx); err != nil {
		return fmt.Errorf("store settings: %w", err)
	}
	return nil
}
