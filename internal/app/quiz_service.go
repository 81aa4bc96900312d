package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"escaperoom-service/internal/domain"
)

const (
	linkLength       = 13
	linkAlphabet     = "abcdefghijklmnopqrstuvwxyz0123456789"
	defaultTotalTime = 30
	defaultTimeLimit = 120
)

// QuizService owns the quiz lifecycle and the authoritative scoring step.
type QuizService struct {
	quizzes     QuizRepository
	cache       QuizCache
	submissions SubmissionRepository
	teams       TeamRepository
	progress    ProgressStore
	hub         *LeaderboardHub
	leaderboard *LeaderboardService
	now         func() time.Time
}

func NewQuizService(
	quizzes QuizRepository,
	cache QuizCache,
	submissions SubmissionRepository,
	teams TeamRepository,
	progress ProgressStore,
	leaderboard *LeaderboardService,
	hub *LeaderboardHub,
) *QuizService {
	return &QuizService{
		quizzes:     quizzes,
		cache:       cache,
		submissions: submissions,
		teams:       teams,
		progress:    progress,
		leaderboard: leaderboard,
		hub:         hub,
		now:         time.Now,
	}
}

// QuestionInput is a question as supplied by the admin create/update calls.
type QuestionInput struct {
	Text             string
	Answer           string
	TimeLimitSeconds int
}

// CreateQuizInput carries everything needed to create a quiz atomically.
type CreateQuizInput struct {
	Title            string
	Description      string
	Questions        []QuestionInput
	TotalTimeMinutes int
	IsPublished      bool
	SequentialUnlock bool
}

// Create stores a quiz with its questions numbered sequentially from 1 and
// returns it along with the relative public path.
func (s *QuizService) Create(ctx context.Context, input CreateQuizInput) (domain.Quiz, string, error) {
	link, err := generateLink()
	if err != nil {
		return domain.Quiz{}, "", fmt.Errorf("generate link: %w", err)
	}

	quiz := domain.Quiz{
		ID:               uuid.New(),
		Title:            input.Title,
		Description:      input.Description,
		Link:             link,
		IsPublished:      input.IsPublished,
		TotalTimeMinutes: input.TotalTimeMinutes,
		SequentialUnlock: input.SequentialUnlock,
		Questions:        buildQuestions(input.Questions),
		CreatedAt:        s.now(),
	}
	if quiz.TotalTimeMinutes <= 0 {
		quiz.TotalTimeMinutes = defaultTotalTime
	}

	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return domain.Quiz{}, "", err
	}

	logrus.WithFields(logrus.Fields{
		"quiz_id":   quiz.ID,
		"questions": len(quiz.Questions),
	}).Info("quiz created")
	return quiz, "/quiz/" + quiz.Link, nil
}

// Update replaces the quiz wholesale, including its full question list.
func (s *QuizService) Update(ctx context.Context, id uuid.UUID, input CreateQuizInput) (domain.Quiz, error) {
	existing, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.TotalTimeMinutes = input.TotalTimeMinutes
	if existing.TotalTimeMinutes <= 0 {
		existing.TotalTimeMinutes = defaultTotalTime
	}
	existing.SequentialUnlock = input.SequentialUnlock
	existing.IsPublished = input.IsPublished
	existing.Questions = buildQuestions(input.Questions)

	if err := s.quizzes.Update(ctx, &existing); err != nil {
		return domain.Quiz{}, err
	}
	s.cache.Invalidate(ctx, existing.Link)
	return existing, nil
}

// Publish flips the public-visibility gate. Idempotent.
func (s *QuizService) Publish(ctx context.Context, id uuid.UUID) (domain.Quiz, error) {
	quiz, err := s.quizzes.Publish(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	s.cache.Invalidate(ctx, quiz.Link)
	logrus.WithField("quiz_id", id).Info("quiz published")
	return quiz, nil
}

// Delete removes the quiz, cascading to its submissions so deleted quizzes
// leave no ghost leaderboard entries.
func (s *QuizService) Delete(ctx context.Context, id uuid.UUID) error {
	quiz, err := s.quizzes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.quizzes.Delete(ctx, id); err != nil {
		return err
	}
	if s.submissions != nil {
		if err := s.submissions.DeleteByQuiz(ctx, id); err != nil {
			return err
		}
	}
	s.cache.Invalidate(ctx, quiz.Link)
	logrus.WithField("quiz_id", id).Info("quiz deleted")
	s.broadcastLeaderboard(ctx)
	return nil
}

// List returns the admin quiz listing with pagination applied.
func (s *QuizService) List(ctx context.Context, filter QuizFilter) ([]domain.Quiz, Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	quizzes, total, err := s.quizzes.List(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}
	pages := (total + filter.Limit - 1) / filter.Limit
	return quizzes, Pagination{Page: filter.Page, Limit: filter.Limit, Total: total, Pages: pages}, nil
}

// Pagination describes one page of the admin listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// GetPublic returns the published quiz for a link with answers stripped.
// Unknown links and unpublished quizzes are indistinguishable.
func (s *QuizService) GetPublic(ctx context.Context, link string) (domain.Quiz, error) {
	quiz, err := s.cache.GetPublished(ctx, link)
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz.PublicView(), nil
}

// CheckAnswer verifies a single answer interactively. It is advisory only:
// the authoritative score is always recomputed on Submit. When sequential
// unlock is enabled the gate is enforced against the server-side progress
// record for the team, never against client-supplied state.
func (s *QuizService) CheckAnswer(ctx context.Context, link, teamName string, questionIndex int, answer string) (bool, error) {
	quiz, err := s.cache.GetPublished(ctx, link)
	if err != nil {
		return false, err
	}

	order := questionIndex + 1
	question, ok := quiz.QuestionByOrder(order)
	if !ok {
		return false, domain.ErrQuestionNotFound
	}

	if quiz.SequentialUnlock {
		unlocked, err := s.progress.IsUnlocked(ctx, link, teamName, order)
		if err != nil {
			return false, err
		}
		if !unlocked {
			return false, domain.ErrQuestionLocked
		}
	}

	correct := question.AnswerMatches(answer)
	if correct {
		if err := s.progress.MarkCleared(ctx, link, teamName, order); err != nil {
			// A failed progress write only delays unlocking; the check result stands.
			logrus.WithError(err).Warn("failed to record question progress")
		}
	}
	return correct, nil
}

// SubmittedAnswer is one answer in a full submission.
type SubmittedAnswer struct {
	Answer           string
	TimeSpentSeconds int
}

// SubmitResult is returned to the team after the authoritative scoring step.
type SubmitResult struct {
	Score      int `json:"score"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Submit recomputes correctness for every answer server-side, persists one
// immutable submission, and broadcasts the refreshed leaderboard. Repeat
// submissions by the same team create new records.
func (s *QuizService) Submit(ctx context.Context, link, teamName string, answers []SubmittedAnswer, startedAt time.Time) (SubmitResult, error) {
	quiz, err := s.cache.GetPublished(ctx, link)
	if err != nil {
		return SubmitResult{}, err
	}

	questions := append([]domain.Question(nil), quiz.Questions...)
	sort.Slice(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })

	records := make([]domain.AnswerRecord, len(questions))
	score := 0
	for i, question := range questions {
		record := domain.AnswerRecord{QuestionOrder: question.Order}
		if i < len(answers) {
			record.Answer = answers[i].Answer
			record.TimeSpentSeconds = answers[i].TimeSpentSeconds
			record.IsCorrect = question.AnswerMatches(answers[i].Answer)
		}
		if record.IsCorrect {
			score++
		}
		records[i] = record
	}

	now := s.now()
	if startedAt.IsZero() {
		startedAt = now
	}
	submission := domain.Submission{
		ID:          uuid.New(),
		QuizID:      quiz.ID,
		QuizTitle:   quiz.Title,
		TeamName:    teamName,
		Answers:     records,
		Score:       score,
		Percentage:  domain.Percentage(score, len(questions)),
		StartedAt:   startedAt,
		SubmittedAt: now,
	}

	if err := s.ensureTeam(ctx, teamName, quiz.Title); err != nil {
		return SubmitResult{}, err
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return SubmitResult{}, err
	}

	logrus.WithFields(logrus.Fields{
		"quiz_id": quiz.ID,
		"team":    teamName,
		"score":   score,
		"total":   len(questions),
	}).Info("submission recorded")

	s.broadcastLeaderboard(ctx)
	return SubmitResult{Score: score, Total: len(questions), Percentage: submission.Percentage}, nil
}

// Results returns the submissions for one quiz in leaderboard order.
func (s *QuizService) Results(ctx context.Context, quizID uuid.UUID) ([]domain.Submission, error) {
	if _, err := s.quizzes.GetByID(ctx, quizID); err != nil {
		return nil, err
	}
	submissions, err := s.submissions.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	SortSubmissions(submissions)
	return submissions, nil
}

// GetByID returns the full quiz, answers included, for the admin editor.
func (s *QuizService) GetByID(ctx context.Context, id uuid.UUID) (domain.Quiz, error) {
	return s.quizzes.GetByID(ctx, id)
}

// ensureTeam creates a team record on first submission under that name.
func (s *QuizService) ensureTeam(ctx context.Context, name, quizTitle string) error {
	_, err := s.teams.GetByName(ctx, name)
	if err == nil {
		return nil
	}
	if err != domain.ErrTeamNotFound {
		return err
	}
	team := domain.Team{
		ID:          uuid.New(),
		Name:        name,
		Description: "Team created from quiz: " + quizTitle,
		CreatedBy:   "system",
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}
	if err := s.teams.Create(ctx, &team); err != nil && err != domain.ErrTeamExists {
		return err
	}
	return nil
}

func (s *QuizService) broadcastLeaderboard(ctx context.Context) {
	if s.hub == nil || s.leaderboard == nil {
		return
	}
	lb, err := s.leaderboard.Global(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to rebuild leaderboard for broadcast")
		return
	}
	s.hub.Broadcast(lb)
}

func buildQuestions(inputs []QuestionInput) []domain.Question {
	questions := make([]domain.Question, len(inputs))
	for i, input := range inputs {
		limit := input.TimeLimitSeconds
		if limit <= 0 {
			limit = defaultTimeLimit
		}
		questions[i] = domain.Question{
			Text:             input.Text,
			CorrectAnswer:    input.Answer,
			Order:            i + 1,
			TimeLimitSeconds: limit,
		}
	}
	return questions
}

// generateLink produces the opaque public access token for a quiz.
func generateLink() (string, error) {
	max := big.NewInt(int64(len(linkAlphabet)))
	buf := make([]byte, linkLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = linkAlphabet[n.Int64()]
	}
	return string(buf), nil
}
