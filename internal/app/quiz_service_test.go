package app_test

import (
	"context"
	"testing"
	"time"

	"escaperoom-service/internal/app"
	"escaperoom-service/internal/domain"
	"escaperoom-service/internal/infra/memory"
)

type testEnv struct {
	service     *app.QuizService
	teams       *memory.TeamRepository
	submissions *memory.SubmissionRepository
	leaderboard *app.LeaderboardService
	hub         *app.LeaderboardHub
}

func newTestEnv() testEnv {
	quizzes := memory.NewQuizRepository()
	submissions := memory.NewSubmissionRepository()
	teams := memory.NewTeamRepository()
	hub := app.NewLeaderboardHub()
	leaderboard := app.NewLeaderboardService(submissions)
	service := app.NewQuizService(
		quizzes,
		memory.NewQuizCache(quizzes, time.Minute),
		submissions,
		teams,
		memory.NewProgressStore(),
		leaderboard,
		hub,
	)
	return testEnv{service: service, teams: teams, submissions: submissions, leaderboard: leaderboard, hub: hub}
}

func sampleInput(published bool) app.CreateQuizInput {
	return app.CreateQuizInput{
		Title:       "Warm-up Round",
		Description: "sample",
		Questions: []app.QuestionInput{
			{Text: "What is 2 + 2?", Answer: "4"},
			{Text: "What is the capital of France?", Answer: "Paris"},
		},
		TotalTimeMinutes: 10,
		IsPublished:      published,
	}
}

func TestCreateAssignsLinkAndOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	quiz, link, err := env.service.Create(ctx, sampleInput(true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.Link == "" || link != "/quiz/"+quiz.Link {
		t.Fatalf("expected relative link, got %q for quiz link %q", link, quiz.Link)
	}
	for i, question := range quiz.Questions {
		if question.Order != i+1 {
			t.Fatalf("expected question %d to have order %d, got %d", i, i+1, question.Order)
		}
	}
	if quiz.Questions[0].TimeLimitSeconds != 120 {
		t.Fatalf("expected default time limit 120, got %d", quiz.Questions[0].TimeLimitSeconds)
	}
}

func TestUnpublishedQuizIsInvisible(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	quiz, _, err := env.service.Create(ctx, sampleInput(false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.service.GetPublic(ctx, quiz.Link); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound for draft link, got %v", err)
	}

	if _, err := env.service.Publish(ctx, quiz.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	public, err := env.service.GetPublic(ctx, quiz.Link)
	if err != nil {
		t.Fatalf("get public: %v", err)
	}
	for _, question := range public.Questions {
		if question.CorrectAnswer != "" {
			t.Fatalf("expected answers stripped from public view, got %q", question.CorrectAnswer)
		}
	}
}

func TestSubmitScoresAllCorrect(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	quiz, _, err := env.service.Create(ctx, sampleInput(true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := env.service.Submit(ctx, quiz.Link, "Team Rocket", []app.SubmittedAnswer{
		{Answer: "4"},
		{Answer: "paris"}, // case-insensitive
	}, time.Time{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 2 || result.Total != 2 || result.Percentage != 100 {
		t.Fatalf("expected 2/2 at 100%%, got %+v", result)
	}
}

func TestSubmitScoresPartial(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	quiz, _, err := env.service.Create(ctx, sampleInput(true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := env.service.Submit(ctx, quiz.Link, "Team Rocket", []app.SubmittedAnswer{
		{Answer: "5"},
		{Answer: " Paris "}, // trimmed before comparison
	}, time.Time{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 1 || result.Total != 2 || result.Percentage != 50 {
		t.Fatalf("expected 1/2 at 50%%, got %+v", result)
	}

	submissions, err := env.submissions.ListAll(ctx)
	if err != nil {
		t.Fatalf("list submissions: %v", err)
	}
	if len(submissions) != 1 {
		t.Fatalf("expected one submission, got %d", len(submissions))
	}
	correct := 0
	for _, record := range submissions[0].Answers {
		if record.IsCorrect {
			correct++
		}
	}
	if correct != submissions[0].Score {
		t.Fatalf("score %d does not match %d correct records", submissions[0].Score, correct)
	}
}

func TestSubmitToDraftQuizFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	quiz, _, err := env.service.Create(ctx, sampleInput(false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.service.Submit(ctx, quiz.Link, "Team Rocket", nil, time.Time{}); err != domain.ErrQuizNotFound {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestSubmitCreatesTeamOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	quiz, _, err := env.service.Create(ctx, sampleInput(true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := env.service.Submit(ctx, quiz.Link, "Repeaters", []app.SubmittedAnswer{{Answer: "4"}, {Answer: "Paris"}}, time.Time{}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	teams, err := env.teams.List(ctx)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(teams) != 1 {
		t.Fatalf("expected team created exactly once, got %d", len(teams))
	}
	// Resubmission is allowed and creates a second leaderboard row.
	submissions, _ := env.submissions.ListAll(ctx)
	if len(submissions) != 2 {
		t.Fatalf("expected both submissions recorded, got %d", len(submissions))
	}
}

func TestSequentialUnlockGate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	input := sampleInput(true)
	input.SequentialUnlock = true
	input.Questions = append(input.Questions, app.QuestionInput{Text: "Third", Answer: "c"})
	quiz, _, err := env.service.Create(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.service.CheckAnswer(ctx, quiz.Link, "Solvers", 1, "Paris"); err != domain.ErrQuestionLocked {
		t.Fatalf("expected question 2 locked, got %v", err)
	}

	correct, err := env.service.CheckAnswer(ctx, quiz.Link, "Solvers", 0, "4")
	if err != nil || !correct {
		t.Fatalf("expected question 1 correct, got correct=%v err=%v", correct, err)
	}

	correct, err = env.service.CheckAnswer(ctx, quiz.Link, "Solvers", 1, "wrong")
	if err != nil {
		t.Fatalf("expected question 2 unlocked after clearing question 1, got %v", err)
	}
	if correct {
		t.Fatalf("expected wrong answer to be judged incorrect")
	}
	// A wrong answer must not unlock the next question.
	if _, err := env.service.CheckAnswer(ctx, quiz.Link, "Solvers", 2, "c"); err != domain.ErrQuestionLocked {
		t.Fatalf("expected question 3 still locked, got %v", err)
	}
	// Progress is per team.
	if _, err := env.service.CheckAnswer(ctx, quiz.Link, "Others", 1, "Paris"); err != domain.ErrQuestionLocked {
		t.Fatalf("expected question 2 locked for another team, got %v", err)
	}
}

func TestCheckAnswerUnknownQuestion(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	quiz, _, err := env.service.Create(ctx, sampleInput(true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.service.CheckAnswer(ctx, quiz.Link, "Solvers", 9, "x"); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestDeleteHidesPublicLink(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	quiz, _, err := env.service.Create(ctx, sampleInput(true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.service.GetPublic(ctx, quiz.Link); err != nil {
		t.Fatalf("get public: %v", err)
	}
	if err := env.service.Delete(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.service.GetPublic(ctx, quiz.Link); err != domain.ErrQuizNotFound {
		t.Fatalf("expected deleted quiz to vanish, got %v", err)
	}
}

func TestDeleteCascadesToSubmissions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	quiz, _, err := env.service.Create(ctx, sampleInput(true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.service.Submit(ctx, quiz.Link, "Ghost Team", []app.SubmittedAnswer{{Answer: "4"}, {Answer: "Paris"}}, time.Time{}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := env.service.Delete(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	submissions, err := env.submissions.ListAll(ctx)
	if err != nil {
		t.Fatalf("list submissions: %v", err)
	}
	if len(submissions) != 0 {
		t.Fatalf("expected submissions removed with the quiz, got %d", len(submissions))
	}
	board, err := env.leaderboard.Global(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 0 {
		t.Fatalf("expected empty leaderboard after deletion, got %+v", board.Entries)
	}
}

func TestUpdateReplacesQuestions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	quiz, _, err := env.service.Create(ctx, sampleInput(true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// Warm the cache with the original question set.
	if _, err := env.service.GetPublic(ctx, quiz.Link); err != nil {
		t.Fatalf("get public: %v", err)
	}

	updated, err := env.service.Update(ctx, quiz.ID, app.CreateQuizInput{
		Title:       "Warm-up Round v2",
		IsPublished: true,
		Questions: []app.QuestionInput{
			{Text: "What is 3 + 3?", Answer: "6"},
			{Text: "What is the capital of Spain?", Answer: "Madrid"},
			{Text: "What color is the sky?", Answer: "blue"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Link != quiz.Link {
		t.Fatalf("expected link to survive update, got %q", updated.Link)
	}
	if len(updated.Questions) != 3 {
		t.Fatalf("expected question list replaced, got %d questions", len(updated.Questions))
	}
	for i, question := range updated.Questions {
		if question.Order != i+1 {
			t.Fatalf("expected question %d renumbered to order %d, got %d", i, i+1, question.Order)
		}
	}

	// The update must invalidate the cached copy on the public path.
	public, err := env.service.GetPublic(ctx, quiz.Link)
	if err != nil {
		t.Fatalf("get public after update: %v", err)
	}
	if public.Title != "Warm-up Round v2" || len(public.Questions) != 3 {
		t.Fatalf("expected updated quiz served publicly, got %q with %d questions", public.Title, len(public.Questions))
	}

	// Scoring runs against the replacement questions.
	result, err := env.service.Submit(ctx, quiz.Link, "Team Rocket", []app.SubmittedAnswer{
		{Answer: "6"}, {Answer: "madrid"}, {Answer: "green"},
	}, time.Time{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 2 || result.Total != 3 || result.Percentage != 67 {
		t.Fatalf("expected 2/3 at 67%%, got %+v", result)
	}
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	for i := 0; i < 3; i++ {
		input := sampleInput(i%2 == 0)
		if _, _, err := env.service.Create(ctx, input); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	quizzes, pagination, err := env.service.List(ctx, app.QuizFilter{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 2 || pagination.Total != 3 || pagination.Pages != 2 {
		t.Fatalf("unexpected page: %d quizzes, pagination %+v", len(quizzes), pagination)
	}

	published, _, err := env.service.List(ctx, app.QuizFilter{Status: "published"})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(published) != 2 {
		t.Fatalf("expected 2 published quizzes, got %d", len(published))
	}
}

func TestPercentageRounding(t *testing.T) {
	cases := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{3, 3, 100},
	}
	for _, tc := range cases {
		if got := domain.Percentage(tc.score, tc.total); got != tc.want {
			t.Fatalf("Percentage(%d, %d) = %d, want %d", tc.score, tc.total, got, tc.want)
		}
	}
}
