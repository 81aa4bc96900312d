package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"

	"escaperoom-service/internal/app"
	"escaperoom-service/internal/domain"
	"escaperoom-service/internal/infra/postgres"
	"escaperoom-service/internal/infra/postgres/migrations"
	infraredis "escaperoom-service/internal/infra/redis"
)

func TestQuizFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db, err := postgres.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pgx pool: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizzes := postgres.NewQuizRepository(db)
	loader := postgres.NewQuizLoader(pool)
	cache := infraredis.NewQuizCache(redisClient, loader, 5*time.Minute)
	progress := infraredis.NewProgressStore(redisClient, time.Hour)
	submissions := postgres.NewSubmissionRepository(db)
	teams := postgres.NewTeamRepository(db)

	hub := app.NewLeaderboardHub()
	leaderboard := app.NewLeaderboardService(submissions)
	service := app.NewQuizService(quizzes, cache, submissions, teams, progress, leaderboard, hub)

	quiz, _, err := service.Create(ctx, app.CreateQuizInput{
		Title:            "Boiler Room",
		Description:      "Two locks, two codes",
		SequentialUnlock: true,
		Questions: []app.QuestionInput{
			{Text: "First code?", Answer: "1879", TimeLimitSeconds: 90},
			{Text: "Second code?", Answer: "Helix"},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	// Draft quizzes stay off the public path.
	if _, err := service.GetPublic(ctx, quiz.Link); err != domain.ErrQuizNotFound {
		t.Fatalf("expected draft hidden, got %v", err)
	}
	if _, err := service.Publish(ctx, quiz.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}

	public, err := service.GetPublic(ctx, quiz.Link)
	if err != nil {
		t.Fatalf("get public: %v", err)
	}
	if len(public.Questions) != 2 || public.Questions[0].CorrectAnswer != "" {
		t.Fatalf("unexpected public quiz %+v", public)
	}

	// Sequential unlock is enforced across the redis progress store.
	if _, err := service.CheckAnswer(ctx, quiz.Link, "Team Rocket", 1, "helix"); err != domain.ErrQuestionLocked {
		t.Fatalf("expected locked second question, got %v", err)
	}
	correct, err := service.CheckAnswer(ctx, quiz.Link, "Team Rocket", 0, " 1879 ")
	if err != nil || !correct {
		t.Fatalf("expected first answer correct, got %v %v", correct, err)
	}
	correct, err = service.CheckAnswer(ctx, quiz.Link, "Team Rocket", 1, "HELIX")
	if err != nil || !correct {
		t.Fatalf("expected second answer correct after unlock, got %v %v", correct, err)
	}

	result, err := service.Submit(ctx, quiz.Link, "Team Rocket", []app.SubmittedAnswer{
		{Answer: "1879", TimeSpentSeconds: 40},
		{Answer: "wrong", TimeSpentSeconds: 70},
	}, time.Now().Add(-2*time.Minute))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 1 || result.Percentage != 50 {
		t.Fatalf("expected 1/2 at 50%%, got %+v", result)
	}

	// Submitting auto-created the team.
	team, err := teams.GetByName(ctx, "Team Rocket")
	if err != nil {
		t.Fatalf("team lookup: %v", err)
	}
	if team.Name != "Team Rocket" {
		t.Fatalf("unexpected team %+v", team)
	}

	board, err := leaderboard.Global(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board.Entries) != 1 || board.Entries[0].QuizTitle != "Boiler Room" {
		t.Fatalf("unexpected leaderboard %+v", board.Entries)
	}

	// Deleting the quiz invalidates the cached copy too.
	if err := service.Delete(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := service.GetPublic(ctx, quiz.Link); err != domain.ErrQuizNotFound {
		t.Fatalf("expected deleted quiz hidden, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "escape", "POSTGRES_PASSWORD": "escapepass", "POSTGRES_DB": "escapedb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://escape:escapepass@%s:%s/escapedb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
