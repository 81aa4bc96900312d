package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"escaperoom-service/internal/app"
	"escaperoom-service/internal/config"
	"escaperoom-service/internal/domain"
	"escaperoom-service/internal/infra/postgres"
)

// NewSeedCmd creates a default game record and a sample quiz so a fresh
// deployment has something to point the admin dashboard at.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed a default game and a sample quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			config.InitLogging()
			return runSeed(cmd.Context(), cfg)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config) error {
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	db, err := postgres.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	game := domain.Game{
		ID:   uuid.New(),
		Name: "Escape Room Event",
	}
	if err := postgres.NewGameRepository(db).Create(ctx, &game); err != nil {
		return err
	}
	logrus.WithField("game_id", game.ID).Info("seeded game")

	quizzes := postgres.NewQuizRepository(db)
	quizService := app.NewQuizService(quizzes, noopCache{}, nil, nil, nil, nil, nil)
	quiz, link, err := quizService.Create(ctx, app.CreateQuizInput{
		Title:       "Warm-up Round",
		Description: "A short sample quiz to verify the setup.",
		Questions: []app.QuestionInput{
			{Text: "What is 2 + 2?", Answer: "4"},
			{Text: "What is the capital of France?", Answer: "Paris"},
		},
		TotalTimeMinutes: 10,
	})
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"quiz_id": quiz.ID, "link": link}).Info("seeded sample quiz")
	return nil
}

type noopCache struct{}

func (noopCache) GetPublished(context.Context, string) (domain.Quiz, error) {
	return domain.Quiz{}, domain.ErrQuizNotFound
}
func (noopCache) Invalidate(context.Context, string) {}
