package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"escaperoom-service/internal/app"
	"escaperoom-service/internal/config"
	"escaperoom-service/internal/infra/memory"
	"escaperoom-service/internal/infra/postgres"
	infraredis "escaperoom-service/internal/infra/redis"
	transport "escaperoom-service/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the escape room API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	config.InitLogging()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	progressTTL := config.TTLDuration(cfg.Progress.TTL, 2*time.Hour)

	var (
		quizRepo       app.QuizRepository
		submissionRepo app.SubmissionRepository
		teamRepo       app.TeamRepository
		gameRepo       app.GameRepository
		userRepo       app.UserRepository
		settingsRepo   app.SettingsRepository
		quizCache      app.QuizCache
		progress       app.ProgressStore
	)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}

		db, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer db.Close()

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		quizRepo = postgres.NewQuizRepository(db)
		submissionRepo = postgres.NewSubmissionRepository(db)
		teamRepo = postgres.NewTeamRepository(db)
		gameRepo = postgres.NewGameRepository(db)
		userRepo = postgres.NewUserRepository(db)
		settingsRepo = postgres.NewSettingsRepository(db)

		loader := postgres.NewQuizLoader(pool)
		if redisClient != nil {
			quizCache = infraredis.NewQuizCache(redisClient, loader, quizTTL)
		} else {
			quizCache = memory.NewQuizCache(loader, quizTTL)
		}
	} else {
		logrus.Warn("no postgres url configured, using in-memory stores")
		memQuizzes := memory.NewQuizRepository()
		quizRepo = memQuizzes
		submissionRepo = memory.NewSubmissionRepository()
		teamRepo = memory.NewTeamRepository()
		gameRepo = memory.NewGameRepository()
		userRepo = memory.NewUserRepository()
		settingsRepo = memory.NewSettingsRepository()
		quizCache = memory.NewQuizCache(memQuizzes, quizTTL)
	}

	if redisClient != nil {
		progress = infraredis.NewProgressStore(redisClient, progressTTL)
	} else {
		progress = memory.NewProgressStore()
	}

	hub := app.NewLeaderboardHub()
	leaderboard := app.NewLeaderboardService(submissionRepo)
	quizService := app.NewQuizService(quizRepo, quizCache, submissionRepo, teamRepo, progress, leaderboard, hub)
	gameService := app.NewGameService(gameRepo)
	teamService := app.NewTeamService(teamRepo)
	authService := app.NewAuthService(userRepo)

	router := transport.NewRouter(transport.RouterConfig{
		Quiz:        transport.NewQuizHandler(quizService),
		Game:        transport.NewGameHandler(gameService),
		Team:        transport.NewTeamHandler(teamService),
		Leaderboard: transport.NewLeaderboardHandler(leaderboard),
		Settings:    transport.NewSettingsHandler(settingsRepo),
		Auth:        transport.NewAuthHandler(authService),
		WS:          transport.NewWSHandler(leaderboard, hub),
		AdminKey:    cfg.AdminKey(),
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logrus.WithField("port", finalPort).Info("starting escape room service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logrus.Info("shutting down server...")
	case <-ctx.Done():
		logrus.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
