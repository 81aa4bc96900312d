package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the handlers and the admin key into the router.
type RouterConfig struct {
	Quiz        *QuizHandler
	Game        *GameHandler
	Team        *TeamHandler
	Leaderboard *LeaderboardHandler
	Settings    *SettingsHandler
	Auth        *AuthHandler
	WS          *WSHandler
	AdminKey    string
}

// NewRouter wires the full HTTP surface.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{
				"status":    "OK",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
		})

		r.Route("/quiz", func(r chi.Router) {
			r.Post("/create", cfg.Quiz.Create)
			r.Get("/", cfg.Quiz.List)
			r.Post("/{id}/publish", cfg.Quiz.Publish)
			r.Get("/{id}/results", cfg.Quiz.Results)
			r.Get("/{id}", cfg.Quiz.Get)
			r.Put("/{id}", cfg.Quiz.Update)
			r.Delete("/{id}", cfg.Quiz.Delete)

			// Public, link-keyed surface. Links never collide with UUIDs,
			// but the routes are namespaced anyway to keep chi patterns simple.
			r.Route("/link/{link}", func(r chi.Router) {
				r.Get("/", cfg.Quiz.GetPublic)
				r.Post("/check", cfg.Quiz.Check)
				r.Post("/submit", cfg.Quiz.Submit)
			})
		})

		r.Route("/event", func(r chi.Router) {
			r.Get("/status/{gameId}", cfg.Game.Status)

			r.Group(func(r chi.Router) {
				r.Use(RequireAdminKey(cfg.AdminKey))
				r.Post("/start", cfg.Game.Start)
				r.Post("/pause", cfg.Game.Pause)
				r.Post("/reset", cfg.Game.Reset)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", cfg.Team.List)
			r.Post("/", cfg.Team.Create)
			r.Put("/{id}", cfg.Team.Update)
			r.Delete("/{id}", cfg.Team.Delete)
		})

		r.Get("/leaderboard", cfg.Leaderboard.Get)
		r.Get("/results", cfg.Leaderboard.Get)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", cfg.Settings.Get)
			r.Post("/", cfg.Settings.Put)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)
		})
	})

	r.Get("/ws/leaderboard", cfg.WS.ServeWS)

	return r
}
