package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"escaperoom-service/internal/domain"
)

// GameService drives the event state machine:
// inactive -> active -> paused -> completed.
type GameService struct {
	games GameRepository
	now   func() time.Time
}

func NewGameService(games GameRepository) *GameService {
	return &GameService{games: games, now: time.Now}
}

// Start activates a game. Rejected with ErrGameActive while the game is
// already active and not completed.
func (s *GameService) Start(ctx context.Context, gameID uuid.UUID) (domain.Game, error) {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return domain.Game{}, err
	}
	if game.IsActive && !game.IsCompleted {
		return domain.Game{}, domain.ErrGameActive
	}

	now := s.now()
	game.IsActive = true
	game.IsCompleted = false
	game.StartTime = &now
	if err := s.games.Save(ctx, &game); err != nil {
		return domain.Game{}, err
	}

	logrus.WithFields(logrus.Fields{"game_id": gameID, "start_time": now}).Info("game started")
	return game, nil
}

// Pause deactivates a running game. Rejected with ErrGameNotActive otherwise.
func (s *GameService) Pause(ctx context.Context, gameID uuid.UUID) (domain.Game, error) {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return domain.Game{}, err
	}
	if !game.IsActive {
		return domain.Game{}, domain.ErrGameNotActive
	}

	game.IsActive = false
	if err := s.games.Save(ctx, &game); err != nil {
		return domain.Game{}, err
	}

	logrus.WithField("game_id", gameID).Info("game paused")
	return game, nil
}

// Reset unconditionally clears all game state back to inactive.
func (s *GameService) Reset(ctx context.Context, gameID uuid.UUID) (domain.Game, error) {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return domain.Game{}, err
	}

	game.IsActive = false
	game.IsCompleted = false
	game.StartTime = nil
	game.EndTime = nil
	game.WinnerTeam = ""
	if err := s.games.Save(ctx, &game); err != nil {
		return domain.Game{}, err
	}

	logrus.WithField("game_id", gameID).Info("game reset")
	return game, nil
}

// Status is a pure read of the game record.
func (s *GameService) Status(ctx context.Context, gameID uuid.UUID) (domain.Game, error) {
	return s.games.Get(ctx, gameID)
}
