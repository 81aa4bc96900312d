package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"escaperoom-service/internal/domain"
)

// TeamService is plain CRUD over team records.
type TeamService struct {
	teams TeamRepository
	now   func() time.Time
}

func NewTeamService(teams TeamRepository) *TeamService {
	return &TeamService{teams: teams, now: time.Now}
}

func (s *TeamService) Create(ctx context.Context, name, description, createdBy string) (domain.Team, error) {
	team := domain.Team{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}
	if err := s.teams.Create(ctx, &team); err != nil {
		return domain.Team{}, err
	}
	logrus.WithField("team", name).Info("team created")
	return team, nil
}

func (s *TeamService) List(ctx context.Context) ([]domain.Team, error) {
	return s.teams.List(ctx)
}

func (s *TeamService) Update(ctx context.Context, id uuid.UUID, name, description string) (domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return domain.Team{}, err
	}
	team.Name = name
	team.Description = description
	team.UpdatedAt = s.now()
	if err := s.teams.Update(ctx, &team); err != nil {
		return domain.Team{}, err
	}
	return team, nil
}

func (s *TeamService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.teams.GetByID(ctx, id); err != nil {
		return err
	}
	return s.teams.Delete(ctx, id)
}
