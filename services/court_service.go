package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencourt/matchday/models"
	"github.com/opencourt/matchday/repositories"
)

type CourtService interface {
	Create(ctx context.Context, tournamentID int, name string) (*models.Court, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Court, error)
	Delete(ctx context.Context, id int) error
}

type courtService struct {
	courtRepo      repositories.CourtRepository
	tournamentRepo repositories.TournamentRepository
}

func NewCourtService(courtRepo repositories.CourtRepository, tournamentRepo repositories.TournamentRepository) CourtService {
	return &courtService{courtRepo: courtRepo, tournamentRepo: tournamentRepo}
}

func (s *courtService) Create(ctx context.Context, tournamentID int, name string) (*models.Court, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, tournamentID)
		}
		return nil, err
	}

	court := &models.Court{TournamentID: tournamentID, Name: name}
	if err := s.courtRepo.Create(ctx, nil, court); err != nil {
		return nil, err
	}
	return court, nil
}

func (s *courtService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Court, error) {
	courts, err := s.courtRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if courts == nil {
		return []*models.Court{}, nil
	}
	return courts, nil
}

func (s *courtService) Delete(ctx context.Context, id int) error {
	err := s.courtRepo.Delete(ctx, nil, id)
	if errors.Is(err, repositories.ErrCourtNotFound) {
		return fmt.Errorf("%w: court %d", ErrCourtNotFound, id)
	}
	return err
}
