package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/opencourt/matchday/models"
	"github.com/opencourt/matchday/repositories"
)

// CreatePoolInput describes a new pool. RegistrationIDs are optional
// initial members; more can be added later with AddTeam.
type CreatePoolInput struct {
	Name              string `json:"name"`
	OrderNumber       int    `json:"order_number"`
	QualifyingCount   int    `json:"qualifying_count"`
	LoserBracketSpots int    `json:"loser_bracket_spots"`
	RegistrationIDs   []int  `json:"registration_ids"`
}

type PoolService interface {
	CreatePool(ctx context.Context, phaseID int, input CreatePoolInput) (*models.Pool, error)
	// GetPool loads the pool with its member standings and fixtures.
	GetPool(ctx context.Context, poolID int) (*models.Pool, error)
	ListByPhase(ctx context.Context, phaseID int) ([]*models.Pool, error)
	AddTeam(ctx context.Context, poolID, registrationID int) (*models.PoolTeam, error)
	RemoveTeam(ctx context.Context, poolID, registrationID int) error
	DeletePool(ctx context.Context, poolID int) error
}

type poolService struct {
	txRunner         repositories.TxRunner
	poolRepo         repositories.PoolRepository
	poolTeamRepo     repositories.PoolTeamRepository
	phaseRepo        repositories.PhaseRepository
	matchRepo        repositories.MatchRepository
	registrationRepo repositories.RegistrationRepository
	logger           *slog.Logger
}

func NewPoolService(
	txRunner repositories.TxRunner,
	poolRepo repositories.PoolRepository,
	poolTeamRepo repositories.PoolTeamRepository,
	phaseRepo repositories.PhaseRepository,
	matchRepo repositories.MatchRepository,
	registrationRepo repositories.RegistrationRepository,
	logger *slog.Logger,
) PoolService {
	if logger == nil {
		logger = slog.Default()
	}
	return &poolService{
		txRunner:         txRunner,
		poolRepo:         poolRepo,
		poolTeamRepo:     poolTeamRepo,
		phaseRepo:        phaseRepo,
		matchRepo:        matchRepo,
		registrationRepo: registrationRepo,
		logger:           logger,
	}
}

func (s *poolService) CreatePool(ctx context.Context, phaseID int, input CreatePoolInput) (*models.Pool, error) {
	if input.Name == "" {
		return nil, ErrNameRequired
	}
	if input.OrderNumber <= 0 {
		return nil, fmt.Errorf("%w: pool order number must be positive", ErrValidationFailed)
	}
	if input.QualifyingCount < 0 || input.LoserBracketSpots < 0 {
		return nil, fmt.Errorf("%w: qualifying and loser bracket counts cannot be negative", ErrValidationFailed)
	}

	pool := &models.Pool{
		PhaseID:          phaseID,
		Name:             input.Name,
		OrderNumber:      input.OrderNumber,
		QualifyingCount:  input.QualifyingCount,
		LoserBracketSpot: input.LoserBracketSpots,
	}
	err := s.txRunner.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		phase, err := s.phaseRepo.GetByID(ctx, tx, phaseID)
		if err != nil {
			if errors.Is(err, repositories.ErrPhaseNotFound) {
				return fmt.Errorf("%w: phase %d", ErrPhaseNotFound, phaseID)
			}
			return err
		}
		if phase.Type != models.PhaseTypePools {
			return fmt.Errorf("%w: phase %d is %s, want %s", ErrPhaseTypeMismatch, phaseID, phase.Type, models.PhaseTypePools)
		}

		if err := s.poolRepo.Create(ctx, tx, pool); err != nil {
			return err
		}
		for _, regID := range input.RegistrationIDs {
			if _, err := s.addMember(ctx, tx, pool, phase.TournamentID, regID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *poolService) GetPool(ctx context.Context, poolID int) (*models.Pool, error) {
	pool, err := s.poolRepo.GetByID(ctx, nil, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, fmt.Errorf("%w: pool %d", ErrPoolNotFound, poolID)
		}
		return nil, err
	}

	poolTeams, err := s.poolTeamRepo.ListByPool(ctx, nil, poolID)
	if err != nil {
		return nil, err
	}
	for _, pt := range poolTeams {
		pool.Teams = append(pool.Teams, *pt)
	}

	matches, err := s.matchRepo.ListByPool(ctx, nil, poolID)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		pool.Matches = append(pool.Matches, *m)
	}
	return pool, nil
}

func (s *poolService) ListByPhase(ctx context.Context, phaseID int) ([]*models.Pool, error) {
	pools, err := s.poolRepo.ListByPhase(ctx, nil, phaseID)
	if err != nil {
		return nil, err
	}
	if pools == nil {
		return []*models.Pool{}, nil
	}
	return pools, nil
}

func (s *poolService) AddTeam(ctx context.Context, poolID, registrationID int) (*models.PoolTeam, error) {
	var poolTeam *models.PoolTeam
	err := s.txRunner.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		pool, err := s.poolRepo.GetByID(ctx, tx, poolID)
		if err != nil {
			if errors.Is(err, repositories.ErrPoolNotFound) {
				return fmt.Errorf("%w: pool %d", ErrPoolNotFound, poolID)
			}
			return err
		}
		phase, err := s.phaseRepo.GetByID(ctx, tx, pool.PhaseID)
		if err != nil {
			return err
		}
		poolTeam, err = s.addMember(ctx, tx, pool, phase.TournamentID, registrationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return poolTeam, nil
}

// addMember validates that the registration belongs to the pool's
// tournament and inserts a zeroed standing row.
func (s *poolService) addMember(ctx context.Context, tx repositories.SQLExecutor, pool *models.Pool, tournamentID, registrationID int) (*models.PoolTeam, error) {
	reg, err := s.registrationRepo.GetByID(ctx, tx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, fmt.Errorf("%w: registration %d", ErrRegistrationNotFound, registrationID)
		}
		return nil, err
	}
	if reg.TournamentID != tournamentID {
		return nil, fmt.Errorf("%w: registration %d belongs to another tournament", ErrValidationFailed, registrationID)
	}

	poolTeam := &models.PoolTeam{
		PoolID:         pool.ID,
		RegistrationID: registrationID,
	}
	if err := s.poolTeamRepo.Add(ctx, tx, poolTeam); err != nil {
		return nil, err
	}
	return poolTeam, nil
}

func (s *poolService) RemoveTeam(ctx context.Context, poolID, registrationID int) error {
	poolTeams, err := s.poolTeamRepo.ListByPool(ctx, nil, poolID)
	if err != nil {
		return err
	}
	for _, pt := range poolTeams {
		if pt.RegistrationID == registrationID {
			return s.poolTeamRepo.Remove(ctx, nil, pt.ID)
		}
	}
	return fmt.Errorf("%w: registration %d in pool %d", ErrRegistrationNotFound, registrationID, poolID)
}

func (s *poolService) DeletePool(ctx context.Context, poolID int) error {
	err := s.poolRepo.Delete(ctx, nil, poolID)
	if errors.Is(err, repositories.ErrPoolNotFound) {
		return fmt.Errorf("%w: pool %d", ErrPoolNotFound, poolID)
	}
	return err
}
