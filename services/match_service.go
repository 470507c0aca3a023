package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/opencourt/matchday/brackets"
	"github.com/opencourt/matchday/models"
	"github.com/opencourt/matchday/repositories"
)

// EnterResultInput carries a score/status update for one match.
type EnterResultInput struct {
	ScoreA *int               `json:"score_a"`
	ScoreB *int               `json:"score_b"`
	Status models.MatchStatus `json:"status"`
}

// MatchUpdateResult is everything a single result entry caused: the
// updated match, the propagation outcome (for completed matches) and the
// recalculated pool table (for pool matches).
type MatchUpdateResult struct {
	Match       *models.Match          `json:"match"`
	Propagation *PropagationOutcome    `json:"propagation,omitempty"`
	Standings   []brackets.StandingRow `json:"standings,omitempty"`
}

type MatchService interface {
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListByPhase(ctx context.Context, phaseID int) ([]*models.Match, error)
	ListByPool(ctx context.Context, poolID int) ([]*models.Match, error)
	// EnterResult validates the status transition, persists the result
	// and, for completed matches, runs propagation and pool standings
	// recalculation in the same transaction.
	EnterResult(ctx context.Context, matchID int, input EnterResultInput) (*MatchUpdateResult, error)
}

type matchService struct {
	txRunner    repositories.TxRunner
	matchRepo   repositories.MatchRepository
	progression ProgressionService
	standings   StandingsService
	liveSvc     LiveService
	logger      *slog.Logger
}

func NewMatchService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	progression ProgressionService,
	standings StandingsService,
	liveSvc LiveService,
	logger *slog.Logger,
) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &matchService{
		txRunner:    txRunner,
		matchRepo:   matchRepo,
		progression: progression,
		standings:   standings,
		liveSvc:     liveSvc,
		logger:      logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w: match %d", ErrMatchNotFound, id)
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) ListByPhase(ctx context.Context, phaseID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByPhase(ctx, nil, phaseID)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}

func (s *matchService) ListByPool(ctx context.Context, poolID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByPool(ctx, nil, poolID)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}

func (s *matchService) EnterResult(ctx context.Context, matchID int, input EnterResultInput) (*MatchUpdateResult, error) {
	result := &MatchUpdateResult{}
	err := s.txRunner.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, tx, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return fmt.Errorf("%w: match %d", ErrMatchNotFound, matchID)
			}
			return err
		}

		if !models.IsValidMatchStatusTransition(match.Status, input.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidMatchStatusTransition, match.Status, input.Status)
		}
		if input.Status == models.MatchStatusCompleted && (input.ScoreA == nil || input.ScoreB == nil) {
			return ErrScoresRequired
		}

		if err := s.matchRepo.UpdateResult(ctx, tx, matchID, input.ScoreA, input.ScoreB, input.Status); err != nil {
			return err
		}
		match.ScoreA = input.ScoreA
		match.ScoreB = input.ScoreB
		match.Status = input.Status
		result.Match = match

		if input.Status != models.MatchStatusCompleted {
			return nil
		}

		outcome, err := s.progression.PropagateTx(ctx, tx, matchID)
		if err != nil {
			return err
		}
		result.Propagation = outcome

		if match.PoolID != nil {
			rows, err := s.standings.RecalculatePool(ctx, tx, *match.PoolID)
			if err != nil {
				return err
			}
			result.Standings = rows
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Subscribers get the final score after commit; the stored snapshot
	// is only meaningful while the match runs.
	if s.liveSvc != nil && result.Match.Status.Terminal() {
		s.liveSvc.PublishResult(ctx, result.Match)
	}
	return result, nil
}
