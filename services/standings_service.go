package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/opencourt/matchday/brackets"
	"github.com/opencourt/matchday/repositories"
)

// StandingsService computes pool tables. There is exactly one ranking
// algorithm (brackets.ComputeStandings); the standings endpoint and the
// source resolver's pool-rank rule both go through it, so the two can
// never disagree.
type StandingsService interface {
	// PoolStandings returns the ranked table of a pool without touching
	// stored state. An empty pool yields an empty table, not an error.
	PoolStandings(ctx context.Context, poolID int) ([]brackets.StandingRow, error)
	// PoolStandingsTx is PoolStandings on a caller-supplied executor.
	PoolStandingsTx(ctx context.Context, exec repositories.SQLExecutor, poolID int) ([]brackets.StandingRow, error)
	// RecalculatePool recomputes the table and persists every standing
	// row from scratch, including the dense 1..N positions.
	RecalculatePool(ctx context.Context, exec repositories.SQLExecutor, poolID int) ([]brackets.StandingRow, error)
}

type standingsService struct {
	poolRepo         repositories.PoolRepository
	poolTeamRepo     repositories.PoolTeamRepository
	matchRepo        repositories.MatchRepository
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	logger           *slog.Logger
}

func NewStandingsService(
	poolRepo repositories.PoolRepository,
	poolTeamRepo repositories.PoolTeamRepository,
	matchRepo repositories.MatchRepository,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) StandingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &standingsService{
		poolRepo:         poolRepo,
		poolTeamRepo:     poolTeamRepo,
		matchRepo:        matchRepo,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		logger:           logger,
	}
}

func (s *standingsService) PoolStandings(ctx context.Context, poolID int) ([]brackets.StandingRow, error) {
	return s.PoolStandingsTx(ctx, nil, poolID)
}

func (s *standingsService) PoolStandingsTx(ctx context.Context, exec repositories.SQLExecutor, poolID int) ([]brackets.StandingRow, error) {
	pool, err := s.poolRepo.GetByID(ctx, exec, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, fmt.Errorf("%w: pool %d", ErrPoolNotFound, poolID)
		}
		return nil, err
	}

	poolTeams, err := s.poolTeamRepo.ListByPool(ctx, exec, poolID)
	if err != nil {
		return nil, err
	}
	if len(poolTeams) == 0 {
		return []brackets.StandingRow{}, nil
	}

	tournament, err := s.tournamentRepo.GetByPhaseID(ctx, exec, pool.PhaseID)
	if err != nil {
		return nil, err
	}

	names, err := s.teamNames(ctx, exec, tournament.ID)
	if err != nil {
		return nil, err
	}
	seeds := make([]brackets.TeamSeed, 0, len(poolTeams))
	for _, pt := range poolTeams {
		seeds = append(seeds, brackets.TeamSeed{
			RegistrationID: pt.RegistrationID,
			Name:           names[pt.RegistrationID],
		})
	}

	matches, err := s.matchRepo.ListByPool(ctx, exec, poolID)
	if err != nil {
		return nil, err
	}

	scoring := tournament.Scoring()
	rules := brackets.ScoringRules{Win: scoring.WinPoints, Draw: scoring.DrawPoints, Loss: scoring.LossPoints}
	return brackets.ComputeStandings(seeds, matches, rules), nil
}

func (s *standingsService) RecalculatePool(ctx context.Context, exec repositories.SQLExecutor, poolID int) ([]brackets.StandingRow, error) {
	rows, err := s.PoolStandingsTx(ctx, exec, poolID)
	if err != nil {
		return nil, err
	}

	poolTeams, err := s.poolTeamRepo.ListByPool(ctx, exec, poolID)
	if err != nil {
		return nil, err
	}
	byRegistration := make(map[int]brackets.StandingRow, len(rows))
	for _, row := range rows {
		byRegistration[row.RegistrationID] = row
	}

	for _, pt := range poolTeams {
		row, ok := byRegistration[pt.RegistrationID]
		if !ok {
			continue
		}
		position := row.Position
		pt.Points = row.Points
		pt.Played = row.Played
		pt.Wins = row.Wins
		pt.Draws = row.Draws
		pt.Losses = row.Losses
		pt.GoalsFor = row.GoalsFor
		pt.GoalsAgainst = row.GoalsAgainst
		pt.GoalDifference = row.GoalDifference
		pt.Position = &position
		if err := s.poolTeamRepo.UpdateStanding(ctx, exec, pt); err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "pool standings recalculated",
		slog.Int("pool_id", poolID), slog.Int("teams", len(rows)))
	return rows, nil
}

func (s *standingsService) teamNames(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (map[int]string, error) {
	registrations, err := s.registrationRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(registrations))
	for _, reg := range registrations {
		names[reg.ID] = reg.DisplayName()
	}
	return names, nil
}
