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

// StructureService turns a configured phase into its persisted match
// graph. Bracket matches are created with symbolic source codes and
// prewired winner/loser destinations, so the progression engine can fill
// them as results come in.
type StructureService interface {
	// GeneratePoolFixtures creates the round-robin fixtures for every
	// pool of a pools phase, in one transaction.
	GeneratePoolFixtures(ctx context.Context, phaseID int, doubleRound bool) ([]*models.Match, error)
	// GenerateFinalsBracket scaffolds a single-elimination bracket on a
	// bracket phase from the given seed source codes (2, 4 or 8 seeds).
	GenerateFinalsBracket(ctx context.Context, phaseID int, seedSources []string, withThirdPlace bool) ([]*models.Match, error)
	// GenerateLoserBracket scaffolds the consolation chain on a
	// loser-bracket phase (2 or 4 seeds).
	GenerateLoserBracket(ctx context.Context, phaseID int, seedSources []string) ([]*models.Match, error)
}

type structureService struct {
	txRunner         repositories.TxRunner
	phaseRepo        repositories.PhaseRepository
	poolRepo         repositories.PoolRepository
	poolTeamRepo     repositories.PoolTeamRepository
	matchRepo        repositories.MatchRepository
	registrationRepo repositories.RegistrationRepository
	logger           *slog.Logger
}

func NewStructureService(
	txRunner repositories.TxRunner,
	phaseRepo repositories.PhaseRepository,
	poolRepo repositories.PoolRepository,
	poolTeamRepo repositories.PoolTeamRepository,
	matchRepo repositories.MatchRepository,
	registrationRepo repositories.RegistrationRepository,
	logger *slog.Logger,
) StructureService {
	if logger == nil {
		logger = slog.Default()
	}
	return &structureService{
		txRunner:         txRunner,
		phaseRepo:        phaseRepo,
		poolRepo:         poolRepo,
		poolTeamRepo:     poolTeamRepo,
		matchRepo:        matchRepo,
		registrationRepo: registrationRepo,
		logger:           logger,
	}
}

func (s *structureService) GeneratePoolFixtures(ctx context.Context, phaseID int, doubleRound bool) ([]*models.Match, error) {
	var created []*models.Match
	err := s.txRunner.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		phase, err := s.loadPhase(ctx, tx, phaseID, models.PhaseTypePools)
		if err != nil {
			return err
		}

		names, err := s.teamNames(ctx, tx, phase.TournamentID)
		if err != nil {
			return err
		}

		pools, err := s.poolRepo.ListByPhase(ctx, tx, phaseID)
		if err != nil {
			return err
		}
		if len(pools) == 0 {
			return fmt.Errorf("%w: phase %d has no pools", ErrValidationFailed, phaseID)
		}

		// Order numbers run phase-wide so every fixture has a stable,
		// unique number across pools.
		order := 1
		for _, pool := range pools {
			poolTeams, err := s.poolTeamRepo.ListByPool(ctx, tx, pool.ID)
			if err != nil {
				return err
			}
			if len(poolTeams) == 0 {
				return fmt.Errorf("%w: pool %q", ErrPoolHasNoTeams, pool.Name)
			}

			seeds := make([]brackets.TeamSeed, 0, len(poolTeams))
			for _, pt := range poolTeams {
				seeds = append(seeds, brackets.TeamSeed{
					RegistrationID: pt.RegistrationID,
					Name:           names[pt.RegistrationID],
				})
			}

			fixtures, err := brackets.BuildPoolFixtures(brackets.PoolFixtureParams{
				PhaseID:     phaseID,
				Pool:        pool,
				Teams:       seeds,
				DoubleRound: doubleRound,
				FirstOrder:  order,
			})
			if err != nil {
				return fmt.Errorf("%w: %v", ErrValidationFailed, err)
			}
			for _, match := range fixtures {
				if err := s.matchRepo.Create(ctx, tx, match); err != nil {
					return err
				}
			}
			order += len(fixtures)
			created = append(created, fixtures...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "pool fixtures generated",
		slog.Int("phase_id", phaseID), slog.Int("matches", len(created)))
	return created, nil
}

func (s *structureService) GenerateFinalsBracket(ctx context.Context, phaseID int, seedSources []string, withThirdPlace bool) ([]*models.Match, error) {
	scaffold, err := brackets.BuildFinalsBracket(seedSources, withThirdPlace)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return s.persistScaffold(ctx, phaseID, models.PhaseTypeBracket, models.MatchTypeBracket, scaffold)
}

func (s *structureService) GenerateLoserBracket(ctx context.Context, phaseID int, seedSources []string) ([]*models.Match, error) {
	scaffold, err := brackets.BuildLoserBracket(seedSources)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return s.persistScaffold(ctx, phaseID, models.PhaseTypeLoserBracket, models.MatchTypeLoserBracket, scaffold)
}

// persistScaffold writes a bracket scaffold in two passes: create every
// match first to obtain database ids, then rewire the scaffold's UID
// links into winner/loser destination ids.
func (s *structureService) persistScaffold(ctx context.Context, phaseID int, phaseType models.PhaseType, matchType models.MatchType, scaffold []*brackets.BracketMatch) ([]*models.Match, error) {
	created := make([]*models.Match, 0, len(scaffold))
	err := s.txRunner.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		if _, err := s.loadPhase(ctx, tx, phaseID, phaseType); err != nil {
			return err
		}

		ids := make(map[string]int, len(scaffold))
		for i, bm := range scaffold {
			bracketType := bm.Bracket
			sourceA, sourceB := bm.SourceA, bm.SourceB
			match := &models.Match{
				PhaseID:     phaseID,
				Type:        matchType,
				BracketType: &bracketType,
				OrderNumber: bm.OrderNumber,
				Position:    i + 1,
				SourceA:     &sourceA,
				SourceB:     &sourceB,
				LabelA:      slotLabel(sourceA),
				LabelB:      slotLabel(sourceB),
				Status:      models.MatchStatusUpcoming,
			}
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return err
			}
			ids[bm.UID] = match.ID
			created = append(created, match)
		}

		for i, bm := range scaffold {
			var winnerTo, loserTo *int
			var winnerSlot, loserSlot *models.Slot
			if bm.WinnerToUID != nil {
				if id, ok := ids[*bm.WinnerToUID]; ok {
					slot := bm.WinnerToSlot
					winnerTo, winnerSlot = &id, &slot
				}
			}
			if bm.LoserToUID != nil {
				if id, ok := ids[*bm.LoserToUID]; ok {
					slot := bm.LoserToSlot
					loserTo, loserSlot = &id, &slot
				}
			}
			if winnerTo == nil && loserTo == nil {
				continue
			}

			match := created[i]
			if err := s.matchRepo.UpdateDestinations(ctx, tx, match.ID, winnerTo, winnerSlot, loserTo, loserSlot); err != nil {
				return err
			}
			match.WinnerNextMatchID, match.WinnerNextSlot = winnerTo, winnerSlot
			match.LoserNextMatchID, match.LoserNextSlot = loserTo, loserSlot
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "bracket generated",
		slog.Int("phase_id", phaseID),
		slog.String("type", string(matchType)),
		slog.Int("matches", len(created)))
	return created, nil
}

func (s *structureService) loadPhase(ctx context.Context, tx repositories.SQLExecutor, phaseID int, want models.PhaseType) (*models.Phase, error) {
	phase, err := s.phaseRepo.GetByID(ctx, tx, phaseID)
	if err != nil {
		if errors.Is(err, repositories.ErrPhaseNotFound) {
			return nil, fmt.Errorf("%w: phase %d", ErrPhaseNotFound, phaseID)
		}
		return nil, err
	}
	if phase.Type != want {
		return nil, fmt.Errorf("%w: phase %d is %s, want %s", ErrPhaseTypeMismatch, phaseID, phase.Type, want)
	}
	return phase, nil
}

func (s *structureService) teamNames(ctx context.Context, tx repositories.SQLExecutor, tournamentID int) (map[int]string, error) {
	registrations, err := s.registrationRepo.ListByTournament(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(registrations))
	for _, reg := range registrations {
		names[reg.ID] = reg.DisplayName()
	}
	return names, nil
}

// slotLabel renders the placeholder shown for a slot until propagation
// fills in a concrete team.
func slotLabel(code string) *string {
	if code == "" {
		return nil
	}
	label := "Winner " + code
	if ref, ok := brackets.ParseSource(code); ok {
		label = ref.Label()
	}
	return &label
}
