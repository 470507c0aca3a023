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

// PropagationOutcome reports what a propagation attempt did. Skipped
// collects the non-fatal reasons (match not ready, draw, destination
// oversubscribed) that merely mean "nothing to do here yet"; hard errors
// are returned separately.
type PropagationOutcome struct {
	MatchID             int      `json:"match_id"`
	WinnerID            *int     `json:"winner_id,omitempty"`
	LoserID             *int     `json:"loser_id,omitempty"`
	WinnerDestinationID *int     `json:"winner_destination_id,omitempty"`
	LoserDestinationID  *int     `json:"loser_destination_id,omitempty"`
	Skipped             []string `json:"skipped,omitempty"`
}

// Propagated reports whether at least one destination slot was written.
func (o *PropagationOutcome) Propagated() bool {
	return o.WinnerDestinationID != nil || o.LoserDestinationID != nil
}

// SweepOutcome reports a bulk resolution pass over a phase.
type SweepOutcome struct {
	PhaseID       int      `json:"phase_id"`
	ResolvedSlots int      `json:"resolved_slots"`
	Unresolved    []string `json:"unresolved,omitempty"`
}

// ProgressionService moves teams through the tournament graph: it
// resolves symbolic source codes and writes winners and losers of
// completed matches into their destination slots.
type ProgressionService interface {
	// Propagate pushes the result of a completed match into its winner
	// and loser destinations, in its own transaction.
	Propagate(ctx context.Context, matchID int) (*PropagationOutcome, error)
	// PropagateTx is Propagate running on a caller-supplied executor, so
	// result entry and propagation commit atomically.
	PropagateTx(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*PropagationOutcome, error)
	// SweepPhase walks every match of a phase and fills each still
	// symbolic slot that has become resolvable. Re-running it when
	// nothing changed performs no writes.
	SweepPhase(ctx context.Context, phaseID int) (*SweepOutcome, error)
	// ResolveSource resolves a symbolic source code within a tournament.
	// A nil result with nil error means "not resolvable yet" (or a
	// malformed code); callers retry later.
	ResolveSource(ctx context.Context, tournamentID int, code string) (*int, error)
}

type progressionService struct {
	txRunner         repositories.TxRunner
	matchRepo        repositories.MatchRepository
	poolRepo         repositories.PoolRepository
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	standings        StandingsService
	logger           *slog.Logger
}

func NewProgressionService(
	txRunner repositories.TxRunner,
	matchRepo repositories.MatchRepository,
	poolRepo repositories.PoolRepository,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	standings StandingsService,
	logger *slog.Logger,
) ProgressionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &progressionService{
		txRunner:         txRunner,
		matchRepo:        matchRepo,
		poolRepo:         poolRepo,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		standings:        standings,
		logger:           logger,
	}
}

func (s *progressionService) Propagate(ctx context.Context, matchID int) (*PropagationOutcome, error) {
	var outcome *PropagationOutcome
	err := s.txRunner.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		var txErr error
		outcome, txErr = s.PropagateTx(ctx, tx, matchID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *progressionService) PropagateTx(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*PropagationOutcome, error) {
	match, err := s.matchRepo.GetByID(ctx, exec, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w: match %d", ErrMatchNotFound, matchID)
		}
		return nil, err
	}

	outcome := &PropagationOutcome{MatchID: matchID}

	// Preconditions, checked in order. Each failure is a structured
	// non-fatal outcome: the caller simply retries once the match is
	// further along.
	switch {
	case match.Status != models.MatchStatusCompleted:
		outcome.Skipped = append(outcome.Skipped, fmt.Sprintf("match %d is not completed (status %s)", matchID, match.Status))
		return outcome, nil
	case match.ScoreA == nil || match.ScoreB == nil:
		outcome.Skipped = append(outcome.Skipped, fmt.Sprintf("match %d has no final score", matchID))
		return outcome, nil
	case *match.ScoreA == *match.ScoreB:
		outcome.Skipped = append(outcome.Skipped, fmt.Sprintf("match %d is a draw, nothing to propagate", matchID))
		return outcome, nil
	case !match.HasConcreteTeams():
		outcome.Skipped = append(outcome.Skipped, fmt.Sprintf("match %d is missing a concrete team", matchID))
		return outcome, nil
	}

	winnerID, loserID := *match.TeamAID, *match.TeamBID
	if *match.ScoreB > *match.ScoreA {
		winnerID, loserID = loserID, winnerID
	}
	outcome.WinnerID = &winnerID
	outcome.LoserID = &loserID

	// A capacity failure on one destination must not abort the other.
	if match.WinnerNextMatchID != nil {
		if err := s.fillDestination(ctx, exec, *match.WinnerNextMatchID, match.WinnerNextSlot, winnerID, outcome, true); err != nil {
			return nil, err
		}
	}
	if match.LoserNextMatchID != nil {
		if err := s.fillDestination(ctx, exec, *match.LoserNextMatchID, match.LoserNextSlot, loserID, outcome, false); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

// fillDestination writes a registration into the destination match,
// honoring the configured slot or falling back to the first free slot,
// A before B. That A-before-B order is a deliberate, documented policy:
// it keeps bracket assignment deterministic when no slot was configured.
func (s *progressionService) fillDestination(ctx context.Context, exec repositories.SQLExecutor, destinationID int, configured *models.Slot, registrationID int, outcome *PropagationOutcome, winner bool) error {
	destination, err := s.matchRepo.GetByID(ctx, exec, destinationID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return fmt.Errorf("%w: destination match %d", ErrMatchNotFound, destinationID)
		}
		return err
	}

	var slot models.Slot
	switch {
	case configured != nil:
		slot = *configured
	case destination.TeamAID == nil:
		slot = models.SlotA
	case destination.TeamBID == nil:
		slot = models.SlotB
	default:
		outcome.Skipped = append(outcome.Skipped, fmt.Sprintf("destination match %d has no free slot", destinationID))
		return nil
	}

	if occupant := destination.SlotTeamID(slot); occupant != nil {
		if *occupant == registrationID {
			// Already propagated; re-running is a no-op.
			outcome.Skipped = append(outcome.Skipped, fmt.Sprintf("destination match %d slot %s already holds registration %d", destinationID, slot, registrationID))
		} else {
			outcome.Skipped = append(outcome.Skipped, fmt.Sprintf("destination match %d slot %s is oversubscribed", destinationID, slot))
		}
		return nil
	}

	if other := destination.SlotTeamID(otherSlot(slot)); other != nil && *other == registrationID {
		outcome.Skipped = append(outcome.Skipped, fmt.Sprintf("destination match %d already holds registration %d in the other slot", destinationID, registrationID))
		return nil
	}

	label := s.displayLabel(ctx, exec, registrationID)
	if err := s.matchRepo.UpdateSlot(ctx, exec, destinationID, slot, registrationID, label); err != nil {
		return err
	}

	if winner {
		outcome.WinnerDestinationID = &destination.ID
	} else {
		outcome.LoserDestinationID = &destination.ID
	}
	s.logger.InfoContext(ctx, "propagated registration into destination slot",
		slog.Int("match_id", outcome.MatchID),
		slog.Int("destination_id", destinationID),
		slog.String("slot", string(slot)),
		slog.Int("registration_id", registrationID),
		slog.Bool("winner", winner))
	return nil
}

// displayLabel resolves the human-readable slot label; a lookup failure
// only means the old placeholder label stays.
func (s *progressionService) displayLabel(ctx context.Context, exec repositories.SQLExecutor, registrationID int) *string {
	registration, err := s.registrationRepo.GetByID(ctx, exec, registrationID)
	if err != nil {
		s.logger.WarnContext(ctx, "could not load registration for slot label",
			slog.Int("registration_id", registrationID), slog.Any("error", err))
		return nil
	}
	if name := registration.DisplayName(); name != "" {
		return &name
	}
	return nil
}

func (s *progressionService) SweepPhase(ctx context.Context, phaseID int) (*SweepOutcome, error) {
	outcome := &SweepOutcome{PhaseID: phaseID}
	err := s.txRunner.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetByPhaseID(ctx, tx, phaseID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return fmt.Errorf("%w: phase %d", ErrPhaseNotFound, phaseID)
			}
			return err
		}

		matches, err := s.matchRepo.ListByPhase(ctx, tx, phaseID)
		if err != nil {
			return err
		}

		for _, match := range matches {
			if match.Status == models.MatchStatusCancelled {
				continue
			}
			if err := s.sweepSlot(ctx, tx, tournament, match, models.SlotA, outcome); err != nil {
				return err
			}
			if err := s.sweepSlot(ctx, tx, tournament, match, models.SlotB, outcome); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *progressionService) sweepSlot(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, match *models.Match, slot models.Slot, outcome *SweepOutcome) error {
	var source *string
	if slot == models.SlotA {
		source = match.SourceA
	} else {
		source = match.SourceB
	}
	if source == nil || *source == "" || match.SlotTeamID(slot) != nil {
		return nil
	}

	ref, ok := brackets.ParseSource(*source)
	if !ok {
		// Malformed codes stay unresolved forever but never fail the sweep.
		outcome.Unresolved = append(outcome.Unresolved, *source)
		return nil
	}

	registrationID, err := s.resolveRef(ctx, exec, tournament, ref)
	if err != nil {
		return err
	}
	if registrationID == nil {
		outcome.Unresolved = append(outcome.Unresolved, *source)
		return nil
	}

	if other := match.SlotTeamID(otherSlot(slot)); other != nil && *other == *registrationID {
		// Both slots must reference different registrations.
		outcome.Unresolved = append(outcome.Unresolved, *source)
		return nil
	}

	label := s.displayLabel(ctx, exec, *registrationID)
	if err := s.matchRepo.UpdateSlot(ctx, exec, match.ID, slot, *registrationID, label); err != nil {
		return err
	}
	if slot == models.SlotA {
		match.TeamAID = registrationID
	} else {
		match.TeamBID = registrationID
	}
	outcome.ResolvedSlots++
	return nil
}

func (s *progressionService) ResolveSource(ctx context.Context, tournamentID int, code string) (*int, error) {
	ref, ok := brackets.ParseSource(code)
	if !ok {
		return nil, nil
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: tournament %d", ErrTournamentNotFound, tournamentID)
		}
		return nil, err
	}
	return s.resolveRef(ctx, nil, tournament, ref)
}

// resolveRef turns a parsed source reference into a registration id, or
// nil when the referenced match or pool cannot answer yet. Resolution is
// idempotent and performs no writes.
func (s *progressionService) resolveRef(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, ref brackets.SourceRef) (*int, error) {
	if ref.Kind == brackets.SourcePoolRank {
		return s.resolvePoolRank(ctx, exec, tournament, ref)
	}

	matchType, bracketType, order, wantWinner, ok := ref.MatchQuery()
	if !ok {
		return nil, nil
	}

	source, err := s.matchRepo.FindByTypeAndOrder(ctx, exec, tournament.ID, matchType, bracketType, order)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if source.Status != models.MatchStatusCompleted || source.ScoreA == nil || source.ScoreB == nil {
		return nil, nil
	}
	if *source.ScoreA == *source.ScoreB || !source.HasConcreteTeams() {
		return nil, nil
	}

	winnerID, loserID := *source.TeamAID, *source.TeamBID
	if *source.ScoreB > *source.ScoreA {
		winnerID, loserID = loserID, winnerID
	}
	if wantWinner {
		return &winnerID, nil
	}
	return &loserID, nil
}

func (s *progressionService) resolvePoolRank(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament, ref brackets.SourceRef) (*int, error) {
	pool, err := s.poolRepo.FindByTournamentAndOrder(ctx, exec, tournament.ID, ref.Pool)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := s.standings.PoolStandingsTx(ctx, exec, pool.ID)
	if err != nil {
		return nil, err
	}
	if ref.Rank > len(rows) {
		return nil, nil
	}
	registrationID := rows[ref.Rank-1].RegistrationID
	return &registrationID, nil
}

func otherSlot(slot models.Slot) models.Slot {
	if slot == models.SlotA {
		return models.SlotB
	}
	return models.SlotA
}
