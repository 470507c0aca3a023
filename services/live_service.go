package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/opencourt/matchday/live"
	"github.com/opencourt/matchday/models"
	"github.com/opencourt/matchday/repositories"
)

// LiveService sits between the HTTP surface and the in-memory
// broadcaster: it validates that a match can carry a live score, tags
// updates with the tournament's sport code and reads snapshots back.
type LiveService interface {
	// Publish stores and fans out a sport-specific score payload for a
	// running match. The payload is opaque; only the match is checked.
	Publish(ctx context.Context, matchID int, payload json.RawMessage) (live.Snapshot, error)
	// PublishResult pushes the final score of a decided match to
	// subscribers and drops its snapshot. Best effort; failures are
	// logged, never returned, because the result is already committed.
	PublishResult(ctx context.Context, match *models.Match)
	Snapshot(matchID int) (live.Snapshot, bool)
	Snapshots(matchIDs []int) map[int]live.Snapshot
	Subscribe(matchIDs []int) chan live.Event
	Unsubscribe(ch chan live.Event, matchIDs []int)
}

type liveService struct {
	broadcaster    *live.Broadcaster
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	sportRepo      repositories.SportRepository
	logger         *slog.Logger
}

func NewLiveService(
	broadcaster *live.Broadcaster,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	sportRepo repositories.SportRepository,
	logger *slog.Logger,
) LiveService {
	if logger == nil {
		logger = slog.Default()
	}
	return &liveService{
		broadcaster:    broadcaster,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		sportRepo:      sportRepo,
		logger:         logger,
	}
}

func (s *liveService) Publish(ctx context.Context, matchID int, payload json.RawMessage) (live.Snapshot, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return live.Snapshot{}, fmt.Errorf("%w: match %d", ErrMatchNotFound, matchID)
		}
		return live.Snapshot{}, err
	}
	if match.Status.Terminal() {
		return live.Snapshot{}, fmt.Errorf("%w: match %d is %s", ErrMatchNotLive, matchID, match.Status)
	}

	sport, err := s.sportCode(ctx, match.PhaseID)
	if err != nil {
		return live.Snapshot{}, err
	}
	return s.broadcaster.Update(matchID, sport, payload), nil
}

func (s *liveService) PublishResult(ctx context.Context, match *models.Match) {
	if match == nil {
		return
	}
	if match.Status == models.MatchStatusCompleted && match.ScoreA != nil && match.ScoreB != nil {
		sport, err := s.sportCode(ctx, match.PhaseID)
		if err != nil {
			s.logger.WarnContext(ctx, "final score not broadcast",
				slog.Int("match_id", match.ID), slog.Any("error", err))
		} else {
			payload, err := json.Marshal(map[string]interface{}{
				"score_a": *match.ScoreA,
				"score_b": *match.ScoreB,
				"status":  match.Status,
			})
			if err == nil {
				s.broadcaster.Update(match.ID, sport, payload)
			}
		}
	}
	if match.Status.Terminal() {
		s.broadcaster.Clear(match.ID)
	}
}

func (s *liveService) Snapshot(matchID int) (live.Snapshot, bool) {
	return s.broadcaster.Get(matchID)
}

func (s *liveService) Snapshots(matchIDs []int) map[int]live.Snapshot {
	return s.broadcaster.GetMany(matchIDs)
}

func (s *liveService) Subscribe(matchIDs []int) chan live.Event {
	return s.broadcaster.Subscribe(matchIDs)
}

func (s *liveService) Unsubscribe(ch chan live.Event, matchIDs []int) {
	s.broadcaster.Unsubscribe(ch, matchIDs)
}

func (s *liveService) sportCode(ctx context.Context, phaseID int) (string, error) {
	tournament, err := s.tournamentRepo.GetByPhaseID(ctx, nil, phaseID)
	if err != nil {
		return "", err
	}
	sport, err := s.sportRepo.GetByID(ctx, nil, tournament.SportID)
	if err != nil {
		return "", err
	}
	return sport.Code, nil
}
