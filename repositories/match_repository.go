package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencourt/matchday/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByPhase(ctx context.Context, exec SQLExecutor, phaseID int) ([]*models.Match, error)
	ListByPool(ctx context.Context, exec SQLExecutor, poolID int) ([]*models.Match, error)
	FindByTypeAndOrder(ctx context.Context, exec SQLExecutor, tournamentID int, matchType models.MatchType, bracketType *models.BracketType, orderNumber int) (*models.Match, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB *int, status models.MatchStatus) error
	UpdateSlot(ctx context.Context, exec SQLExecutor, id int, slot models.Slot, registrationID int, label *string) error
	UpdateDestinations(ctx context.Context, exec SQLExecutor, id int, winnerTo *int, winnerSlot *models.Slot, loserTo *int, loserSlot *models.Slot) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, phase_id, pool_id, type, bracket_type, order_number, position,
	team_a_id, team_b_id, source_a, source_b, label_a, label_b,
	score_a, score_b, status,
	winner_next_match_id, winner_next_slot, loser_next_match_id, loser_next_slot,
	court_id, scheduled_at, created_at`

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.PhaseID, &m.PoolID, &m.Type, &m.BracketType, &m.OrderNumber, &m.Position,
		&m.TeamAID, &m.TeamBID, &m.SourceA, &m.SourceB, &m.LabelA, &m.LabelB,
		&m.ScoreA, &m.ScoreB, &m.Status,
		&m.WinnerNextMatchID, &m.WinnerNextSlot, &m.LoserNextMatchID, &m.LoserNextSlot,
		&m.CourtID, &m.ScheduledAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(phase_id, pool_id, type, bracket_type, order_number, position,
			 team_a_id, team_b_id, source_a, source_b, label_a, label_b,
			 score_a, score_b, status,
			 winner_next_match_id, winner_next_slot, loser_next_match_id, loser_next_slot,
			 court_id, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		match.PhaseID, match.PoolID, match.Type, match.BracketType, match.OrderNumber, match.Position,
		match.TeamAID, match.TeamBID, match.SourceA, match.SourceB, match.LabelA, match.LabelB,
		match.ScoreA, match.ScoreB, match.Status,
		match.WinnerNextMatchID, match.WinnerNextSlot, match.LoserNextMatchID, match.LoserNextSlot,
		match.CourtID, match.ScheduledAt,
	).Scan(&match.ID, &match.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m, err := r.scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) ListByPhase(ctx context.Context, exec SQLExecutor, phaseID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE phase_id = $1 ORDER BY position, order_number, id`
	return r.list(ctx, r.getExecutor(exec), query, phaseID)
}

func (r *postgresMatchRepository) ListByPool(ctx context.Context, exec SQLExecutor, poolID int) ([]*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE pool_id = $1 ORDER BY position, order_number, id`
	return r.list(ctx, r.getExecutor(exec), query, poolID)
}

// FindByTypeAndOrder locates the unique match a symbolic source code
// points at, scoped to one tournament.
func (r *postgresMatchRepository) FindByTypeAndOrder(ctx context.Context, exec SQLExecutor, tournamentID int, matchType models.MatchType, bracketType *models.BracketType, orderNumber int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT m.id, m.phase_id, m.pool_id, m.type, m.bracket_type, m.order_number, m.position,
		       m.team_a_id, m.team_b_id, m.source_a, m.source_b, m.label_a, m.label_b,
		       m.score_a, m.score_b, m.status,
		       m.winner_next_match_id, m.winner_next_slot, m.loser_next_match_id, m.loser_next_slot,
		       m.court_id, m.scheduled_at, m.created_at
		FROM matches m
		JOIN phases p ON p.id = m.phase_id
		WHERE p.tournament_id = $1 AND m.type = $2 AND m.order_number = $3
		  AND ($4::text IS NULL OR m.bracket_type = $4)`
	var bt interface{}
	if bracketType != nil {
		bt = string(*bracketType)
	}
	return r.scanMatch(executor.QueryRowContext(ctx, query, tournamentID, matchType, orderNumber, bt))
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB *int, status models.MatchStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE matches SET score_a = $1, score_b = $2, status = $3 WHERE id = $4`
	result, err := executor.ExecContext(ctx, query, scoreA, scoreB, status, id)
	if err != nil {
		return fmt.Errorf("failed to update result for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateSlot writes a concrete registration into one slot of a match and
// refreshes the slot's display label.
func (r *postgresMatchRepository) UpdateSlot(ctx context.Context, exec SQLExecutor, id int, slot models.Slot, registrationID int, label *string) error {
	executor := r.getExecutor(exec)
	var query string
	if slot == models.SlotA {
		query = `UPDATE matches SET team_a_id = $1, label_a = COALESCE($2, label_a) WHERE id = $3`
	} else {
		query = `UPDATE matches SET team_b_id = $1, label_b = COALESCE($2, label_b) WHERE id = $3`
	}
	result, err := executor.ExecContext(ctx, query, registrationID, label, id)
	if err != nil {
		return fmt.Errorf("failed to update slot %s of match %d: %w", slot, id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateDestinations(ctx context.Context, exec SQLExecutor, id int, winnerTo *int, winnerSlot *models.Slot, loserTo *int, loserSlot *models.Slot) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET winner_next_match_id = $1, winner_next_slot = $2,
		    loser_next_match_id = $3, loser_next_slot = $4
		WHERE id = $5`
	result, err := executor.ExecContext(ctx, query, winnerTo, winnerSlot, loserTo, loserSlot, id)
	if err != nil {
		return fmt.Errorf("failed to update destinations of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
