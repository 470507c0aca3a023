package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencourt/matchday/models"
)

var ErrPhaseNotFound = errors.New("phase not found")

type PhaseRepository interface {
	Create(ctx context.Context, exec SQLExecutor, phase *models.Phase) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Phase, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Phase, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresPhaseRepository struct {
	db *sql.DB
}

func NewPostgresPhaseRepository(db *sql.DB) PhaseRepository {
	return &postgresPhaseRepository{db: db}
}

func (r *postgresPhaseRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPhaseRepository) scanPhase(rowScanner interface{ Scan(...interface{}) error }) (*models.Phase, error) {
	var p models.Phase
	err := rowScanner.Scan(&p.ID, &p.TournamentID, &p.Name, &p.Type, &p.OrderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPhaseRepository) Create(ctx context.Context, exec SQLExecutor, phase *models.Phase) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO phases (tournament_id, name, type, order_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		phase.TournamentID, phase.Name, phase.Type, phase.OrderNumber,
	).Scan(&phase.ID)
	if err != nil {
		return fmt.Errorf("failed to create phase: %w", err)
	}
	return nil
}

func (r *postgresPhaseRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Phase, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, tournament_id, name, type, order_number FROM phases WHERE id = $1`
	return r.scanPhase(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresPhaseRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Phase, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, name, type, order_number
		FROM phases WHERE tournament_id = $1 ORDER BY order_number, id`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []*models.Phase
	for rows.Next() {
		p, err := r.scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, rows.Err()
}

func (r *postgresPhaseRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM phases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete phase %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPhaseNotFound)
}
