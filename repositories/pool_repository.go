package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencourt/matchday/models"
)

var ErrPoolNotFound = errors.New("pool not found")

type PoolRepository interface {
	Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Pool, error)
	ListByPhase(ctx context.Context, exec SQLExecutor, phaseID int) ([]*models.Pool, error)
	FindByTournamentAndOrder(ctx context.Context, exec SQLExecutor, tournamentID, orderNumber int) (*models.Pool, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresPoolRepository struct {
	db *sql.DB
}

func NewPostgresPoolRepository(db *sql.DB) PoolRepository {
	return &postgresPoolRepository{db: db}
}

func (r *postgresPoolRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPoolRepository) scanPool(rowScanner interface{ Scan(...interface{}) error }) (*models.Pool, error) {
	var p models.Pool
	err := rowScanner.Scan(&p.ID, &p.PhaseID, &p.Name, &p.OrderNumber, &p.QualifyingCount, &p.LoserBracketSpot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPoolRepository) Create(ctx context.Context, exec SQLExecutor, pool *models.Pool) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO pools (phase_id, name, order_number, qualifying_count, loser_bracket_spots)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		pool.PhaseID, pool.Name, pool.OrderNumber, pool.QualifyingCount, pool.LoserBracketSpot,
	).Scan(&pool.ID)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}
	return nil
}

func (r *postgresPoolRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Pool, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, phase_id, name, order_number, qualifying_count, loser_bracket_spots
		FROM pools WHERE id = $1`
	return r.scanPool(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresPoolRepository) ListByPhase(ctx context.Context, exec SQLExecutor, phaseID int) ([]*models.Pool, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, phase_id, name, order_number, qualifying_count, loser_bracket_spots
		FROM pools WHERE phase_id = $1 ORDER BY order_number, id`
	rows, err := executor.QueryContext(ctx, query, phaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []*models.Pool
	for rows.Next() {
		p, err := r.scanPool(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

// FindByTournamentAndOrder locates the pool a P<p>-<k> source code refers
// to: pool number p within the tournament.
func (r *postgresPoolRepository) FindByTournamentAndOrder(ctx context.Context, exec SQLExecutor, tournamentID, orderNumber int) (*models.Pool, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT pl.id, pl.phase_id, pl.name, pl.order_number, pl.qualifying_count, pl.loser_bracket_spots
		FROM pools pl
		JOIN phases ph ON ph.id = pl.phase_id
		WHERE ph.tournament_id = $1 AND pl.order_number = $2`
	return r.scanPool(executor.QueryRowContext(ctx, query, tournamentID, orderNumber))
}

func (r *postgresPoolRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM pools WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pool %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPoolNotFound)
}
