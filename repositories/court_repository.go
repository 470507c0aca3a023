package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencourt/matchday/models"
)

var ErrCourtNotFound = errors.New("court not found")

type CourtRepository interface {
	Create(ctx context.Context, exec SQLExecutor, court *models.Court) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Court, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Court, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

func (r *postgresCourtRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCourtRepository) Create(ctx context.Context, exec SQLExecutor, court *models.Court) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO courts (tournament_id, name) VALUES ($1, $2) RETURNING id`
	if err := executor.QueryRowContext(ctx, query, court.TournamentID, court.Name).Scan(&court.ID); err != nil {
		return fmt.Errorf("failed to create court: %w", err)
	}
	return nil
}

func (r *postgresCourtRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Court, error) {
	executor := r.getExecutor(exec)
	var c models.Court
	err := executor.QueryRowContext(ctx,
		`SELECT id, tournament_id, name FROM courts WHERE id = $1`, id,
	).Scan(&c.ID, &c.TournamentID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresCourtRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Court, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx,
		`SELECT id, tournament_id, name FROM courts WHERE tournament_id = $1 ORDER BY name`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courts []*models.Court
	for rows.Next() {
		var c models.Court
		if err := rows.Scan(&c.ID, &c.TournamentID, &c.Name); err != nil {
			return nil, err
		}
		courts = append(courts, &c)
	}
	return courts, rows.Err()
}

func (r *postgresCourtRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM courts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete court %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrCourtNotFound)
}
