package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/opencourt/matchday/models"
)

var ErrPoolTeamNotFound = errors.New("pool team not found")

type PoolTeamRepository interface {
	Add(ctx context.Context, exec SQLExecutor, poolTeam *models.PoolTeam) error
	ListByPool(ctx context.Context, exec SQLExecutor, poolID int) ([]*models.PoolTeam, error)
	UpdateStanding(ctx context.Context, exec SQLExecutor, poolTeam *models.PoolTeam) error
	Remove(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresPoolTeamRepository struct {
	db *sql.DB
}

func NewPostgresPoolTeamRepository(db *sql.DB) PoolTeamRepository {
	return &postgresPoolTeamRepository{db: db}
}

func (r *postgresPoolTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPoolTeamRepository) Add(ctx context.Context, exec SQLExecutor, pt *models.PoolTeam) error {
	executor := r.getExecutor(exec)
	if pt.UpdatedAt.IsZero() {
		pt.UpdatedAt = time.Now()
	}
	query := `
		INSERT INTO pool_teams
			(pool_id, registration_id, points, played, wins, draws, losses,
			 goals_for, goals_against, goal_difference, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		pt.PoolID, pt.RegistrationID, pt.Points, pt.Played, pt.Wins, pt.Draws, pt.Losses,
		pt.GoalsFor, pt.GoalsAgainst, pt.GoalDifference, pt.Position, pt.UpdatedAt,
	).Scan(&pt.ID)
	if err != nil {
		return fmt.Errorf("failed to add team to pool %d: %w", pt.PoolID, err)
	}
	return nil
}

func (r *postgresPoolTeamRepository) ListByPool(ctx context.Context, exec SQLExecutor, poolID int) ([]*models.PoolTeam, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, pool_id, registration_id, points, played, wins, draws, losses,
		       goals_for, goals_against, goal_difference, position, updated_at
		FROM pool_teams WHERE pool_id = $1 ORDER BY position NULLS LAST, id`
	rows, err := executor.QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*models.PoolTeam
	for rows.Next() {
		var pt models.PoolTeam
		err := rows.Scan(
			&pt.ID, &pt.PoolID, &pt.RegistrationID, &pt.Points, &pt.Played, &pt.Wins, &pt.Draws, &pt.Losses,
			&pt.GoalsFor, &pt.GoalsAgainst, &pt.GoalDifference, &pt.Position, &pt.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		teams = append(teams, &pt)
	}
	return teams, rows.Err()
}

// UpdateStanding overwrites the whole standing row; the standings service
// recomputes every field from scratch, so nothing is patched selectively.
func (r *postgresPoolTeamRepository) UpdateStanding(ctx context.Context, exec SQLExecutor, pt *models.PoolTeam) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE pool_teams SET
			points = $1, played = $2, wins = $3, draws = $4, losses = $5,
			goals_for = $6, goals_against = $7, goal_difference = $8, position = $9,
			updated_at = NOW()
		WHERE id = $10`
	result, err := executor.ExecContext(ctx, query,
		pt.Points, pt.Played, pt.Wins, pt.Draws, pt.Losses,
		pt.GoalsFor, pt.GoalsAgainst, pt.GoalDifference, pt.Position,
		pt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update standing %d: %w", pt.ID, err)
	}
	return checkAffectedRows(result, ErrPoolTeamNotFound)
}

func (r *postgresPoolTeamRepository) Remove(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM pool_teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove pool team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPoolTeamNotFound)
}
