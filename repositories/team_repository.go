package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencourt/matchday/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name is already in use")
)

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error)
	ListBySport(ctx context.Context, exec SQLExecutor, sportID int) ([]*models.Team, error)
	Update(ctx context.Context, exec SQLExecutor, team *models.Team) error
	UpdateLogoKey(ctx context.Context, exec SQLExecutor, id int, logoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) scanTeam(rowScanner interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var t models.Team
	err := rowScanner.Scan(&t.ID, &t.Name, &t.SportID, &t.CreatedAt, &t.LogoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO teams (name, sport_id) VALUES ($1, $2) RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query, team.Name, team.SportID).
		Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, sport_id, created_at, logo_key FROM teams WHERE id = $1`
	return r.scanTeam(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) ListBySport(ctx context.Context, exec SQLExecutor, sportID int) ([]*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, sport_id, created_at, logo_key FROM teams WHERE sport_id = $1 ORDER BY name`
	rows, err := executor.QueryContext(ctx, query, sportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		t, err := r.scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) Update(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE teams SET name = $1, sport_id = $2 WHERE id = $3`,
		team.Name, team.SportID, team.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to update team %d: %w", team.ID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, exec SQLExecutor, id int, logoKey *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update team %d logo: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}
