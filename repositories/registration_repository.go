package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencourt/matchday/models"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationConflict = errors.New("team is already registered for this tournament")
)

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, registration *models.Registration) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Registration, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Registration, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registrations (tournament_id, team_id, seed)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query, reg.TournamentID, reg.TeamID, reg.Seed).
		Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRegistrationConflict
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

// GetByID loads the registration with its team joined in, so callers get
// the display name for slot labels in one query.
func (r *postgresRegistrationRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Registration, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT r.id, r.tournament_id, r.team_id, r.seed, r.created_at,
		       t.id, t.name, t.sport_id, t.created_at, t.logo_key
		FROM registrations r
		JOIN teams t ON t.id = r.team_id
		WHERE r.id = $1`
	return r.scanWithTeam(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Registration, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT r.id, r.tournament_id, r.team_id, r.seed, r.created_at,
		       t.id, t.name, t.sport_id, t.created_at, t.logo_key
		FROM registrations r
		JOIN teams t ON t.id = r.team_id
		WHERE r.tournament_id = $1
		ORDER BY r.seed NULLS LAST, r.id`
	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var registrations []*models.Registration
	for rows.Next() {
		reg, err := r.scanWithTeam(rows)
		if err != nil {
			return nil, err
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}

func (r *postgresRegistrationRepository) scanWithTeam(rowScanner interface{ Scan(...interface{}) error }) (*models.Registration, error) {
	var reg models.Registration
	var team models.Team
	err := rowScanner.Scan(
		&reg.ID, &reg.TournamentID, &reg.TeamID, &reg.Seed, &reg.CreatedAt,
		&team.ID, &team.Name, &team.SportID, &team.CreatedAt, &team.LogoKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	reg.Team = &team
	return &reg, nil
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete registration %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
