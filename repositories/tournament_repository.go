package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencourt/matchday/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	GetByPhaseID(ctx context.Context, exec SQLExecutor, phaseID int) (*models.Tournament, error)
	List(ctx context.Context, exec SQLExecutor, status *models.TournamentStatus) ([]*models.Tournament, error)
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	UpdateLogoKey(ctx context.Context, exec SQLExecutor, id int, logoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, name, description, sport_id, status, start_date, end_date, location,
	settings_json, created_at, logo_key`

func (r *postgresTournamentRepository) scanTournament(rowScanner interface{ Scan(...interface{}) error }) (*models.Tournament, error) {
	var t models.Tournament
	err := rowScanner.Scan(
		&t.ID, &t.Name, &t.Description, &t.SportID, &t.Status, &t.StartDate, &t.EndDate, &t.Location,
		&t.SettingsJSON, &t.CreatedAt, &t.LogoKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (name, description, sport_id, status, start_date, end_date, location, settings_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	err := executor.QueryRowContext(ctx, query,
		t.Name, t.Description, t.SportID, t.Status, t.StartDate, t.EndDate, t.Location, t.SettingsJSON,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	return r.scanTournament(executor.QueryRowContext(ctx, query, id))
}

// GetByPhaseID resolves the owning tournament of a phase in one hop; the
// progression engine needs it for scoring rules and source lookups.
func (r *postgresTournamentRepository) GetByPhaseID(ctx context.Context, exec SQLExecutor, phaseID int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT t.id, t.name, t.description, t.sport_id, t.status, t.start_date, t.end_date, t.location,
		       t.settings_json, t.created_at, t.logo_key
		FROM tournaments t
		JOIN phases p ON p.tournament_id = t.id
		WHERE p.id = $1`
	return r.scanTournament(executor.QueryRowContext(ctx, query, phaseID))
}

func (r *postgresTournamentRepository) List(ctx context.Context, exec SQLExecutor, status *models.TournamentStatus) ([]*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY start_date DESC, id`
	var statusArg interface{}
	if status != nil {
		statusArg = string(*status)
	}
	rows, err := executor.QueryContext(ctx, query, statusArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t, err := r.scanTournament(rows)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournaments SET
			name = $1, description = $2, status = $3, start_date = $4, end_date = $5,
			location = $6, settings_json = $7
		WHERE id = $8`
	result, err := executor.ExecContext(ctx, query,
		t.Name, t.Description, t.Status, t.StartDate, t.EndDate, t.Location, t.SettingsJSON, t.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to update tournament %d: %w", t.ID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, exec SQLExecutor, id int, logoKey *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE tournaments SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d logo: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
