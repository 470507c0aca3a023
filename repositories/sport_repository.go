package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opencourt/matchday/models"
)

var ErrSportNotFound = errors.New("sport not found")

type SportRepository interface {
	Create(ctx context.Context, exec SQLExecutor, sport *models.Sport) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Sport, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Sport, error)
	UpdateLogoKey(ctx context.Context, exec SQLExecutor, id int, logoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresSportRepository struct {
	db *sql.DB
}

func NewPostgresSportRepository(db *sql.DB) SportRepository {
	return &postgresSportRepository{db: db}
}

func (r *postgresSportRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSportRepository) scanSport(rowScanner interface{ Scan(...interface{}) error }) (*models.Sport, error) {
	var s models.Sport
	err := rowScanner.Scan(&s.ID, &s.Name, &s.Code, &s.LogoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSportNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresSportRepository) Create(ctx context.Context, exec SQLExecutor, sport *models.Sport) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO sports (name, code) VALUES ($1, $2) RETURNING id`
	if err := executor.QueryRowContext(ctx, query, sport.Name, sport.Code).Scan(&sport.ID); err != nil {
		return fmt.Errorf("failed to create sport: %w", err)
	}
	return nil
}

func (r *postgresSportRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Sport, error) {
	executor := r.getExecutor(exec)
	query := `SELECT id, name, code, logo_key FROM sports WHERE id = $1`
	return r.scanSport(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresSportRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Sport, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `SELECT id, name, code, logo_key FROM sports ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sports []*models.Sport
	for rows.Next() {
		s, err := r.scanSport(rows)
		if err != nil {
			return nil, err
		}
		sports = append(sports, s)
	}
	return sports, rows.Err()
}

func (r *postgresSportRepository) UpdateLogoKey(ctx context.Context, exec SQLExecutor, id int, logoKey *string) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE sports SET logo_key = $1 WHERE id = $2`, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update sport %d logo: %w", id, err)
	}
	return checkAffectedRows(result, ErrSportNotFound)
}

func (r *postgresSportRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM sports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sport %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrSportNotFound)
}
