package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
)

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

type RunRepository interface {
	Create(ctx context.Context, run *models.RunRecord) error
	GetByID(ctx context.Context, id string) (*models.RunRecord, error)
	List(ctx context.Context, limit int) ([]models.RunRecord, error)
}

type runRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *models.RunRecord) error {
	query := `
		INSERT INTO runs (id, view_id, filename, file_size, state, year, status,
		                  highest_count_crime, error, dataset_key, duration_ms, created_at)
		VALUES (:id, :view_id, :filename, :file_size, :state, :year, :status,
		        :highest_count_crime, :error, :dataset_key, :duration_ms, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, run)
	return err
}

// GetByID returns nil, nil when no run has the id.
func (r *runRepository) GetByID(ctx context.Context, id string) (*models.RunRecord, error) {
	var run models.RunRecord

	query := `
		SELECT id, view_id, filename, file_size, state, year, status,
		       highest_count_crime, error, dataset_key, duration_ms, created_at
		FROM runs
		WHERE id = ?
	`

	err := r.db.GetContext(ctx, &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// List returns the most recent runs first.
func (r *runRepository) List(ctx context.Context, limit int) ([]models.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, view_id, filename, file_size, state, year, status,
		       highest_count_crime, error, dataset_key, duration_ms, created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	runs := []models.RunRecord{}
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}

	return runs, nil
}
