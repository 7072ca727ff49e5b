// Package repository handles Postgres data access for datasets and the
// embedding cache.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/models"
)

// DatasetsRepository handles data access for stored datasets.
type DatasetsRepository struct {
	db *pgxpool.Pool
}

// NewDatasetsRepository creates a new datasets repository.
func NewDatasetsRepository(db *pgxpool.Pool) *DatasetsRepository {
	return &DatasetsRepository{db: db}
}

// Create stores a dataset. Datasets are immutable and content-addressed, so a
// conflict on dataset_id means identical content was already stored; the
// insert is a no-op and ingestion stays idempotent.
func (r *DatasetsRepository) Create(ctx context.Context, dataset *models.Dataset) error {
	comments, err := json.Marshal(dataset.Comments)
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO datasets (dataset_id, comments, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (dataset_id) DO NOTHING`,
		dataset.DatasetID, comments,
	)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByID retrieves a dataset by its id.
func (r *DatasetsRepository) GetByID(ctx context.Context, datasetID string) (*models.Dataset, error) {
	var (
		comments  []byte
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx,
		`SELECT comments, created_at FROM datasets WHERE dataset_id = $1`,
		datasetID,
	).Scan(&comments, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("dataset", fmt.Sprintf("dataset %s not found", datasetID))
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	dataset := &models.Dataset{DatasetID: datasetID, CreatedAt: createdAt}
	if err := json.Unmarshal(comments, &dataset.Comments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comments: %w", err)
	}
	return dataset, nil
}
