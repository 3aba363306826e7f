package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/harlowe-audio/studio-api/internal/models"
)

// BlockoutRepository persists manual calendar block-outs.
type BlockoutRepository struct {
	db *sqlx.DB
}

// NewBlockoutRepository constructs a blockout repository.
func NewBlockoutRepository(db *sqlx.DB) *BlockoutRepository {
	return &BlockoutRepository{db: db}
}

const blockoutColumns = "id, start_date, end_date, reason, created_by, created_at, updated_at"

// List returns all block-outs ordered by start date.
func (r *BlockoutRepository) List(ctx context.Context) ([]models.Blockout, error) {
	query := fmt.Sprintf("SELECT %s FROM blockouts ORDER BY start_date ASC", blockoutColumns)
	var blockouts []models.Blockout
	if err := r.db.SelectContext(ctx, &blockouts, query); err != nil {
		return nil, fmt.Errorf("list blockouts: %w", err)
	}
	return blockouts, nil
}

// GetByID fetches one block-out.
func (r *BlockoutRepository) GetByID(ctx context.Context, id string) (*models.Blockout, error) {
	query := fmt.Sprintf("SELECT %s FROM blockouts WHERE id = $1", blockoutColumns)
	var blockout models.Blockout
	if err := r.db.GetContext(ctx, &blockout, query, id); err != nil {
		return nil, err
	}
	return &blockout, nil
}

// Create inserts a block-out.
func (r *BlockoutRepository) Create(ctx context.Context, blockout *models.Blockout) error {
	if blockout.ID == "" {
		blockout.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if blockout.CreatedAt.IsZero() {
		blockout.CreatedAt = now
	}
	blockout.UpdatedAt = now
	query := `INSERT INTO blockouts (id, start_date, end_date, reason, created_by, created_at, updated_at)
VALUES (:id, :start_date, :end_date, :reason, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, blockout); err != nil {
		return fmt.Errorf("create blockout: %w", err)
	}
	return nil
}

// Update modifies a block-out.
func (r *BlockoutRepository) Update(ctx context.Context, blockout *models.Blockout) error {
	blockout.UpdatedAt = time.Now().UTC()
	query := `UPDATE blockouts SET start_date = :start_date, end_date = :end_date, reason = :reason, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, blockout); err != nil {
		return fmt.Errorf("update blockout: %w", err)
	}
	return nil
}

// Delete removes a block-out.
func (r *BlockoutRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM blockouts WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete blockout: %w", err)
	}
	return nil
}
