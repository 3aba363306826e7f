package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/harlowe-audio/studio-api/internal/models"
)

// ProductionRepository persists production pipeline tasks.
type ProductionRepository struct {
	db *sqlx.DB
}

// NewProductionRepository constructs a production repository.
func NewProductionRepository(db *sqlx.DB) *ProductionRepository {
	return &ProductionRepository{db: db}
}

const productionColumns = "id, booking_id, stage, finished_hours, chapters_done, chapters_total, notes, created_at, updated_at"

// EnsureForBooking creates the companion production task for a booking if it
// does not already exist. Idempotent: calling twice for the same booking is a
// no-op, keyed by booking id.
func (r *ProductionRepository) EnsureForBooking(ctx context.Context, bookingID string) (*models.ProductionTask, error) {
	existing, err := r.GetByBookingID(ctx, bookingID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check production task: %w", err)
	}

	now := time.Now().UTC()
	task := &models.ProductionTask{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		Stage:     models.StagePrep,
		CreatedAt: now,
		UpdatedAt: now,
	}
	query := `INSERT INTO production_tasks (id, booking_id, stage, finished_hours, chapters_done, chapters_total, notes, created_at, updated_at)
VALUES (:id, :booking_id, :stage, :finished_hours, :chapters_done, :chapters_total, :notes, :created_at, :updated_at)
ON CONFLICT (booking_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return nil, fmt.Errorf("create production task: %w", err)
	}
	return task, nil
}

// GetByBookingID fetches the production task for a booking.
func (r *ProductionRepository) GetByBookingID(ctx context.Context, bookingID string) (*models.ProductionTask, error) {
	query := fmt.Sprintf("SELECT %s FROM production_tasks WHERE booking_id = $1", productionColumns)
	var task models.ProductionTask
	if err := r.db.GetContext(ctx, &task, query, bookingID); err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns all production tasks ordered by creation.
func (r *ProductionRepository) List(ctx context.Context) ([]models.ProductionTask, error) {
	query := fmt.Sprintf("SELECT %s FROM production_tasks ORDER BY created_at ASC", productionColumns)
	var tasks []models.ProductionTask
	if err := r.db.SelectContext(ctx, &tasks, query); err != nil {
		return nil, fmt.Errorf("list production tasks: %w", err)
	}
	return tasks, nil
}

// Update modifies the tracked progress of a production task.
func (r *ProductionRepository) Update(ctx context.Context, task *models.ProductionTask) error {
	task.UpdatedAt = time.Now().UTC()
	query := `UPDATE production_tasks SET stage = :stage, finished_hours = :finished_hours, chapters_done = :chapters_done,
chapters_total = :chapters_total, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("update production task: %w", err)
	}
	return nil
}
