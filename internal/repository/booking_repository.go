package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/harlowe-audio/studio-api/internal/models"
)

// BookingRepository persists booking requests.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs a booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, client_name, email, book_title, word_count, days_needed, start_date, end_date,
narration_style, genre, notes, is_returning, discount_applied, client_type, status, created_at, updated_at`

// List returns bookings matching filters with pagination.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	base := "FROM bookings"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(client_name ILIKE $%d OR email ILIKE $%d OR book_title ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.FromDate != nil {
		where = append(where, fmt.Sprintf("end_date >= $%d", len(args)+1))
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		where = append(where, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.ToDate)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY start_date ASC LIMIT %d OFFSET %d", bookingColumns, base, whereClause, size, offset)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	return bookings, total, nil
}

// GetByID fetches one booking.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE id = $1", bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Create inserts a new booking row.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now
	query := `INSERT INTO bookings (id, client_name, email, book_title, word_count, days_needed, start_date, end_date,
narration_style, genre, notes, is_returning, discount_applied, client_type, status, created_at, updated_at)
VALUES (:id, :client_name, :email, :book_title, :word_count, :days_needed, :start_date, :end_date,
:narration_style, :genre, :notes, :is_returning, :discount_applied, :client_type, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// UpdateStatus writes the new status for a booking.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	query := "UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3"
	if _, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

// ListActiveRanges returns the date ranges of bookings that still occupy the
// calendar (terminal statuses excluded).
func (r *BookingRepository) ListActiveRanges(ctx context.Context) ([]models.BookingRange, error) {
	query := "SELECT start_date, end_date FROM bookings WHERE NOT (status = ANY($1))"
	var ranges []models.BookingRange
	if err := r.db.SelectContext(ctx, &ranges, query, pq.Array(models.AvailabilityExcludedStatuses())); err != nil {
		return nil, fmt.Errorf("list booking ranges: %w", err)
	}
	return ranges, nil
}
