package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harlowe-audio/studio-api/internal/models"
)

func newBookingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestBookingRepositoryListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	start := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "client_name", "email", "book_title", "word_count", "days_needed", "start_date", "end_date",
		"narration_style", "genre", "notes", "is_returning", "discount_applied", "client_type", "status", "created_at", "updated_at",
	}).AddRow(
		"booking-1", "Mara Quist", "mara@example.com", "The Glass Harbor", 50000, 8, start, end,
		"solo", "fantasy", "", false, "8%", "indie", "PENDING", start, start,
	)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("PENDING").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	status := models.BookingPending
	items, total, err := repo.List(context.Background(), models.BookingFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "booking-1", items[0].ID)
	assert.Equal(t, models.BookingPending, items[0].Status)
}

func TestBookingRepositoryGetByIDNoRows(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("booking-99").
		WillReturnError(sql.ErrNoRows)

	item, err := repo.GetByID(context.Background(), "booking-99")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, item)
}

func TestBookingRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	booking := &models.Booking{
		ClientName: "Mara Quist",
		Email:      "mara@example.com",
		BookTitle:  "The Glass Harbor",
		WordCount:  50000,
		DaysNeeded: 8,
		StartDate:  time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC),
		Status:     models.BookingPending,
	}
	err := repo.Create(context.Background(), booking)
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.False(t, booking.CreatedAt.IsZero())
}

func TestBookingRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1")).
		WithArgs("ONBOARDING", sqlmock.AnyArg(), "booking-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "booking-1", models.BookingOnboarding)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryListActiveRanges(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	rows := sqlmock.NewRows([]string{"start_date", "end_date"}).
		AddRow(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)).
		AddRow(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT start_date, end_date FROM bookings WHERE NOT (status = ANY($1))")).
		WillReturnRows(rows)

	ranges, err := repo.ListActiveRanges(context.Background())
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), ranges[0].StartDate)
}
