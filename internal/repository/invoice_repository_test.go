package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harlowe-audio/studio-api/internal/models"
)

func newInvoiceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
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

func TestInvoiceRepositoryNextSequence(t *testing.T) {
	db, mock, cleanup := newInvoiceRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM invoices WHERE EXTRACT(YEAR FROM issued_at) = $1")).
		WithArgs(2026).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	seq, err := repo.NextSequence(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 12, seq)
}

func TestInvoiceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newInvoiceRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO invoices")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	invoice := &models.Invoice{
		BookingID:     "booking-1",
		InvoiceNumber: "HA-2026-0012",
		ClientName:    "Mara Quist",
		AmountCents:   185000,
		Status:        models.InvoiceDraft,
		IssuedAt:      time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
	}
	err := repo.Create(context.Background(), invoice)
	require.NoError(t, err)
	assert.NotEmpty(t, invoice.ID)
}

func TestInvoiceRepositoryUpdateStatusPaid(t *testing.T) {
	db, mock, cleanup := newInvoiceRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	paidAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE invoices SET status = $1, paid_at = $2")).
		WithArgs("PAID", &paidAt, sqlmock.AnyArg(), "invoice-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "invoice-1", models.InvoicePaid, &paidAt)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newInvoiceRepoMock(t)
	defer cleanup()
	repo := NewInvoiceRepository(db)

	issued := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "booking_id", "invoice_number", "client_name", "amount_cents", "discount_note", "status",
		"issued_at", "due_at", "paid_at", "created_at", "updated_at",
	}).AddRow("invoice-1", "booking-1", "HA-2026-0001", "Mara Quist", int64(185000), "8%", "SENT", issued, issued.AddDate(0, 1, 0), nil, issued, issued)

	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices ORDER BY issued_at ASC")).
		WillReturnRows(rows)

	invoices, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "HA-2026-0001", invoices[0].InvoiceNumber)
}
