package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/pkg/storage"
)

type invoiceRepoStub struct {
	invoices map[string]*models.Invoice
	all      []models.Invoice
	seq      int
	created  []*models.Invoice
	statuses map[string]models.InvoiceStatus
	paidAts  map[string]*time.Time
}

func (s *invoiceRepoStub) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, int, error) {
	return s.all, len(s.all), nil
}

func (s *invoiceRepoStub) ListAll(ctx context.Context) ([]models.Invoice, error) {
	return s.all, nil
}

func (s *invoiceRepoStub) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	if inv, ok := s.invoices[id]; ok {
		copied := *inv
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *invoiceRepoStub) NextSequence(ctx context.Context, year int) (int, error) {
	return s.seq, nil
}

func (s *invoiceRepoStub) Create(ctx context.Context, invoice *models.Invoice) error {
	invoice.ID = "invoice-new"
	s.created = append(s.created, invoice)
	return nil
}

func (s *invoiceRepoStub) UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus, paidAt *time.Time) error {
	if s.statuses == nil {
		s.statuses = make(map[string]models.InvoiceStatus)
		s.paidAts = make(map[string]*time.Time)
	}
	s.statuses[id] = status
	s.paidAts[id] = paidAt
	return nil
}

type invoiceBookingStub struct {
	bookings map[string]*models.Booking
}

func (s *invoiceBookingStub) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := s.bookings[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func newInvoiceServiceForTest(t *testing.T, repo *invoiceRepoStub, bookings *invoiceBookingStub) *InvoiceService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewInvoiceService(repo, bookings, &auditStub{}, store, signer, nil, zap.NewNop(), nil, InvoiceConfig{
		NumberPrefix: "HA",
		APIPrefix:    "/api/v1",
	})
}

func TestInvoiceServiceCreateFromBooking(t *testing.T) {
	repo := &invoiceRepoStub{seq: 12, invoices: map[string]*models.Invoice{}}
	bookings := &invoiceBookingStub{bookings: map[string]*models.Booking{
		"booking-1": {ID: "booking-1", ClientName: "Mara Quist", DiscountApplied: "7%"},
	}}
	svc := newInvoiceServiceForTest(t, repo, bookings)

	invoice, err := svc.CreateFromBooking(context.Background(), dto.InvoiceCreateRequest{
		BookingID:   "booking-1",
		AmountCents: 185000,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	expected := fmt.Sprintf("HA-%d-0012", time.Now().UTC().Year())
	assert.Equal(t, expected, invoice.InvoiceNumber)
	assert.Equal(t, "Mara Quist", invoice.ClientName)
	assert.Equal(t, "7%", invoice.DiscountNote)
	assert.Equal(t, models.InvoiceDraft, invoice.Status)
	assert.True(t, invoice.DueAt.After(invoice.IssuedAt))
}

func TestInvoiceServiceCreateFromMissingBooking(t *testing.T) {
	svc := newInvoiceServiceForTest(t, &invoiceRepoStub{seq: 1}, &invoiceBookingStub{bookings: map[string]*models.Booking{}})

	_, err := svc.CreateFromBooking(context.Background(), dto.InvoiceCreateRequest{
		BookingID:   "booking-99",
		AmountCents: 1000,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "booking not found")
}

func TestInvoiceServiceMarkPaidStampsTime(t *testing.T) {
	repo := &invoiceRepoStub{invoices: map[string]*models.Invoice{
		"invoice-1": {ID: "invoice-1", InvoiceNumber: "HA-2026-0001", Status: models.InvoiceSent},
	}}
	svc := newInvoiceServiceForTest(t, repo, &invoiceBookingStub{})

	invoice, err := svc.UpdateStatus(context.Background(), "invoice-1", "paid")
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, invoice.Status)
	require.NotNil(t, invoice.PaidAt)
	require.NotNil(t, repo.paidAts["invoice-1"])

	_, err = svc.UpdateStatus(context.Background(), "invoice-1", "refunded")
	require.Error(t, err)
}

func TestInvoiceServiceLedgerExport(t *testing.T) {
	paidAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	repo := &invoiceRepoStub{all: []models.Invoice{
		{InvoiceNumber: "HA-2026-0001", ClientName: "Mara Quist", AmountCents: 100000, Status: models.InvoicePaid, IssuedAt: utcDay(2026, 1, 10), DueAt: utcDay(2026, 2, 10), PaidAt: &paidAt},
		{InvoiceNumber: "HA-2026-0002", ClientName: "Jo Ferris", AmountCents: 50000, Status: models.InvoiceSent, IssuedAt: utcDay(2026, 1, 20), DueAt: utcDay(2026, 2, 20)},
	}}
	svc := newInvoiceServiceForTest(t, repo, &invoiceBookingStub{})

	record := &LedgerExport{ID: "export-1", Format: "csv", Status: ExportStatusQueued, CreatedAt: time.Now().UTC()}
	svc.exports[record.ID] = record

	err := svc.generateLedger(context.Background(), ledgerExportPayload{ExportID: "export-1", Format: "csv"})
	require.NoError(t, err)

	stored, err := svc.Export("export-1")
	require.NoError(t, err)
	assert.Equal(t, ExportStatusDone, stored.Status)
	require.NotEmpty(t, stored.URL)

	token := path.Base(stored.URL)
	file, err := svc.OpenExport(token)
	require.NoError(t, err)
	defer file.Close()

	content, err := io.ReadAll(file)
	require.NoError(t, err)
	body := string(content)
	assert.True(t, strings.HasPrefix(body, "Number,Client,Amount"))
	assert.Contains(t, body, "HA-2026-0002")
	assert.Contains(t, body, "Invoiced total: $1500.00")
	assert.Contains(t, body, "Outstanding: $500.00")
}

func TestInvoiceServiceExportNotFound(t *testing.T) {
	svc := newInvoiceServiceForTest(t, &invoiceRepoStub{}, &invoiceBookingStub{})

	_, err := svc.Export("missing")
	require.Error(t, err)
}
