package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/harlowe-audio/studio-api/internal/models"
)

// InvoiceRepository persists invoices.
type InvoiceRepository struct {
	db *sqlx.DB
}

// NewInvoiceRepository constructs an invoice repository.
func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, booking_id, invoice_number, client_name, amount_cents, discount_note, status,
issued_at, due_at, paid_at, created_at, updated_at`

// List returns invoices matching filters.
func (r *InvoiceRepository) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, int, error) {
	base := "FROM invoices"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
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

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY issued_at DESC LIMIT %d OFFSET %d", invoiceColumns, base, whereClause, size, offset)
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}
	return invoices, total, nil
}

// ListAll returns every invoice for the ledger export, oldest first.
func (r *InvoiceRepository) ListAll(ctx context.Context) ([]models.Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices ORDER BY issued_at ASC", invoiceColumns)
	var invoices []models.Invoice
	if err := r.db.SelectContext(ctx, &invoices, query); err != nil {
		return nil, fmt.Errorf("list all invoices: %w", err)
	}
	return invoices, nil
}

// GetByID fetches one invoice.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE id = $1", invoiceColumns)
	var invoice models.Invoice
	if err := r.db.GetContext(ctx, &invoice, query, id); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// NextSequence returns the next invoice sequence number for the given year.
func (r *InvoiceRepository) NextSequence(ctx context.Context, year int) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM invoices WHERE EXTRACT(YEAR FROM issued_at) = $1", year); err != nil {
		return 0, fmt.Errorf("count invoices for year: %w", err)
	}
	return count + 1, nil
}

// Create inserts an invoice.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now
	query := `INSERT INTO invoices (id, booking_id, invoice_number, client_name, amount_cents, discount_note, status,
issued_at, due_at, paid_at, created_at, updated_at)
VALUES (:id, :booking_id, :invoice_number, :client_name, :amount_cents, :discount_note, :status,
:issued_at, :due_at, :paid_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, invoice); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// UpdateStatus writes the invoice payment state.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus, paidAt *time.Time) error {
	query := "UPDATE invoices SET status = $1, paid_at = $2, updated_at = $3 WHERE id = $4"
	if _, err := r.db.ExecContext(ctx, query, string(status), paidAt, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}
	return nil
}
