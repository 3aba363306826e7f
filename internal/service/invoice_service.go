package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/pkg/export"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
	"github.com/harlowe-audio/studio-api/pkg/jobs"
	"github.com/harlowe-audio/studio-api/pkg/storage"
)

type invoiceRepository interface {
	List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, int, error)
	ListAll(ctx context.Context) ([]models.Invoice, error)
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	NextSequence(ctx context.Context, year int) (int, error)
	Create(ctx context.Context, invoice *models.Invoice) error
	UpdateStatus(ctx context.Context, id string, status models.InvoiceStatus, paidAt *time.Time) error
}

type invoiceBookingReader interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

// Ledger export job states.
const (
	ExportStatusQueued = "QUEUED"
	ExportStatusDone   = "DONE"
	ExportStatusFailed = "FAILED"
)

// LedgerExport tracks one background ledger export.
type LedgerExport struct {
	ID        string    `json:"id"`
	Format    string    `json:"format"`
	Status    string    `json:"status"`
	URL       string    `json:"url,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ledgerExportPayload struct {
	ExportID string
	Format   string
}

// InvoiceConfig tunes invoicing behaviour.
type InvoiceConfig struct {
	NumberPrefix string
	DefaultDueIn time.Duration
	APIPrefix    string
	QueueWorkers int
	QueueRetries int
}

// InvoiceService issues invoices against bookings and runs ledger exports on
// a background queue so a large ledger never blocks an admin request.
type InvoiceService struct {
	repo      invoiceRepository
	bookings  invoiceBookingReader
	audit     auditRecorder
	csv       csvRenderer
	pdf       pdfRenderer
	storage   fileStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	cfg       InvoiceConfig

	queue *jobs.Queue

	mu      sync.RWMutex
	exports map[string]*LedgerExport
}

// NewInvoiceService constructs an InvoiceService and its export queue. Call
// Start before enqueueing exports and Stop on shutdown.
func NewInvoiceService(repo invoiceRepository, bookings invoiceBookingReader, audit auditRecorder, store fileStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg InvoiceConfig) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "HA"
	}
	if cfg.DefaultDueIn <= 0 {
		cfg.DefaultDueIn = 30 * 24 * time.Hour
	}

	s := &InvoiceService{
		repo:      repo,
		bookings:  bookings,
		audit:     audit,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		storage:   store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		cfg:       cfg,
		exports:   make(map[string]*LedgerExport),
	}
	s.queue = jobs.NewQueue("ledger-exports", s.handleExportJob, jobs.QueueConfig{
		Workers:    cfg.QueueWorkers,
		MaxRetries: cfg.QueueRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export queue workers.
func (s *InvoiceService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export queue.
func (s *InvoiceService) Stop() {
	s.queue.Stop()
}

// List returns invoices for the admin ledger view.
func (s *InvoiceService) List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, *models.Pagination, error) {
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list invoices")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return invoices, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one invoice.
func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	invoice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "invoice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load invoice")
	}
	return invoice, nil
}

// CreateFromBooking issues a numbered invoice against a booking. Numbers run
// per calendar year: HA-2026-0001, HA-2026-0002, ...
func (s *InvoiceService) CreateFromBooking(ctx context.Context, req dto.InvoiceCreateRequest) (*models.Invoice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid invoice payload")
	}

	booking, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	now := time.Now().UTC()
	seq, err := s.repo.NextSequence(ctx, now.Year())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate invoice number")
	}

	dueAt := now.Add(s.cfg.DefaultDueIn)
	if req.DueInDays > 0 {
		dueAt = now.AddDate(0, 0, req.DueInDays)
	}

	invoice := &models.Invoice{
		BookingID:     booking.ID,
		InvoiceNumber: fmt.Sprintf("%s-%d-%04d", s.cfg.NumberPrefix, now.Year(), seq),
		ClientName:    booking.ClientName,
		AmountCents:   req.AmountCents,
		DiscountNote:  booking.DiscountApplied,
		Status:        models.InvoiceDraft,
		IssuedAt:      now,
		DueAt:         dueAt,
	}
	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create invoice")
	}

	s.recordAudit(ctx, invoice, "created")
	return invoice, nil
}

// UpdateStatus moves an invoice through its payment states. Marking PAID
// stamps the payment time.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id string, raw string) (*models.Invoice, error) {
	status := models.InvoiceStatus(strings.ToUpper(raw))
	switch status {
	case models.InvoiceDraft, models.InvoiceSent, models.InvoicePaid, models.InvoiceVoid, models.InvoiceOverdue:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown invoice status")
	}

	invoice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var paidAt *time.Time
	if status == models.InvoicePaid {
		now := time.Now().UTC()
		paidAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, id, status, paidAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update invoice status")
	}

	invoice.Status = status
	invoice.PaidAt = paidAt
	s.recordAudit(ctx, invoice, "status:"+string(status))
	return invoice, nil
}

// EnqueueLedgerExport schedules a background export of the full ledger.
func (s *InvoiceService) EnqueueLedgerExport(req dto.LedgerExportRequest) (*LedgerExport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export payload")
	}

	record := &LedgerExport{
		ID:        uuid.NewString(),
		Format:    strings.ToLower(req.Format),
		Status:    ExportStatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.exports[record.ID] = record
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Job{
		ID:      record.ID,
		Type:    "ledger_export",
		Payload: ledgerExportPayload{ExportID: record.ID, Format: record.Format},
	})
	if err != nil {
		s.setExportFailed(record.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return record, nil
}

// Export returns the state of a queued export.
func (s *InvoiceService) Export(id string) (*LedgerExport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.exports[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
	}
	copied := *record
	return &copied, nil
}

// OpenExport resolves a signed download token to a file handle.
func (s *InvoiceService) OpenExport(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, nil
}

func (s *InvoiceService) handleExportJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(ledgerExportPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	start := time.Now()
	if err := s.generateLedger(ctx, payload); err != nil {
		s.setExportFailed(payload.ExportID, err)
		return err
	}
	s.metrics.ObserveLedgerExport(time.Since(start))
	return nil
}

func (s *InvoiceService) generateLedger(ctx context.Context, payload ledgerExportPayload) error {
	invoices, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	dataset := export.Dataset{
		Headers: []string{"Number", "Client", "Amount", "Discount", "Status", "Issued", "Due", "Paid"},
	}
	var totalCents, paidCents int64
	for _, inv := range invoices {
		paid := ""
		if inv.PaidAt != nil {
			paid = inv.PaidAt.Format("2006-01-02")
			paidCents += inv.AmountCents
		}
		totalCents += inv.AmountCents
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Number":   inv.InvoiceNumber,
			"Client":   inv.ClientName,
			"Amount":   formatCents(inv.AmountCents),
			"Discount": inv.DiscountNote,
			"Status":   string(inv.Status),
			"Issued":   inv.IssuedAt.Format("2006-01-02"),
			"Due":      inv.DueAt.Format("2006-01-02"),
			"Paid":     paid,
		})
	}
	dataset.Footer = []string{
		fmt.Sprintf("Invoiced total: %s", formatCents(totalCents)),
		fmt.Sprintf("Collected: %s", formatCents(paidCents)),
		fmt.Sprintf("Outstanding: %s", formatCents(totalCents-paidCents)),
	}

	var rendered []byte
	switch payload.Format {
	case "csv":
		rendered, err = s.csv.Render(dataset)
	case "pdf":
		rendered, err = s.pdf.Render(dataset, "Invoice Ledger")
	default:
		err = fmt.Errorf("unsupported format %q", payload.Format)
	}
	if err != nil {
		return fmt.Errorf("render ledger: %w", err)
	}

	filename := fmt.Sprintf("ledger/%s.%s", payload.ExportID, payload.Format)
	relPath, err := s.storage.Save(filename, rendered)
	if err != nil {
		return fmt.Errorf("store ledger: %w", err)
	}

	token, expiresAt, err := s.signer.Generate(payload.ExportID, relPath)
	if err != nil {
		return fmt.Errorf("sign download url: %w", err)
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.mu.Lock()
	if record, ok := s.exports[payload.ExportID]; ok {
		record.Status = ExportStatusDone
		record.URL = fmt.Sprintf("%s/admin/invoices/exports/download/%s", prefix, token)
		record.ExpiresAt = expiresAt
	}
	s.mu.Unlock()

	s.logger.Info("ledger export complete",
		zap.String("export_id", payload.ExportID),
		zap.String("format", payload.Format),
		zap.Int("invoices", len(invoices)),
	)
	return nil
}

func (s *InvoiceService) setExportFailed(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.exports[id]; ok {
		record.Status = ExportStatusFailed
		record.Error = err.Error()
	}
}

func (s *InvoiceService) recordAudit(ctx context.Context, invoice *models.Invoice, note string) {
	if s.audit == nil {
		return
	}
	newValues := []byte(fmt.Sprintf(`{"number":%q,"note":%q}`, invoice.InvoiceNumber, note))
	entry := &models.AuditLog{
		Action:     models.AuditActionInvoiceWrite,
		Resource:   "invoice",
		ResourceID: &invoice.ID,
		NewValues:  newValues,
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record invoice audit log", zap.Error(err))
	}
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
