package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/internal/service"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
	"github.com/harlowe-audio/studio-api/pkg/response"
)

type invoiceService interface {
	List(ctx context.Context, filter models.InvoiceFilter) ([]models.Invoice, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Invoice, error)
	CreateFromBooking(ctx context.Context, req dto.InvoiceCreateRequest) (*models.Invoice, error)
	UpdateStatus(ctx context.Context, id string, status string) (*models.Invoice, error)
	EnqueueLedgerExport(req dto.LedgerExportRequest) (*service.LedgerExport, error)
	Export(id string) (*service.LedgerExport, error)
	OpenExport(token string) (*os.File, error)
}

// InvoiceHandler exposes the invoice ledger.
type InvoiceHandler struct {
	service invoiceService
}

// NewInvoiceHandler builds a new handler.
func NewInvoiceHandler(service invoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// List godoc
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := models.InvoiceFilter{
		Page:     atoiDefault(c.Query("page"), 1),
		PageSize: atoiDefault(c.Query("pageSize"), 50),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.InvoiceStatus(strings.ToUpper(raw))
		switch status {
		case models.InvoiceDraft, models.InvoiceSent, models.InvoicePaid, models.InvoiceVoid, models.InvoiceOverdue:
			filter.Status = &status
		default:
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown invoice status"))
			return
		}
	}
	invoices, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoices, pagination)
}

// Get godoc
// @Summary Get an invoice
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.Envelope
// @Router /admin/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice, nil)
}

// Create godoc
// @Summary Issue an invoice against a booking
// @Tags Invoices
// @Accept json
// @Produce json
// @Param payload body dto.InvoiceCreateRequest true "Invoice payload"
// @Success 201 {object} response.Envelope
// @Router /admin/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.InvoiceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid invoice payload"))
		return
	}
	invoice, err := h.service.CreateFromBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invoice)
}

// UpdateStatus godoc
// @Summary Update the payment state of an invoice
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param payload body dto.InvoiceStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /admin/invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	var req dto.InvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	invoice, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invoice, nil)
}

// EnqueueExport godoc
// @Summary Queue a ledger export
// @Tags Invoices
// @Accept json
// @Produce json
// @Param payload body dto.LedgerExportRequest true "Export format"
// @Success 202 {object} response.Envelope
// @Router /admin/invoices/exports [post]
func (h *InvoiceHandler) EnqueueExport(c *gin.Context) {
	var req dto.LedgerExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	record, err := h.service.EnqueueLedgerExport(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, record, nil)
}

// ExportStatus godoc
// @Summary Check a queued ledger export
// @Tags Invoices
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} response.Envelope
// @Router /admin/invoices/exports/{id} [get]
func (h *InvoiceHandler) ExportStatus(c *gin.Context) {
	record, err := h.service.Export(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// DownloadExport godoc
// @Summary Download a finished ledger export
// @Tags Invoices
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /admin/invoices/exports/download/{token} [get]
func (h *InvoiceHandler) DownloadExport(c *gin.Context) {
	file, err := h.service.OpenExport(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.FileAttachment(file.Name(), filepath.Base(file.Name()))
}
