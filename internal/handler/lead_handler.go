package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
	"github.com/harlowe-audio/studio-api/pkg/response"
)

type leadService interface {
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, *models.Pagination, error)
	Capture(ctx context.Context, req dto.LeadRequest) (*models.Lead, error)
	Update(ctx context.Context, id string, req dto.LeadRequest) (*models.Lead, error)
	Delete(ctx context.Context, id string) error
	ExportCSV(ctx context.Context, filter models.LeadFilter) ([]byte, string, error)
}

// LeadHandler exposes the contact form and the admin CRM.
type LeadHandler struct {
	service leadService
}

// NewLeadHandler builds a new handler.
func NewLeadHandler(service leadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// Capture godoc
// @Summary Submit a contact-form lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param payload body dto.LeadRequest true "Lead payload"
// @Success 201 {object} response.Envelope
// @Router /leads [post]
func (h *LeadHandler) Capture(c *gin.Context) {
	var req dto.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lead payload"))
		return
	}
	lead, err := h.service.Capture(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lead)
}

// List godoc
// @Summary List leads
// @Tags Leads
// @Produce json
// @Param status query string false "Status filter"
// @Param search query string false "Name or email search"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/leads [get]
func (h *LeadHandler) List(c *gin.Context) {
	filter, err := h.leadFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	leads, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, leads, pagination)
}

// Update godoc
// @Summary Update a lead
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param payload body dto.LeadRequest true "Lead payload"
// @Success 200 {object} response.Envelope
// @Router /admin/leads/{id} [put]
func (h *LeadHandler) Update(c *gin.Context) {
	var req dto.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lead payload"))
		return
	}
	lead, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lead, nil)
}

// Delete godoc
// @Summary Delete a lead
// @Tags Leads
// @Param id path string true "Lead ID"
// @Success 204
// @Router /admin/leads/{id} [delete]
func (h *LeadHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download the lead list as CSV
// @Tags Leads
// @Produce text/csv
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Router /admin/leads/export [get]
func (h *LeadHandler) Export(c *gin.Context) {
	filter, err := h.leadFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, filename, err := h.service.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

func (h *LeadHandler) leadFilter(c *gin.Context) (models.LeadFilter, error) {
	filter := models.LeadFilter{
		Search:   c.Query("search"),
		Page:     atoiDefault(c.Query("page"), 1),
		PageSize: atoiDefault(c.Query("pageSize"), 50),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.LeadStatus(strings.ToUpper(raw))
		switch status {
		case models.LeadNew, models.LeadContacted, models.LeadQuoted, models.LeadWon, models.LeadLost:
			filter.Status = &status
		default:
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown lead status")
		}
	}
	return filter, nil
}
