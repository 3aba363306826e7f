package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/internal/service"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
	"github.com/harlowe-audio/studio-api/pkg/response"
)

type bookingService interface {
	Estimate(wordCount int) service.EstimateResponse
	Intake(ctx context.Context, req dto.BookingIntakeRequest) (*service.IntakeResponse, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Booking, error)
	Transition(ctx context.Context, id string, next models.BookingStatus, actorID string) (*models.Booking, error)
	ProductionTask(ctx context.Context, bookingID string) (*models.ProductionTask, error)
	ListProduction(ctx context.Context) ([]models.ProductionTask, error)
	UpdateProduction(ctx context.Context, bookingID string, req dto.ProductionUpdateRequest) (*models.ProductionTask, error)
}

// BookingHandler exposes the public scheduler and the admin pipeline.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler builds a new handler.
func NewBookingHandler(service bookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// Estimate godoc
// @Summary Estimate recording days for a word count
// @Tags Bookings
// @Produce json
// @Param word_count query int true "Manuscript word count"
// @Success 200 {object} response.Envelope
// @Router /bookings/estimate [get]
func (h *BookingHandler) Estimate(c *gin.Context) {
	wordCount, err := strconv.Atoi(c.DefaultQuery("word_count", "0"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "word_count must be a number"))
		return
	}
	response.JSON(c, http.StatusOK, h.service.Estimate(wordCount), nil)
}

// Intake godoc
// @Summary Submit a public booking request
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.BookingIntakeRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Intake(c *gin.Context) {
	var req dto.BookingIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}
	result, err := h.service.Intake(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param status query string false "Status filter"
// @Param search query string false "Client, email, or title search"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := models.BookingFilter{
		Search:   c.Query("search"),
		Page:     atoiDefault(c.Query("page"), 1),
		PageSize: atoiDefault(c.Query("pageSize"), 50),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.BookingStatus(strings.ToUpper(raw))
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown booking status"))
			return
		}
		filter.Status = &status
	}
	bookings, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Get godoc
// @Summary Get a booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /admin/bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// Transition godoc
// @Summary Move a booking through the pipeline
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.BookingStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/bookings/{id}/status [patch]
func (h *BookingHandler) Transition(c *gin.Context) {
	var req dto.BookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	next := models.BookingStatus(strings.ToUpper(req.Status))
	booking, err := h.service.Transition(c.Request.Context(), c.Param("id"), next, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, booking, nil)
}

// ListProduction godoc
// @Summary List production tasks
// @Tags Production
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/production [get]
func (h *BookingHandler) ListProduction(c *gin.Context) {
	tasks, err := h.service.ListProduction(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}

// GetProduction godoc
// @Summary Get the production task for a booking
// @Tags Production
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Router /admin/bookings/{id}/production [get]
func (h *BookingHandler) GetProduction(c *gin.Context) {
	task, err := h.service.ProductionTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// UpdateProduction godoc
// @Summary Update production progress for a booking
// @Tags Production
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.ProductionUpdateRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Router /admin/bookings/{id}/production [put]
func (h *BookingHandler) UpdateProduction(c *gin.Context) {
	var req dto.ProductionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid production payload"))
		return
	}
	task, err := h.service.UpdateProduction(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

func atoiDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
