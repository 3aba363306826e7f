package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harlowe-audio/studio-api/internal/scheduling"
	"github.com/harlowe-audio/studio-api/internal/service"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
	"github.com/harlowe-audio/studio-api/pkg/response"
)

type availabilityService interface {
	Calendar(ctx context.Context, from, to scheduling.Date) (*service.CalendarMonth, error)
	CheckRange(ctx context.Context, start scheduling.Date, days int) (bool, []scheduling.Date, error)
}

// AvailabilityHandler paints the public booking calendar.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler builds a new handler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// Calendar godoc
// @Summary Booked days within a date window
// @Tags Availability
// @Produce json
// @Param from query string false "Window start (YYYY-MM-DD, defaults to today)"
// @Param to query string false "Window end (YYYY-MM-DD, defaults to 90 days out)"
// @Success 200 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) Calendar(c *gin.Context) {
	from := scheduling.Today(time.UTC)
	if raw := c.Query("from"); raw != "" {
		parsed, err := scheduling.Parse(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	to := from.AddDays(89)
	if raw := c.Query("to"); raw != "" {
		parsed, err := scheduling.Parse(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be YYYY-MM-DD"))
			return
		}
		to = parsed
	}

	month, err := h.service.Calendar(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, month, nil)
}

// Check godoc
// @Summary Check whether a span of days is free
// @Tags Availability
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param days query int true "Consecutive days required"
// @Success 200 {object} response.Envelope
// @Router /availability/check [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	start, err := scheduling.Parse(c.Query("start"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start must be YYYY-MM-DD"))
		return
	}
	days := atoiDefault(c.Query("days"), 0)
	if days <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "days must be at least 1"))
		return
	}

	free, conflicts, err := h.service.CheckRange(c.Request.Context(), start, days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"free":      free,
		"conflicts": conflicts,
	}, nil)
}
