package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/middleware"
	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/internal/service"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
)

type bookingServiceMock struct {
	estimateResp  service.EstimateResponse
	intakeResp    *service.IntakeResponse
	intakeErr     error
	listResp      []models.Booking
	transitionErr error
}

func (m *bookingServiceMock) Estimate(wordCount int) service.EstimateResponse {
	return m.estimateResp
}

func (m *bookingServiceMock) Intake(ctx context.Context, req dto.BookingIntakeRequest) (*service.IntakeResponse, error) {
	if m.intakeErr != nil {
		return nil, m.intakeErr
	}
	return m.intakeResp, nil
}

func (m *bookingServiceMock) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	return m.listResp, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: len(m.listResp)}, nil
}

func (m *bookingServiceMock) Get(ctx context.Context, id string) (*models.Booking, error) {
	return &models.Booking{ID: id}, nil
}

func (m *bookingServiceMock) Transition(ctx context.Context, id string, next models.BookingStatus, actorID string) (*models.Booking, error) {
	if m.transitionErr != nil {
		return nil, m.transitionErr
	}
	return &models.Booking{ID: id, Status: next}, nil
}

func (m *bookingServiceMock) ProductionTask(ctx context.Context, bookingID string) (*models.ProductionTask, error) {
	return &models.ProductionTask{BookingID: bookingID}, nil
}

func (m *bookingServiceMock) ListProduction(ctx context.Context) ([]models.ProductionTask, error) {
	return nil, nil
}

func (m *bookingServiceMock) UpdateProduction(ctx context.Context, bookingID string, req dto.ProductionUpdateRequest) (*models.ProductionTask, error) {
	return &models.ProductionTask{BookingID: bookingID}, nil
}

func intakeBody(t *testing.T) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(dto.BookingIntakeRequest{
		ClientName:     "Mara Quinn",
		Email:          "mara@example.com",
		BookTitle:      "The Long Bridge",
		NarrationStyle: "solo",
		WordCount:      50000,
		StartDate:      "2026-12-01",
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestBookingHandlerIntakeAccepted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(&bookingServiceMock{
		intakeResp: &service.IntakeResponse{BookingID: "booking-1", Status: string(models.BookingPending)},
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/bookings", intakeBody(t))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Intake(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "booking-1")
}

func TestBookingHandlerIntakeInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(&bookingServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/bookings", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Intake(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandlerIntakeEmptyWordCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(&bookingServiceMock{intakeErr: appErrors.ErrEmptyWordCount})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/bookings", intakeBody(t))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Intake(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "EMPTY_WORD_COUNT")
}

func TestBookingHandlerIntakeConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(&bookingServiceMock{intakeErr: appErrors.ErrDatesUnavailable})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/bookings", intakeBody(t))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Intake(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandlerEstimate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(&bookingServiceMock{
		estimateResp: service.EstimateResponse{WordCount: 50000, DaysNeeded: 8},
	})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/bookings/estimate?word_count=50000", nil)
	c.Request = req

	handler.Estimate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"days_needed":8`)
}

func TestBookingHandlerEstimateBadQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(&bookingServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/bookings/estimate?word_count=lots", nil)
	c.Request = req

	handler.Estimate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandlerListRejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(&bookingServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/admin/bookings?status=SHIPPED", nil)
	c.Request = req

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandlerTransitionConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(&bookingServiceMock{transitionErr: appErrors.ErrInvalidTransition})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.BookingStatusRequest{Status: "paid"})
	req, _ := http.NewRequest(http.MethodPatch, "/admin/bookings/booking-1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "booking-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.Transition(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")
}
