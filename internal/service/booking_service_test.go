package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/internal/scheduling"
	"github.com/harlowe-audio/studio-api/pkg/config"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
)

type bookingRepoStub struct {
	bookings      map[string]*models.Booking
	created       []*models.Booking
	statusUpdates map[string]models.BookingStatus
	ranges        []models.BookingRange
	createErr     error
}

func (s *bookingRepoStub) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	out := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (s *bookingRepoStub) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := s.bookings[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *bookingRepoStub) Create(ctx context.Context, booking *models.Booking) error {
	if s.createErr != nil {
		return s.createErr
	}
	booking.ID = "booking-new"
	s.created = append(s.created, booking)
	return nil
}

func (s *bookingRepoStub) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if s.statusUpdates == nil {
		s.statusUpdates = make(map[string]models.BookingStatus)
	}
	s.statusUpdates[id] = status
	return nil
}

func (s *bookingRepoStub) ListActiveRanges(ctx context.Context) ([]models.BookingRange, error) {
	return s.ranges, nil
}

type productionRepoStub struct {
	tasks       map[string]*models.ProductionTask
	ensureCalls []string
}

func (s *productionRepoStub) EnsureForBooking(ctx context.Context, bookingID string) (*models.ProductionTask, error) {
	s.ensureCalls = append(s.ensureCalls, bookingID)
	if s.tasks == nil {
		s.tasks = make(map[string]*models.ProductionTask)
	}
	if task, ok := s.tasks[bookingID]; ok {
		return task, nil
	}
	task := &models.ProductionTask{ID: "task-" + bookingID, BookingID: bookingID, Stage: models.StagePrep}
	s.tasks[bookingID] = task
	return task, nil
}

func (s *productionRepoStub) GetByBookingID(ctx context.Context, bookingID string) (*models.ProductionTask, error) {
	if task, ok := s.tasks[bookingID]; ok {
		return task, nil
	}
	return nil, sql.ErrNoRows
}

func (s *productionRepoStub) List(ctx context.Context) ([]models.ProductionTask, error) {
	out := make([]models.ProductionTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (s *productionRepoStub) Update(ctx context.Context, task *models.ProductionTask) error {
	s.tasks[task.BookingID] = task
	return nil
}

type blockoutListStub struct {
	blockouts []models.Blockout
}

func (s *blockoutListStub) List(ctx context.Context) ([]models.Blockout, error) {
	return s.blockouts, nil
}

type auditStub struct {
	entries []*models.AuditLog
}

func (s *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.entries = append(s.entries, log)
	return nil
}

func testSchedulingConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		WordsPerDay: 6975,
		Timezone:    "UTC",
		DiscountTiers: []config.DiscountTierConfig{
			{MinDaysOut: 120, Label: "8%"},
			{MinDaysOut: 90, Label: "7%"},
			{MinDaysOut: 60, Label: "6%"},
			{MinDaysOut: 30, Label: "5%"},
		},
		MultiVoiceStyles: []string{"duet", "multi-cast"},
	}
}

func newBookingServiceForTest(repo *bookingRepoStub, production *productionRepoStub) (*BookingService, *auditStub) {
	availability := NewAvailabilityService(repo, &blockoutListStub{}, NewCacheService(nil, nil, 0, zap.NewNop(), false), nil, zap.NewNop(), 0)
	audit := &auditStub{}
	svc := NewBookingService(repo, production, availability, audit, nil, zap.NewNop(), nil, testSchedulingConfig())
	return svc, audit
}

func intakeRequest(start scheduling.Date) dto.BookingIntakeRequest {
	return dto.BookingIntakeRequest{
		ClientName:     "Mara Quist",
		Email:          "mara@example.com",
		BookTitle:      "The Glass Harbor",
		WordCount:      50000,
		StartDate:      start.String(),
		NarrationStyle: "solo",
	}
}

func TestBookingServiceIntakeAccepted(t *testing.T) {
	repo := &bookingRepoStub{bookings: map[string]*models.Booking{}}
	svc, _ := newBookingServiceForTest(repo, &productionRepoStub{})

	start := scheduling.Today(time.UTC).AddDays(95)
	resp, err := svc.Intake(context.Background(), intakeRequest(start))
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	// 50000 words at 6975/day is 8 days, booked 95 days out earns the 90-day tier.
	assert.Equal(t, 8, resp.DaysNeeded)
	assert.Equal(t, "7%", resp.DiscountLabel)
	assert.Equal(t, string(models.BookingPending), resp.Status)
	assert.Equal(t, start.AddDays(8), resp.EndDate)
	assert.Equal(t, "7%", repo.created[0].DiscountApplied)
}

func TestBookingServiceIntakeMultiVoiceGoesToCoordination(t *testing.T) {
	repo := &bookingRepoStub{bookings: map[string]*models.Booking{}}
	svc, _ := newBookingServiceForTest(repo, &productionRepoStub{})

	req := intakeRequest(scheduling.Today(time.UTC).AddDays(10))
	req.NarrationStyle = "Duet"
	resp, err := svc.Intake(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingCoordination), resp.Status)
	assert.Equal(t, "None", resp.DiscountLabel)
}

func TestBookingServiceIntakeEmptyWordCountWinsOverPastDate(t *testing.T) {
	repo := &bookingRepoStub{bookings: map[string]*models.Booking{}}
	svc, _ := newBookingServiceForTest(repo, &productionRepoStub{})

	req := intakeRequest(scheduling.Today(time.UTC).AddDays(-5))
	req.WordCount = 0
	_, err := svc.Intake(context.Background(), req)
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrEmptyWordCount.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestBookingServiceIntakePastDate(t *testing.T) {
	repo := &bookingRepoStub{bookings: map[string]*models.Booking{}}
	svc, _ := newBookingServiceForTest(repo, &productionRepoStub{})

	_, err := svc.Intake(context.Background(), intakeRequest(scheduling.Today(time.UTC).AddDays(-1)))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPastDate.Code, appErr.Code)
}

func TestBookingServiceIntakeConflict(t *testing.T) {
	start := scheduling.Today(time.UTC).AddDays(40)
	repo := &bookingRepoStub{
		bookings: map[string]*models.Booking{},
		ranges: []models.BookingRange{
			{StartDate: start.AddDays(2).Time(), EndDate: start.AddDays(3).Time()},
		},
	}
	svc, _ := newBookingServiceForTest(repo, &productionRepoStub{})

	_, err := svc.Intake(context.Background(), intakeRequest(start))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDatesUnavailable.Code, appErr.Code)
	assert.Contains(t, appErr.Message, start.AddDays(2).String())
	assert.Empty(t, repo.created)
}

func TestBookingServiceTransitionAllowed(t *testing.T) {
	repo := &bookingRepoStub{bookings: map[string]*models.Booking{
		"booking-1": {ID: "booking-1", Status: models.BookingPending},
	}}
	svc, audit := newBookingServiceForTest(repo, &productionRepoStub{})

	updated, err := svc.Transition(context.Background(), "booking-1", models.BookingOnboarding, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookingOnboarding, updated.Status)
	assert.Equal(t, models.BookingOnboarding, repo.statusUpdates["booking-1"])
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionStatusChange, audit.entries[0].Action)
}

func TestBookingServiceTransitionRejected(t *testing.T) {
	repo := &bookingRepoStub{bookings: map[string]*models.Booking{
		"booking-1": {ID: "booking-1", Status: models.BookingPending},
	}}
	svc, _ := newBookingServiceForTest(repo, &productionRepoStub{})

	_, err := svc.Transition(context.Background(), "booking-1", models.BookingPaid, "user-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
	assert.Empty(t, repo.statusUpdates)
}

func TestBookingServiceTransitionToProductionCreatesTask(t *testing.T) {
	repo := &bookingRepoStub{bookings: map[string]*models.Booking{
		"booking-1": {ID: "booking-1", Status: models.BookingFirst15},
	}}
	production := &productionRepoStub{}
	svc, _ := newBookingServiceForTest(repo, production)

	_, err := svc.Transition(context.Background(), "booking-1", models.BookingProduction, "user-1")
	require.NoError(t, err)
	require.Len(t, production.ensureCalls, 1)
	assert.Equal(t, "booking-1", production.ensureCalls[0])
}

func TestBookingServiceEstimate(t *testing.T) {
	svc, _ := newBookingServiceForTest(&bookingRepoStub{bookings: map[string]*models.Booking{}}, &productionRepoStub{})

	resp := svc.Estimate(50000)
	assert.Equal(t, 8, resp.DaysNeeded)
	assert.Equal(t, 0, svc.Estimate(0).DaysNeeded)
}

func TestBookingServiceUpdateProduction(t *testing.T) {
	production := &productionRepoStub{tasks: map[string]*models.ProductionTask{
		"booking-1": {ID: "task-1", BookingID: "booking-1", Stage: models.StagePrep},
	}}
	svc, _ := newBookingServiceForTest(&bookingRepoStub{bookings: map[string]*models.Booking{}}, production)

	task, err := svc.UpdateProduction(context.Background(), "booking-1", dto.ProductionUpdateRequest{
		Stage:         "recording",
		FinishedHours: 2.5,
		ChaptersDone:  3,
		ChaptersTotal: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StageRecording, task.Stage)
	assert.Equal(t, 3, task.ChaptersDone)

	_, err = svc.UpdateProduction(context.Background(), "booking-1", dto.ProductionUpdateRequest{Stage: "mixing"})
	require.Error(t, err)
}
