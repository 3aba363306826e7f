package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/internal/scheduling"
	"github.com/harlowe-audio/studio-api/pkg/config"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
)

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error
}

type productionRepository interface {
	EnsureForBooking(ctx context.Context, bookingID string) (*models.ProductionTask, error)
	GetByBookingID(ctx context.Context, bookingID string) (*models.ProductionTask, error)
	List(ctx context.Context) ([]models.ProductionTask, error)
	Update(ctx context.Context, task *models.ProductionTask) error
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// EstimateResponse answers the public duration estimate.
type EstimateResponse struct {
	WordCount  int `json:"word_count"`
	DaysNeeded int `json:"days_needed"`
}

// IntakeResponse is what the public scheduler gets back after a successful
// submission.
type IntakeResponse struct {
	BookingID     string          `json:"booking_id"`
	StartDate     scheduling.Date `json:"start_date"`
	EndDate       scheduling.Date `json:"end_date"`
	DaysNeeded    int             `json:"days_needed"`
	DiscountLabel string          `json:"discount_label"`
	Status        string          `json:"status"`
}

// BookingService implements the public intake flow and the admin pipeline.
type BookingService struct {
	repo         bookingRepository
	production   productionRepository
	availability *AvailabilityService
	audit        auditRecorder
	validator    *validator.Validate
	logger       *zap.Logger
	metrics      *MetricsService

	estimator  scheduling.Estimator
	intake     scheduling.IntakeValidator
	loc        *time.Location
	multiVoice map[string]struct{}
}

// NewBookingService constructs a BookingService from the scheduling config.
func NewBookingService(repo bookingRepository, production productionRepository, availability *AvailabilityService, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cfg config.SchedulingConfig) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil || cfg.Timezone == "" {
		loc = time.UTC
	}

	tiers := make([]scheduling.DiscountTier, 0, len(cfg.DiscountTiers))
	for _, t := range cfg.DiscountTiers {
		tiers = append(tiers, scheduling.DiscountTier{MinDaysOut: t.MinDaysOut, Label: t.Label})
	}

	multiVoice := make(map[string]struct{}, len(cfg.MultiVoiceStyles))
	for _, style := range cfg.MultiVoiceStyles {
		multiVoice[strings.ToLower(strings.TrimSpace(style))] = struct{}{}
	}

	return &BookingService{
		repo:         repo,
		production:   production,
		availability: availability,
		audit:        audit,
		validator:    validate,
		logger:       logger,
		metrics:      metrics,
		estimator:    scheduling.NewEstimator(cfg.WordsPerDay),
		intake:       scheduling.NewIntakeValidator(tiers),
		loc:          loc,
		multiVoice:   multiVoice,
	}
}

// Estimate converts a manuscript word count into recording days.
func (s *BookingService) Estimate(wordCount int) EstimateResponse {
	return EstimateResponse{
		WordCount:  wordCount,
		DaysNeeded: s.estimator.Days(wordCount),
	}
}

// Intake validates and persists a public booking submission. The checks run
// in a fixed order and the first failure wins, so the client always gets one
// actionable message.
func (s *BookingService) Intake(ctx context.Context, req dto.BookingIntakeRequest) (*IntakeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	start, err := scheduling.Parse(req.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start_date must be YYYY-MM-DD")
	}

	days := req.DaysNeeded
	if days <= 0 {
		days = s.estimator.Days(req.WordCount)
	}

	ix, err := s.availability.Index(ctx)
	if err != nil {
		s.metrics.RecordIntake(IntakeOutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	result, err := s.intake.Validate(scheduling.Candidate{
		StartDate:    start,
		DurationDays: days,
		WordCount:    req.WordCount,
	}, ix, scheduling.Today(s.loc))
	if err != nil {
		s.metrics.RecordIntake(intakeOutcome(err))
		return nil, err
	}

	booking := &models.Booking{
		ClientName:      req.ClientName,
		Email:           req.Email,
		BookTitle:       req.BookTitle,
		WordCount:       result.WordCount,
		DaysNeeded:      result.DurationDays,
		StartDate:       result.StartDate.Time(),
		EndDate:         result.EndDate.Time(),
		NarrationStyle:  req.NarrationStyle,
		Genre:           req.Genre,
		Notes:           req.Notes,
		IsReturning:     req.IsReturning,
		DiscountApplied: result.DiscountLabel,
		ClientType:      req.ClientType,
		Status:          s.initialStatus(req.NarrationStyle),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		s.metrics.RecordIntake(IntakeOutcomeError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save booking")
	}

	s.availability.Invalidate(ctx)
	s.metrics.RecordIntake(IntakeOutcomeAccepted)
	s.logger.Info("booking received",
		zap.String("booking_id", booking.ID),
		zap.String("status", string(booking.Status)),
		zap.String("discount", booking.DiscountApplied),
		zap.Int("days_needed", booking.DaysNeeded),
	)

	return &IntakeResponse{
		BookingID:     booking.ID,
		StartDate:     result.StartDate,
		EndDate:       result.EndDate,
		DaysNeeded:    result.DurationDays,
		DiscountLabel: result.DiscountLabel,
		Status:        string(booking.Status),
	}, nil
}

// List returns bookings for the admin table.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, *models.Pagination, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return bookings, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get fetches one booking.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

// Transition moves a booking to the requested status. Only moves present in
// the transition table are allowed. Entering PRODUCTION creates the companion
// production task; the creation is idempotent so a re-fired transition cannot
// duplicate it.
func (s *BookingService) Transition(ctx context.Context, id string, next models.BookingStatus, actorID string) (*models.Booking, error) {
	if !next.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown booking status")
	}

	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransitionTo(next) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			"cannot move booking from "+string(booking.Status)+" to "+string(next))
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking status")
	}

	if next == models.BookingProduction {
		if _, err := s.production.EnsureForBooking(ctx, id); err != nil {
			s.logger.Error("failed to ensure production task", zap.String("booking_id", id), zap.Error(err))
		}
	}

	// A move on or off the calendar changes the public availability.
	if booking.Status.BlocksAvailability() != next.BlocksAvailability() {
		s.availability.Invalidate(ctx)
	}

	s.recordStatusAudit(ctx, booking, next, actorID)

	booking.Status = next
	return booking, nil
}

// ProductionTask fetches the production record for a booking.
func (s *BookingService) ProductionTask(ctx context.Context, bookingID string) (*models.ProductionTask, error) {
	task, err := s.production.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no production task for booking")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load production task")
	}
	return task, nil
}

// ListProduction returns every production task.
func (s *BookingService) ListProduction(ctx context.Context) ([]models.ProductionTask, error) {
	tasks, err := s.production.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list production tasks")
	}
	return tasks, nil
}

// UpdateProduction records progress on a production task.
func (s *BookingService) UpdateProduction(ctx context.Context, bookingID string, req dto.ProductionUpdateRequest) (*models.ProductionTask, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid production payload")
	}
	stage := models.ProductionStage(strings.ToUpper(req.Stage))
	switch stage {
	case models.StagePrep, models.StageRecording, models.StageEditing, models.StageProofing, models.StageDelivered:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown production stage")
	}

	task, err := s.ProductionTask(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	task.Stage = stage
	task.FinishedHours = req.FinishedHours
	task.ChaptersDone = req.ChaptersDone
	task.ChaptersTotal = req.ChaptersTotal
	task.Notes = req.Notes
	if err := s.production.Update(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update production task")
	}
	return task, nil
}

// initialStatus routes multi-voice styles into the coordination queue; solo
// reads start as a plain pending request.
func (s *BookingService) initialStatus(narrationStyle string) models.BookingStatus {
	if _, ok := s.multiVoice[strings.ToLower(strings.TrimSpace(narrationStyle))]; ok {
		return models.BookingCoordination
	}
	return models.BookingPending
}

func (s *BookingService) recordStatusAudit(ctx context.Context, booking *models.Booking, next models.BookingStatus, actorID string) {
	if s.audit == nil {
		return
	}
	oldValues, _ := json.Marshal(map[string]string{"status": string(booking.Status)})
	newValues, _ := json.Marshal(map[string]string{"status": string(next)})
	entry := &models.AuditLog{
		Action:     models.AuditActionStatusChange,
		Resource:   "booking",
		ResourceID: &booking.ID,
		OldValues:  oldValues,
		NewValues:  newValues,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record status audit log", zap.Error(err))
	}
}

func intakeOutcome(err error) string {
	var appErr *appErrors.Error
	if !errors.As(err, &appErr) {
		return IntakeOutcomeError
	}
	switch appErr.Code {
	case appErrors.ErrEmptyWordCount.Code:
		return IntakeOutcomeEmptyWords
	case appErrors.ErrPastDate.Code:
		return IntakeOutcomePastDate
	case appErrors.ErrDatesUnavailable.Code:
		return IntakeOutcomeConflict
	default:
		return IntakeOutcomeError
	}
}
