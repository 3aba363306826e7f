package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/internal/scheduling"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
)

type blockoutRepository interface {
	List(ctx context.Context) ([]models.Blockout, error)
	GetByID(ctx context.Context, id string) (*models.Blockout, error)
	Create(ctx context.Context, blockout *models.Blockout) error
	Update(ctx context.Context, blockout *models.Blockout) error
	Delete(ctx context.Context, id string) error
}

// BlockoutService manages manual calendar block-outs (vacations, studio
// maintenance, conference weeks). Every write invalidates the availability
// snapshot since block-outs occupy days the same way confirmed bookings do.
type BlockoutService struct {
	repo         blockoutRepository
	availability *AvailabilityService
	audit        auditRecorder
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewBlockoutService constructs a BlockoutService.
func NewBlockoutService(repo blockoutRepository, availability *AvailabilityService, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *BlockoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BlockoutService{repo: repo, availability: availability, audit: audit, validator: validate, logger: logger}
}

// List returns all block-outs.
func (s *BlockoutService) List(ctx context.Context) ([]models.Blockout, error) {
	blockouts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blockouts")
	}
	return blockouts, nil
}

// Create validates and persists a new block-out.
func (s *BlockoutService) Create(ctx context.Context, req dto.BlockoutRequest, actorID string) (*models.Blockout, error) {
	blockout, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	blockout.CreatedBy = actorID
	if err := s.repo.Create(ctx, blockout); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create blockout")
	}
	s.availability.Invalidate(ctx)
	s.recordAudit(ctx, blockout, actorID)
	return blockout, nil
}

// Update modifies an existing block-out.
func (s *BlockoutService) Update(ctx context.Context, id string, req dto.BlockoutRequest, actorID string) (*models.Blockout, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blockout not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blockout")
	}

	updated, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	existing.StartDate = updated.StartDate
	existing.EndDate = updated.EndDate
	existing.Reason = updated.Reason
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update blockout")
	}
	s.availability.Invalidate(ctx)
	s.recordAudit(ctx, existing, actorID)
	return existing, nil
}

// Delete removes a block-out and frees its days.
func (s *BlockoutService) Delete(ctx context.Context, id string, actorID string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "blockout not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blockout")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete blockout")
	}
	s.availability.Invalidate(ctx)
	s.recordAudit(ctx, &models.Blockout{ID: id}, actorID)
	return nil
}

func (s *BlockoutService) fromRequest(req dto.BlockoutRequest) (*models.Blockout, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid blockout payload")
	}
	start, err := scheduling.Parse(req.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start_date must be YYYY-MM-DD")
	}
	end, err := scheduling.Parse(req.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date precedes start_date")
	}
	return &models.Blockout{
		StartDate: start.Time(),
		EndDate:   end.Time(),
		Reason:    req.Reason,
	}, nil
}

func (s *BlockoutService) recordAudit(ctx context.Context, blockout *models.Blockout, actorID string) {
	if s.audit == nil {
		return
	}
	newValues, _ := json.Marshal(blockout)
	entry := &models.AuditLog{
		Action:     models.AuditActionBlockoutWrite,
		Resource:   "blockout",
		ResourceID: &blockout.ID,
		NewValues:  newValues,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record blockout audit log", zap.Error(err))
	}
}
