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
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
)

type contentRepository interface {
	List(ctx context.Context, publishedOnly bool) ([]models.ContentPage, error)
	GetBySlug(ctx context.Context, slug string) (*models.ContentPage, error)
	Upsert(ctx context.Context, page *models.ContentPage) error
	Delete(ctx context.Context, slug string) error
}

// ContentService serves marketing-site pages. Public reads only ever see
// published pages; the admin editor sees everything.
type ContentService struct {
	repo      contentRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContentService constructs a ContentService.
func NewContentService(repo contentRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ContentService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// ListPublished returns pages for the public site.
func (s *ContentService) ListPublished(ctx context.Context) ([]models.ContentPage, error) {
	pages, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pages")
	}
	return pages, nil
}

// ListAll returns every page for the admin editor.
func (s *ContentService) ListAll(ctx context.Context) ([]models.ContentPage, error) {
	pages, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pages")
	}
	return pages, nil
}

// GetPublished fetches one published page by slug; drafts read as not found.
func (s *ContentService) GetPublished(ctx context.Context, slug string) (*models.ContentPage, error) {
	page, err := s.get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !page.Published {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
	}
	return page, nil
}

// Get fetches one page regardless of publication state.
func (s *ContentService) Get(ctx context.Context, slug string) (*models.ContentPage, error) {
	return s.get(ctx, slug)
}

// Save creates or updates a page by slug.
func (s *ContentService) Save(ctx context.Context, slug string, req dto.ContentPageRequest, actorID string) (*models.ContentPage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid page payload")
	}
	if slug == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slug required")
	}

	page := &models.ContentPage{
		Slug:      slug,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
		UpdatedBy: actorID,
	}
	if err := s.repo.Upsert(ctx, page); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save page")
	}
	s.recordAudit(ctx, page, actorID)
	return page, nil
}

// Delete removes a page.
func (s *ContentService) Delete(ctx context.Context, slug string, actorID string) error {
	if _, err := s.get(ctx, slug); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, slug); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete page")
	}
	s.recordAudit(ctx, &models.ContentPage{Slug: slug}, actorID)
	return nil
}

func (s *ContentService) get(ctx context.Context, slug string) (*models.ContentPage, error) {
	page, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load page")
	}
	return page, nil
}

func (s *ContentService) recordAudit(ctx context.Context, page *models.ContentPage, actorID string) {
	if s.audit == nil {
		return
	}
	newValues, _ := json.Marshal(map[string]interface{}{
		"slug":      page.Slug,
		"title":     page.Title,
		"published": page.Published,
	})
	entry := &models.AuditLog{
		Action:     models.AuditActionContentWrite,
		Resource:   "content_page",
		ResourceID: &page.Slug,
		NewValues:  newValues,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record content audit log", zap.Error(err))
	}
}
