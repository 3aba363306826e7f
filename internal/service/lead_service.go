package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
	"github.com/harlowe-audio/studio-api/pkg/export"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
)

type leadRepository interface {
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error)
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	Create(ctx context.Context, lead *models.Lead) error
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, id string) error
}

// LeadService manages the lightweight CRM behind the contact form.
type LeadService struct {
	repo      leadRepository
	csv       csvRenderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeadService constructs a LeadService.
func NewLeadService(repo leadRepository, validate *validator.Validate, logger *zap.Logger) *LeadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LeadService{repo: repo, csv: export.NewCSVExporter(), validator: validate, logger: logger}
}

// List returns leads for the CRM table.
func (s *LeadService) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, *models.Pagination, error) {
	leads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leads")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return leads, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Capture stores a lead from the public contact form. New leads always enter
// as NEW regardless of what the client sends.
func (s *LeadService) Capture(ctx context.Context, req dto.LeadRequest) (*models.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lead payload")
	}
	lead := &models.Lead{
		Name:   req.Name,
		Email:  req.Email,
		Source: req.Source,
		Status: models.LeadNew,
		Notes:  req.Notes,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lead")
	}
	return lead, nil
}

// Update modifies a lead from the admin CRM, including its follow-up status.
func (s *LeadService) Update(ctx context.Context, id string, req dto.LeadRequest) (*models.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lead payload")
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}

	if req.Status != "" {
		status := models.LeadStatus(strings.ToUpper(req.Status))
		switch status {
		case models.LeadNew, models.LeadContacted, models.LeadQuoted, models.LeadWon, models.LeadLost:
			lead.Status = status
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown lead status")
		}
	}
	lead.Name = req.Name
	lead.Email = req.Email
	lead.Source = req.Source
	lead.Notes = req.Notes

	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lead")
	}
	return lead, nil
}

// Delete removes a lead.
func (s *LeadService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lead")
	}
	return nil
}

// ExportCSV renders the filtered lead list for download.
func (s *LeadService) ExportCSV(ctx context.Context, filter models.LeadFilter) ([]byte, string, error) {
	filter.Page = 1
	filter.PageSize = 200
	leads, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leads")
	}

	dataset := export.Dataset{
		Headers: []string{"Name", "Email", "Source", "Status", "Notes", "Created"},
	}
	for _, lead := range leads {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":    lead.Name,
			"Email":   lead.Email,
			"Source":  lead.Source,
			"Status":  string(lead.Status),
			"Notes":   lead.Notes,
			"Created": lead.CreatedAt.Format("2006-01-02"),
		})
	}
	dataset.Footer = []string{fmt.Sprintf("Total leads: %d", len(leads))}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render lead export")
	}
	filename := fmt.Sprintf("leads_%s.csv", time.Now().UTC().Format("20060102_150405"))
	return payload, filename, nil
}
