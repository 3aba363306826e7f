package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
)

type leadRepoStub struct {
	leads   map[string]*models.Lead
	created []*models.Lead
	updated []*models.Lead
}

func (s *leadRepoStub) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error) {
	out := make([]models.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (s *leadRepoStub) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	if l, ok := s.leads[id]; ok {
		copied := *l
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *leadRepoStub) Create(ctx context.Context, lead *models.Lead) error {
	lead.ID = "lead-new"
	s.created = append(s.created, lead)
	return nil
}

func (s *leadRepoStub) Update(ctx context.Context, lead *models.Lead) error {
	s.updated = append(s.updated, lead)
	return nil
}

func (s *leadRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.leads, id)
	return nil
}

func TestLeadServiceCaptureAlwaysStartsNew(t *testing.T) {
	repo := &leadRepoStub{leads: map[string]*models.Lead{}}
	svc := NewLeadService(repo, nil, zap.NewNop())

	lead, err := svc.Capture(context.Background(), dto.LeadRequest{
		Name:   "Jo Ferris",
		Email:  "jo@example.com",
		Source: "contact-form",
		Status: "WON",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeadNew, lead.Status)
}

func TestLeadServiceUpdateStatus(t *testing.T) {
	repo := &leadRepoStub{leads: map[string]*models.Lead{
		"lead-1": {ID: "lead-1", Name: "Jo Ferris", Email: "jo@example.com", Status: models.LeadNew},
	}}
	svc := NewLeadService(repo, nil, zap.NewNop())

	lead, err := svc.Update(context.Background(), "lead-1", dto.LeadRequest{
		Name:   "Jo Ferris",
		Email:  "jo@example.com",
		Status: "quoted",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeadQuoted, lead.Status)

	_, err = svc.Update(context.Background(), "lead-1", dto.LeadRequest{
		Name:   "Jo Ferris",
		Email:  "jo@example.com",
		Status: "SPAM",
	})
	require.Error(t, err)
}

func TestLeadServiceExportCSV(t *testing.T) {
	repo := &leadRepoStub{leads: map[string]*models.Lead{
		"lead-1": {ID: "lead-1", Name: "Jo Ferris", Email: "jo@example.com", Source: "contact-form", Status: models.LeadQuoted},
	}}
	svc := NewLeadService(repo, nil, zap.NewNop())

	payload, filename, err := svc.ExportCSV(context.Background(), models.LeadFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "Name,Email,Source,Status"))
	assert.Contains(t, body, "jo@example.com")
	assert.Contains(t, body, "Total leads: 1")
}
