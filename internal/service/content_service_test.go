package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
)

type contentRepoStub struct {
	pages   map[string]*models.ContentPage
	upserts []*models.ContentPage
}

func (s *contentRepoStub) List(ctx context.Context, publishedOnly bool) ([]models.ContentPage, error) {
	out := make([]models.ContentPage, 0, len(s.pages))
	for _, p := range s.pages {
		if publishedOnly && !p.Published {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *contentRepoStub) GetBySlug(ctx context.Context, slug string) (*models.ContentPage, error) {
	if p, ok := s.pages[slug]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *contentRepoStub) Upsert(ctx context.Context, page *models.ContentPage) error {
	s.upserts = append(s.upserts, page)
	s.pages[page.Slug] = page
	return nil
}

func (s *contentRepoStub) Delete(ctx context.Context, slug string) error {
	delete(s.pages, slug)
	return nil
}

func newContentRepoStub() *contentRepoStub {
	return &contentRepoStub{pages: map[string]*models.ContentPage{
		"about": {ID: "page-1", Slug: "about", Title: "About", Published: true},
		"rates": {ID: "page-2", Slug: "rates", Title: "Rates", Published: false},
	}}
}

func TestContentServicePublishedFiltering(t *testing.T) {
	svc := NewContentService(newContentRepoStub(), &auditStub{}, nil, zap.NewNop())

	published, err := svc.ListPublished(context.Background())
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "about", published[0].Slug)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestContentServiceGetPublishedHidesDrafts(t *testing.T) {
	svc := NewContentService(newContentRepoStub(), &auditStub{}, nil, zap.NewNop())

	_, err := svc.GetPublished(context.Background(), "rates")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	page, err := svc.Get(context.Background(), "rates")
	require.NoError(t, err)
	assert.Equal(t, "Rates", page.Title)
}

func TestContentServiceSaveRecordsAudit(t *testing.T) {
	repo := newContentRepoStub()
	audit := &auditStub{}
	svc := NewContentService(repo, audit, nil, zap.NewNop())

	page, err := svc.Save(context.Background(), "services", dto.ContentPageRequest{
		Title:     "Services",
		Body:      "Narration, editing, proofing.",
		Published: true,
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", page.UpdatedBy)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionContentWrite, audit.entries[0].Action)
}
