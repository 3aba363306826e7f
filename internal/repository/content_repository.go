package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/harlowe-audio/studio-api/internal/models"
)

// ContentRepository persists marketing-site pages.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs a content repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = "id, slug, title, body, published, updated_by, created_at, updated_at"

// List returns every page, optionally only published ones.
func (r *ContentRepository) List(ctx context.Context, publishedOnly bool) ([]models.ContentPage, error) {
	query := fmt.Sprintf("SELECT %s FROM content_pages", contentColumns)
	if publishedOnly {
		query += " WHERE published = TRUE"
	}
	query += " ORDER BY slug ASC"
	var pages []models.ContentPage
	if err := r.db.SelectContext(ctx, &pages, query); err != nil {
		return nil, fmt.Errorf("list content pages: %w", err)
	}
	return pages, nil
}

// GetBySlug fetches one page.
func (r *ContentRepository) GetBySlug(ctx context.Context, slug string) (*models.ContentPage, error) {
	query := fmt.Sprintf("SELECT %s FROM content_pages WHERE slug = $1", contentColumns)
	var page models.ContentPage
	if err := r.db.GetContext(ctx, &page, query, slug); err != nil {
		return nil, err
	}
	return &page, nil
}

// Upsert writes a page by slug, creating it on first save.
func (r *ContentRepository) Upsert(ctx context.Context, page *models.ContentPage) error {
	existing, err := r.GetBySlug(ctx, page.Slug)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check content page: %w", err)
	}

	now := time.Now().UTC()
	page.UpdatedAt = now
	if existing == nil {
		page.ID = uuid.NewString()
		page.CreatedAt = now
		query := `INSERT INTO content_pages (id, slug, title, body, published, updated_by, created_at, updated_at)
VALUES (:id, :slug, :title, :body, :published, :updated_by, :created_at, :updated_at)`
		if _, err := r.db.NamedExecContext(ctx, query, page); err != nil {
			return fmt.Errorf("create content page: %w", err)
		}
		return nil
	}

	page.ID = existing.ID
	page.CreatedAt = existing.CreatedAt
	query := `UPDATE content_pages SET title = :title, body = :body, published = :published, updated_by = :updated_by, updated_at = :updated_at
WHERE slug = :slug`
	if _, err := r.db.NamedExecContext(ctx, query, page); err != nil {
		return fmt.Errorf("update content page: %w", err)
	}
	return nil
}

// Delete removes a page.
func (r *ContentRepository) Delete(ctx context.Context, slug string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM content_pages WHERE slug = $1", slug); err != nil {
		return fmt.Errorf("delete content page: %w", err)
	}
	return nil
}
