package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harlowe-audio/studio-api/internal/dto"
	"github.com/harlowe-audio/studio-api/internal/models"
	appErrors "github.com/harlowe-audio/studio-api/pkg/errors"
	"github.com/harlowe-audio/studio-api/pkg/response"
)

type contentService interface {
	ListPublished(ctx context.Context) ([]models.ContentPage, error)
	ListAll(ctx context.Context) ([]models.ContentPage, error)
	GetPublished(ctx context.Context, slug string) (*models.ContentPage, error)
	Get(ctx context.Context, slug string) (*models.ContentPage, error)
	Save(ctx context.Context, slug string, req dto.ContentPageRequest, actorID string) (*models.ContentPage, error)
	Delete(ctx context.Context, slug string, actorID string) error
}

// ContentHandler serves marketing-site pages.
type ContentHandler struct {
	service contentService
}

// NewContentHandler builds a new handler.
func NewContentHandler(service contentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// ListPublished godoc
// @Summary List published pages
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pages [get]
func (h *ContentHandler) ListPublished(c *gin.Context) {
	pages, err := h.service.ListPublished(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pages, nil)
}

// GetPublished godoc
// @Summary Get a published page by slug
// @Tags Content
// @Produce json
// @Param slug path string true "Page slug"
// @Success 200 {object} response.Envelope
// @Router /pages/{slug} [get]
func (h *ContentHandler) GetPublished(c *gin.Context) {
	page, err := h.service.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// ListAll godoc
// @Summary List all pages including drafts
// @Tags Content
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/pages [get]
func (h *ContentHandler) ListAll(c *gin.Context) {
	pages, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pages, nil)
}

// Get godoc
// @Summary Get a page regardless of publication state
// @Tags Content
// @Produce json
// @Param slug path string true "Page slug"
// @Success 200 {object} response.Envelope
// @Router /admin/pages/{slug} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	page, err := h.service.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Save godoc
// @Summary Create or update a page
// @Tags Content
// @Accept json
// @Produce json
// @Param slug path string true "Page slug"
// @Param payload body dto.ContentPageRequest true "Page payload"
// @Success 200 {object} response.Envelope
// @Router /admin/pages/{slug} [put]
func (h *ContentHandler) Save(c *gin.Context) {
	var req dto.ContentPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid page payload"))
		return
	}
	page, err := h.service.Save(c.Request.Context(), c.Param("slug"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Delete godoc
// @Summary Delete a page
// @Tags Content
// @Param slug path string true "Page slug"
// @Success 204
// @Router /admin/pages/{slug} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("slug"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
