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

type blockoutService interface {
	List(ctx context.Context) ([]models.Blockout, error)
	Create(ctx context.Context, req dto.BlockoutRequest, actorID string) (*models.Blockout, error)
	Update(ctx context.Context, id string, req dto.BlockoutRequest, actorID string) (*models.Blockout, error)
	Delete(ctx context.Context, id string, actorID string) error
}

// BlockoutHandler manages manual calendar block-outs.
type BlockoutHandler struct {
	service blockoutService
}

// NewBlockoutHandler builds a new handler.
func NewBlockoutHandler(service blockoutService) *BlockoutHandler {
	return &BlockoutHandler{service: service}
}

// List godoc
// @Summary List calendar block-outs
// @Tags Blockouts
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/blockouts [get]
func (h *BlockoutHandler) List(c *gin.Context) {
	blockouts, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blockouts, nil)
}

// Create godoc
// @Summary Create a calendar block-out
// @Tags Blockouts
// @Accept json
// @Produce json
// @Param payload body dto.BlockoutRequest true "Block-out payload"
// @Success 201 {object} response.Envelope
// @Router /admin/blockouts [post]
func (h *BlockoutHandler) Create(c *gin.Context) {
	var req dto.BlockoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid blockout payload"))
		return
	}
	blockout, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, blockout)
}

// Update godoc
// @Summary Update a calendar block-out
// @Tags Blockouts
// @Accept json
// @Produce json
// @Param id path string true "Block-out ID"
// @Param payload body dto.BlockoutRequest true "Block-out payload"
// @Success 200 {object} response.Envelope
// @Router /admin/blockouts/{id} [put]
func (h *BlockoutHandler) Update(c *gin.Context) {
	var req dto.BlockoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid blockout payload"))
		return
	}
	blockout, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blockout, nil)
}

// Delete godoc
// @Summary Delete a calendar block-out
// @Tags Blockouts
// @Param id path string true "Block-out ID"
// @Success 204
// @Router /admin/blockouts/{id} [delete]
func (h *BlockoutHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
