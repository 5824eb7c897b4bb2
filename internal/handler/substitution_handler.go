package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

type substitutionService interface {
	ListCurrent(ctx context.Context) ([]models.SubstitutionDetail, error)
	Create(ctx context.Context, req dto.CreateSubstitutionRequest, actorID string) (*models.SubstitutionDetail, error)
	Update(ctx context.Context, id string, req dto.UpdateSubstitutionRequest, actorID string) (*models.SubstitutionDetail, error)
	Cancel(ctx context.Context, id, actorID string) error
	Assign(ctx context.Context, req dto.AssignFacultyRequest, actorID string) (*models.BatchDetail, error)
	Merge(ctx context.Context, req dto.MergeBatchesRequest, actorID string) (*dto.MergeBatchesResponse, error)
}

// SubstitutionHandler exposes temporary substitution, reassignment and merge endpoints.
type SubstitutionHandler struct {
	substitutions substitutionService
}

// NewSubstitutionHandler constructs SubstitutionHandler.
func NewSubstitutionHandler(substitutions substitutionService) *SubstitutionHandler {
	return &SubstitutionHandler{substitutions: substitutions}
}

// List godoc
// @Summary List running and upcoming substitutions
// @Tags Substitution
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /substitution/temporary [get]
func (h *SubstitutionHandler) List(c *gin.Context) {
	subs, err := h.substitutions.ListCurrent(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// Create godoc
// @Summary Create temporary substitution
// @Tags Substitution
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateSubstitutionRequest true "Substitution payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /substitution/temporary [post]
func (h *SubstitutionHandler) Create(c *gin.Context) {
	var req dto.CreateSubstitutionRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.substitutions.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// Update godoc
// @Summary Update temporary substitution
// @Tags Substitution
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Substitution ID"
// @Param payload body dto.UpdateSubstitutionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /substitution/temporary/{id} [put]
func (h *SubstitutionHandler) Update(c *gin.Context) {
	var req dto.UpdateSubstitutionRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.substitutions.Update(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// Cancel godoc
// @Summary Cancel temporary substitution
// @Tags Substitution
// @Security BearerAuth
// @Param id path string true "Substitution ID"
// @Success 204
// @Router /substitution/temporary/{id} [delete]
func (h *SubstitutionHandler) Cancel(c *gin.Context) {
	if err := h.substitutions.Cancel(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Assign godoc
// @Summary Permanently reassign a batch
// @Tags Substitution
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AssignFacultyRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.ErrorBody
// @Router /substitution/assign [post]
func (h *SubstitutionHandler) Assign(c *gin.Context) {
	var req dto.AssignFacultyRequest
	if !bindJSON(c, &req) {
		return
	}
	batch, err := h.substitutions.Assign(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Merge godoc
// @Summary Merge two batches
// @Description Moves every student of the source into the target and deletes the source
// @Tags Substitution
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MergeBatchesRequest true "Merge"
// @Success 200 {object} response.Envelope
// @Router /substitution/merge [post]
func (h *SubstitutionHandler) Merge(c *gin.Context) {
	var req dto.MergeBatchesRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.substitutions.Merge(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
