package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/service"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

type batchService interface {
	List(ctx context.Context, opts service.BatchListOptions) ([]models.BatchDetail, error)
	Get(ctx context.Context, id string) (*models.BatchDetail, error)
	Create(ctx context.Context, req dto.BatchRequest, actorID string) (*models.BatchDetail, error)
	Update(ctx context.Context, id string, req dto.BatchRequest, actorID string) (*models.BatchDetail, error)
	Delete(ctx context.Context, id, actorID string) error
	Students(ctx context.Context, id string) ([]models.Student, error)
	ActiveStudentCount(ctx context.Context) (int, error)
}

// BatchHandler exposes batch endpoints.
type BatchHandler struct {
	batches batchService
}

// NewBatchHandler constructs BatchHandler.
func NewBatchHandler(batches batchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// List godoc
// @Summary List batches
// @Description Faculty accounts only see batches they are acting faculty for today
// @Tags Batches
// @Produce json
// @Security BearerAuth
// @Param facultyId query string false "Acting faculty filter (admin only)"
// @Param status query string false "upcoming, active or completed"
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	var query dto.BatchListQuery
	if !bindQuery(c, &query) {
		return
	}
	opts := service.BatchListOptions{FacultyID: query.FacultyID, Status: models.BatchStatus(query.Status)}
	switch opts.Status {
	case "", models.BatchStatusUpcoming, models.BatchStatusActive, models.BatchStatusCompleted:
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be upcoming, active or completed"))
		return
	}
	if claims := claimsFromContext(c); claims.IsFaculty() {
		opts.FacultyID = claims.FacultyID
	}

	batches, err := h.batches.List(c.Request.Context(), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, nil)
}

// Get godoc
// @Summary Get batch detail
// @Tags Batches
// @Produce json
// @Security BearerAuth
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	batch, err := h.batches.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Create godoc
// @Summary Create batch
// @Description Checks the faculty's availability and existing commitments first
// @Tags Batches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	var req dto.BatchRequest
	if !bindJSON(c, &req) {
		return
	}
	batch, err := h.batches.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}

// Update godoc
// @Summary Update batch
// @Tags Batches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Batch ID"
// @Param payload body dto.BatchRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.ErrorBody
// @Router /batches/{id} [put]
func (h *BatchHandler) Update(c *gin.Context) {
	var req dto.BatchRequest
	if !bindJSON(c, &req) {
		return
	}
	batch, err := h.batches.Update(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Delete godoc
// @Summary Delete batch
// @Tags Batches
// @Security BearerAuth
// @Param id path string true "Batch ID"
// @Success 204
// @Router /batches/{id} [delete]
func (h *BatchHandler) Delete(c *gin.Context) {
	if err := h.batches.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Students godoc
// @Summary List students of a batch
// @Tags Batches
// @Produce json
// @Security BearerAuth
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/students [get]
func (h *BatchHandler) Students(c *gin.Context) {
	students, err := h.batches.Students(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// ActiveStudents godoc
// @Summary Count students in running batches
// @Tags Batches
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /batches/active-students [get]
func (h *BatchHandler) ActiveStudents(c *gin.Context) {
	count, err := h.batches.ActiveStudentCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}
