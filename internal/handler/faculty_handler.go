package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

type facultyService interface {
	List(ctx context.Context, skillID string) ([]models.Faculty, error)
	Get(ctx context.Context, id string) (*models.Faculty, error)
	Create(ctx context.Context, req dto.CreateFacultyRequest, actorID string) (*models.Faculty, error)
	Update(ctx context.Context, id string, req dto.UpdateFacultyRequest, actorID string) (*models.Faculty, error)
	Delete(ctx context.Context, id, actorID string) error
	Skills(ctx context.Context) ([]models.Skill, error)
	Availability(ctx context.Context, facultyID string) ([]models.AvailabilityWindow, error)
	SetAvailability(ctx context.Context, facultyID string, req dto.SetAvailabilityRequest, actorID string) ([]models.AvailabilityWindow, error)
}

// FacultyHandler exposes faculty, skill and availability endpoints.
type FacultyHandler struct {
	faculty facultyService
}

// NewFacultyHandler constructs FacultyHandler.
func NewFacultyHandler(faculty facultyService) *FacultyHandler {
	return &FacultyHandler{faculty: faculty}
}

// List godoc
// @Summary List faculty
// @Tags Faculty
// @Produce json
// @Security BearerAuth
// @Param skill query string false "Only faculty with this skill"
// @Success 200 {object} response.Envelope
// @Router /faculty [get]
func (h *FacultyHandler) List(c *gin.Context) {
	faculty, err := h.faculty.List(c.Request.Context(), c.Query("skill"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Get godoc
// @Summary Get faculty detail
// @Tags Faculty
// @Produce json
// @Security BearerAuth
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.ErrorBody
// @Router /faculty/{id} [get]
func (h *FacultyHandler) Get(c *gin.Context) {
	faculty, err := h.faculty.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Create godoc
// @Summary Create faculty
// @Tags Faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateFacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.ErrorBody
// @Router /faculty [post]
func (h *FacultyHandler) Create(c *gin.Context) {
	var req dto.CreateFacultyRequest
	if !bindJSON(c, &req) {
		return
	}
	faculty, err := h.faculty.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faculty)
}

// Update godoc
// @Summary Update faculty
// @Tags Faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Faculty ID"
// @Param payload body dto.UpdateFacultyRequest true "Faculty payload"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id} [put]
func (h *FacultyHandler) Update(c *gin.Context) {
	var req dto.UpdateFacultyRequest
	if !bindJSON(c, &req) {
		return
	}
	faculty, err := h.faculty.Update(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Delete godoc
// @Summary Delete faculty
// @Tags Faculty
// @Security BearerAuth
// @Param id path string true "Faculty ID"
// @Success 204
// @Router /faculty/{id} [delete]
func (h *FacultyHandler) Delete(c *gin.Context) {
	if err := h.faculty.Delete(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Availability godoc
// @Summary Get weekly availability
// @Tags Faculty
// @Produce json
// @Security BearerAuth
// @Param id path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /faculty/{id}/availability [get]
func (h *FacultyHandler) Availability(c *gin.Context) {
	windows, err := h.faculty.Availability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// SetAvailability godoc
// @Summary Replace weekly availability
// @Description Refused with 409 when a batch in the lookahead window would fall outside the new windows
// @Tags Faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Faculty ID"
// @Param payload body dto.SetAvailabilityRequest true "Availability windows"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.ErrorBody
// @Router /faculty/{id}/availability [put]
func (h *FacultyHandler) SetAvailability(c *gin.Context) {
	var req dto.SetAvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	windows, err := h.faculty.SetAvailability(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// Skills godoc
// @Summary List skills
// @Tags Faculty
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /skills [get]
func (h *FacultyHandler) Skills(c *gin.Context) {
	skills, err := h.faculty.Skills(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skills, nil)
}
