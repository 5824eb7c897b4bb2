package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/scheduling"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

type freeSlotService interface {
	FreeSlots(ctx context.Context, query dto.FreeSlotsQuery) ([]scheduling.FacultyFreeSlots, error)
}

type suggestionService interface {
	Suggest(ctx context.Context, req dto.SuggestFacultyRequest) ([]scheduling.Suggestion, error)
}

// SchedulingHandler serves the free-slot and faculty suggestion queries.
type SchedulingHandler struct {
	freeSlots   freeSlotService
	suggestions suggestionService
}

// NewSchedulingHandler constructs SchedulingHandler.
func NewSchedulingHandler(freeSlots freeSlotService, suggestions suggestionService) *SchedulingHandler {
	return &SchedulingHandler{freeSlots: freeSlots, suggestions: suggestions}
}

// FreeSlots godoc
// @Summary Free time per faculty and date
// @Description Availability minus batch and substitution commitments for every date in the range
// @Tags Scheduling
// @Produce json
// @Security BearerAuth
// @Param startDate query string true "First date (YYYY-MM-DD)"
// @Param endDate query string true "Last date (YYYY-MM-DD)"
// @Param faculty query string false "Faculty ID"
// @Param skill query string false "Skill ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.ErrorBody
// @Router /free-slots [get]
func (h *SchedulingHandler) FreeSlots(c *gin.Context) {
	var query dto.FreeSlotsQuery
	if !bindQuery(c, &query) {
		return
	}
	slots, err := h.freeSlots.FreeSlots(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Suggest godoc
// @Summary Suggest faculty for a prospective batch
// @Tags Scheduling
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SuggestFacultyRequest true "Prospective batch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.ErrorBody
// @Router /suggestions/suggest-faculty [post]
func (h *SchedulingHandler) Suggest(c *gin.Context) {
	var req dto.SuggestFacultyRequest
	if !bindJSON(c, &req) {
		return
	}
	suggestions, err := h.suggestions.Suggest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}
