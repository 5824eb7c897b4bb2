package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type activityService interface {
	List(ctx context.Context, limit int) ([]models.Activity, error)
}

// ActivityHandler serves the recent activity feed.
type ActivityHandler struct {
	activity activityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activity activityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List godoc
// @Summary Recent activity
// @Tags Activity
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of entries (max 100)"
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultActivityLimit)))
	if err != nil || limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	activities, err := h.activity.List(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, nil)
}
