package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type activityService interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, *models.Pagination, error)
}

// ActivityHandler exposes the write trail.
type ActivityHandler struct {
	activity activityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activity activityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List godoc
// @Summary List recorded writes
// @Tags Activity
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "User ID"
// @Param resource query string false "Resource, e.g. expenses"
// @Success 200 {object} response.Envelope
// @Router /activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	filter := models.ActivityFilter{
		ListFilter: listFilter(c),
		UserID:     c.Query("user_id"),
		Resource:   c.Query("resource"),
	}
	entries, pagination, err := h.activity.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}
