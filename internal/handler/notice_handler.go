package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type noticeService interface {
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, *models.Pagination, bool, error)
	Recent(ctx context.Context, limit int) ([]models.Notice, error)
	Get(ctx context.Context, id string) (*models.Notice, error)
	Create(ctx context.Context, actor string, req dto.NoticeRequest) (*models.Notice, error)
	Update(ctx context.Context, id string, req dto.NoticeRequest) (*models.Notice, error)
	Delete(ctx context.Context, id string) error
}

// NoticeHandler exposes the notice board.
type NoticeHandler struct {
	notices noticeService
}

// NewNoticeHandler constructs NoticeHandler.
func NewNoticeHandler(notices noticeService) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

// List godoc
// @Summary List notices
// @Tags Notices
// @Produce json
// @Security BearerAuth
// @Param audience query string false "all, students or staff"
// @Param published query bool false "Filter by published state"
// @Success 200 {object} response.Envelope
// @Router /notices [get]
func (h *NoticeHandler) List(c *gin.Context) {
	filter := models.NoticeFilter{
		ListFilter: listFilter(c),
		Audience:   models.NoticeAudience(c.Query("audience")),
		Published:  boolQuery(c, "published"),
	}
	notices, pagination, hit, err := h.notices.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, notices, pagination, hit)
}

// Recent godoc
// @Summary Latest published notices
// @Tags Notices
// @Produce json
// @Security BearerAuth
// @Param limit query int false "How many (default 5)"
// @Success 200 {object} response.Envelope
// @Router /notices/recent [get]
func (h *NoticeHandler) Recent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit <= 0 {
		limit = 5
	}
	notices, err := h.notices.Recent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notices, nil)
}

// Get godoc
// @Summary Get notice
// @Tags Notices
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notice ID"
// @Success 200 {object} response.Envelope
// @Router /notices/{id} [get]
func (h *NoticeHandler) Get(c *gin.Context) {
	notice, err := h.notices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notice, nil)
}

// Create godoc
// @Summary Publish notice
// @Tags Notices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.NoticeRequest true "Notice payload"
// @Success 201 {object} response.Envelope
// @Router /notices [post]
func (h *NoticeHandler) Create(c *gin.Context) {
	var req dto.NoticeRequest
	if !bindJSON(c, &req) {
		return
	}
	notice, err := h.notices.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, notice)
}

// Update godoc
// @Summary Update notice
// @Tags Notices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notice ID"
// @Param payload body dto.NoticeRequest true "Notice payload"
// @Success 200 {object} response.Envelope
// @Router /notices/{id} [put]
func (h *NoticeHandler) Update(c *gin.Context) {
	var req dto.NoticeRequest
	if !bindJSON(c, &req) {
		return
	}
	notice, err := h.notices.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notice, nil)
}

// Delete godoc
// @Summary Delete notice
// @Tags Notices
// @Security BearerAuth
// @Param id path string true "Notice ID"
// @Success 204
// @Router /notices/{id} [delete]
func (h *NoticeHandler) Delete(c *gin.Context) {
	if err := h.notices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
