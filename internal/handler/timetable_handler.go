package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type timetableService interface {
	List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, bool, error)
	Get(ctx context.Context, id string) (*models.TimetableEntry, error)
	Create(ctx context.Context, actor string, req dto.TimetableRequest) (*models.TimetableEntry, error)
	Update(ctx context.Context, id string, req dto.TimetableRequest) (*models.TimetableEntry, error)
	Delete(ctx context.Context, id string) error
}

// TimetableHandler exposes weekly class periods.
type TimetableHandler struct {
	timetable timetableService
}

// NewTimetableHandler constructs TimetableHandler.
func NewTimetableHandler(timetable timetableService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable}
}

// List godoc
// @Summary List timetable periods
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department"
// @Param class query string false "Class"
// @Param day query string false "Day of week"
// @Param teacher_id query string false "Teacher (staff) ID"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	filter := models.TimetableFilter{
		Department: models.Department(c.Query("department")),
		ClassName:  c.Query("class"),
		DayOfWeek:  models.Weekday(c.Query("day")),
		TeacherID:  c.Query("teacher_id"),
	}
	entries, hit, err := h.timetable.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, entries, nil, hit)
}

// Get godoc
// @Summary Get timetable period
// @Tags Timetable
// @Produce json
// @Security BearerAuth
// @Param id path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	entry, err := h.timetable.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Create godoc
// @Summary Add timetable period
// @Description Rejects a period overlapping another of the same class and day.
// @Tags Timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.TimetableRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Router /timetable [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req dto.TimetableRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.timetable.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Update godoc
// @Summary Update timetable period
// @Tags Timetable
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Period ID"
// @Param payload body dto.TimetableRequest true "Period payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req dto.TimetableRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.timetable.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Delete godoc
// @Summary Delete timetable period
// @Tags Timetable
// @Security BearerAuth
// @Param id path string true "Period ID"
// @Success 204
// @Router /timetable/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.timetable.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
