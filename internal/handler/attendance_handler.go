package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type attendanceService interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, bool, error)
	Summary(ctx context.Context, filter models.AttendanceFilter) (aggregate.AttendanceSummary, bool, error)
	Mark(ctx context.Context, actor string, req dto.AttendanceRequest) (*models.Attendance, error)
	MarkBulk(ctx context.Context, actor string, req dto.BulkAttendanceRequest) ([]models.Attendance, error)
	Delete(ctx context.Context, id string) error
	Today(ctx context.Context, now time.Time, loc *time.Location) (aggregate.AttendanceSummary, error)
}

// AttendanceHandler exposes daily attendance endpoints.
type AttendanceHandler struct {
	attendance attendanceService
	loc        *time.Location
	now        func() time.Time
}

// NewAttendanceHandler constructs AttendanceHandler. loc decides the local day for /attendance/today.
func NewAttendanceHandler(attendance attendanceService, loc *time.Location) *AttendanceHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceHandler{attendance: attendance, loc: loc, now: time.Now}
}

func (h *AttendanceHandler) filter(c *gin.Context) (models.AttendanceFilter, error) {
	from, to, err := dateRange(c)
	if err != nil {
		return models.AttendanceFilter{}, err
	}
	return models.AttendanceFilter{
		ListFilter: listFilter(c),
		UserID:     c.Query("user_id"),
		UserType:   models.SubjectType(c.Query("user_type")),
		Status:     models.AttendanceStatus(c.Query("status")),
		DateFrom:   from,
		DateTo:     to,
	}, nil
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Student or staff ID"
// @Param user_type query string false "student or staff"
// @Param status query string false "present, absent, late or leave"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	filter, err := h.filter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, pagination, hit, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, records, pagination, hit)
}

// Summary godoc
// @Summary Attendance counts and percentage
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param user_type query string false "student or staff"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	filter, err := h.filter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, hit, err := h.attendance.Summary(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, summary, nil, hit)
}

// Today godoc
// @Summary Today's student attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /attendance/today [get]
func (h *AttendanceHandler) Today(c *gin.Context) {
	summary, err := h.attendance.Today(c.Request.Context(), h.now(), h.loc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Mark godoc
// @Summary Mark one attendance record
// @Description Upserts on (user_id, user_type, date).
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req dto.AttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.attendance.Mark(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// MarkBulk godoc
// @Summary Mark a roster
// @Description All records are written in one transaction.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkAttendanceRequest true "Roster"
// @Success 200 {object} response.Envelope
// @Router /attendance/bulk [post]
func (h *AttendanceHandler) MarkBulk(c *gin.Context) {
	var req dto.BulkAttendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	records, err := h.attendance.MarkBulk(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Delete godoc
// @Summary Delete attendance record
// @Tags Attendance
// @Security BearerAuth
// @Param id path string true "Attendance ID"
// @Success 204
// @Router /attendance/{id} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.attendance.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
