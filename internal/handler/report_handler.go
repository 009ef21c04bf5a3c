package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/service"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/export"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type reportService interface {
	Finance(ctx context.Context, q dto.ReportQuery) (*dto.FinanceReport, bool, error)
	Expenses(ctx context.Context, q dto.ReportQuery) (*dto.ExpenseReport, bool, error)
	Attendance(ctx context.Context, q dto.AttendanceReportQuery) (*dto.AttendanceReport, error)
	ExamSheet(ctx context.Context, examID string) (*dto.ExamResultSheet, error)
}

type reportExporter interface {
	Report(name, format string, table export.Dataset, report interface{}) (*service.ExportFile, error)
}

// ReportHandler serves windowed reports as JSON or, with ?format=, as a download.
type ReportHandler struct {
	reports reportService
	exports reportExporter
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService, exports reportExporter) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// respond writes report as an envelope, or as a file when format is set.
func (h *ReportHandler) respond(c *gin.Context, name, format string, report interface{}, table func() export.Dataset, hit bool) {
	if strings.TrimSpace(format) == "" {
		respondCached(c, report, nil, hit)
		return
	}
	file, err := h.exports.Report(name, format, table(), report)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Finance godoc
// @Summary Income and expense report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param window query string false "daily, weekly, monthly (default) or yearly"
// @Param format query string false "csv, json or pdf for a download"
// @Success 200 {object} response.Envelope
// @Router /reports/finance [get]
func (h *ReportHandler) Finance(c *gin.Context) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrapf(appErrors.ErrValidation, err, "invalid report query"))
		return
	}
	report, hit, err := h.reports.Finance(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, "finance-report", q.Format, report, func() export.Dataset { return service.FinanceTable(*report) }, hit)
}

// Expenses godoc
// @Summary Expense report grouped by batch
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param window query string false "daily, weekly, monthly (default) or yearly"
// @Param format query string false "csv, json or pdf for a download"
// @Success 200 {object} response.Envelope
// @Router /reports/expenses [get]
func (h *ReportHandler) Expenses(c *gin.Context) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrapf(appErrors.ErrValidation, err, "invalid report query"))
		return
	}
	report, hit, err := h.reports.Expenses(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, "expense-report", q.Format, report, func() export.Dataset { return service.ExpenseReportTable(*report) }, hit)
}

// Attendance godoc
// @Summary Attendance of one student or staff member over a date range
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param user_id query string true "Student or staff ID"
// @Param user_type query string true "student or staff"
// @Param from query string true "From date (YYYY-MM-DD)"
// @Param to query string true "To date (YYYY-MM-DD)"
// @Param format query string false "csv, json or pdf for a download"
// @Success 200 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	var q dto.AttendanceReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrapf(appErrors.ErrValidation, err, "invalid report query"))
		return
	}
	report, err := h.reports.Attendance(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, "attendance-report", q.Format, report, func() export.Dataset { return service.AttendanceReportTable(*report) }, false)
}

// ExamSheet godoc
// @Summary Result sheet of an exam
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param format query string false "csv, json or pdf for a download"
// @Success 200 {object} response.Envelope
// @Router /reports/exams/{id} [get]
func (h *ReportHandler) ExamSheet(c *gin.Context) {
	sheet, err := h.reports.ExamSheet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	format := c.Query("format")
	if format == "" {
		response.JSON(c, http.StatusOK, sheet, nil)
		return
	}
	h.respond(c, "exam-results", format, sheet, func() export.Dataset { return service.ResultSheetTable(*sheet) }, false)
}
