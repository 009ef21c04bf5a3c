package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type examService interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, actor string, req dto.ExamRequest) (*models.Exam, error)
	Update(ctx context.Context, id string, req dto.ExamRequest) (*models.Exam, error)
	Delete(ctx context.Context, id string) error
	Results(ctx context.Context, examID string) ([]models.ExamResult, bool, error)
	SaveResults(ctx context.Context, actor, examID string, req dto.BulkExamResultRequest) ([]models.ExamResult, error)
	DeleteResult(ctx context.Context, id string) error
}

// ExamHandler exposes exams and their result sheets.
type ExamHandler struct {
	exams examService
}

// NewExamHandler constructs ExamHandler.
func NewExamHandler(exams examService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// List godoc
// @Summary List exams
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department"
// @Param class query string false "Class"
// @Param type query string false "Exam type"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	filter := models.ExamFilter{
		ListFilter: listFilter(c),
		Department: models.Department(c.Query("department")),
		ClassName:  c.Query("class"),
		ExamType:   models.ExamType(c.Query("type")),
	}
	exams, pagination, hit, err := h.exams.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, exams, pagination, hit)
}

// Get godoc
// @Summary Get exam
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Create godoc
// @Summary Create exam
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req dto.ExamRequest
	if !bindJSON(c, &req) {
		return
	}
	exam, err := h.exams.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Update godoc
// @Summary Update exam
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param payload body dto.ExamRequest true "Exam payload"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [put]
func (h *ExamHandler) Update(c *gin.Context) {
	var req dto.ExamRequest
	if !bindJSON(c, &req) {
		return
	}
	exam, err := h.exams.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Delete godoc
// @Summary Delete exam
// @Tags Exams
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 204
// @Router /exams/{id} [delete]
func (h *ExamHandler) Delete(c *gin.Context) {
	if err := h.exams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Results godoc
// @Summary List results of an exam
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/results [get]
func (h *ExamHandler) Results(c *gin.Context) {
	results, hit, err := h.exams.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, results, nil, hit)
}

// SaveResults godoc
// @Summary Enter results of an exam
// @Description Upserts on (exam_id, student_id) and derives each grade from the exam total.
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param payload body dto.BulkExamResultRequest true "Results"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/results [post]
func (h *ExamHandler) SaveResults(c *gin.Context) {
	var req dto.BulkExamResultRequest
	if !bindJSON(c, &req) {
		return
	}
	results, err := h.exams.SaveResults(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// DeleteResult godoc
// @Summary Delete one result
// @Tags Exams
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param resultId path string true "Result ID"
// @Success 204
// @Router /exams/{id}/results/{resultId} [delete]
func (h *ExamHandler) DeleteResult(c *gin.Context) {
	if err := h.exams.DeleteResult(c.Request.Context(), c.Param("resultId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
