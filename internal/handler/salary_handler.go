package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type salaryService interface {
	List(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryPayment, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*models.SalaryPayment, error)
	Record(ctx context.Context, actor string, req dto.SalaryPaymentRequest) (*models.SalaryPayment, error)
	Update(ctx context.Context, id string, req dto.SalaryPaymentRequest) (*models.SalaryPayment, error)
	Delete(ctx context.Context, id string) error
	CountUnpaid(ctx context.Context, month, year int) (int, error)
}

// SalaryHandler exposes monthly salary payments.
type SalaryHandler struct {
	salaries salaryService
}

// NewSalaryHandler constructs SalaryHandler.
func NewSalaryHandler(salaries salaryService) *SalaryHandler {
	return &SalaryHandler{salaries: salaries}
}

func monthYear(c *gin.Context) (*int, *int, error) {
	month, err := intQuery(c, "month")
	if err != nil {
		return nil, nil, err
	}
	year, err := intQuery(c, "year")
	if err != nil {
		return nil, nil, err
	}
	return month, year, nil
}

// List godoc
// @Summary List salary payments
// @Tags Salaries
// @Produce json
// @Security BearerAuth
// @Param staff_id query string false "Staff ID"
// @Param month query int false "Month"
// @Param year query int false "Year"
// @Param status query string false "paid or unpaid"
// @Success 200 {object} response.Envelope
// @Router /salary-payments [get]
func (h *SalaryHandler) List(c *gin.Context) {
	month, year, err := monthYear(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.SalaryFilter{
		ListFilter: listFilter(c),
		StaffID:    c.Query("staff_id"),
		Month:      month,
		Year:       year,
		Status:     models.SalaryStatus(c.Query("status")),
	}
	items, pagination, hit, err := h.salaries.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, items, pagination, hit)
}

// Unpaid godoc
// @Summary Count unpaid salaries for a month
// @Tags Salaries
// @Produce json
// @Security BearerAuth
// @Param month query int true "Month"
// @Param year query int true "Year"
// @Success 200 {object} response.Envelope
// @Router /salary-payments/unpaid [get]
func (h *SalaryHandler) Unpaid(c *gin.Context) {
	month, year, err := monthYear(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if month == nil {
		response.Error(c, appErrors.Invalid("month", "required", ""))
		return
	}
	if year == nil {
		response.Error(c, appErrors.Invalid("year", "required", ""))
		return
	}
	count, err := h.salaries.CountUnpaid(c.Request.Context(), *month, *year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"month": *month, "year": *year, "unpaid": count}, nil)
}

// Get godoc
// @Summary Get salary payment
// @Tags Salaries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Salary payment ID"
// @Success 200 {object} response.Envelope
// @Router /salary-payments/{id} [get]
func (h *SalaryHandler) Get(c *gin.Context) {
	item, err := h.salaries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Record godoc
// @Summary Record a month's salary
// @Tags Salaries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SalaryPaymentRequest true "Salary payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /salary-payments [post]
func (h *SalaryHandler) Record(c *gin.Context) {
	var req dto.SalaryPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.salaries.Record(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update salary payment
// @Tags Salaries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Salary payment ID"
// @Param payload body dto.SalaryPaymentRequest true "Salary payload"
// @Success 200 {object} response.Envelope
// @Router /salary-payments/{id} [put]
func (h *SalaryHandler) Update(c *gin.Context) {
	var req dto.SalaryPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.salaries.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete salary payment
// @Tags Salaries
// @Security BearerAuth
// @Param id path string true "Salary payment ID"
// @Success 204
// @Router /salary-payments/{id} [delete]
func (h *SalaryHandler) Delete(c *gin.Context) {
	if err := h.salaries.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
