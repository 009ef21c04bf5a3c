package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type feeService interface {
	ListStructures(ctx context.Context, filter models.FeeStructureFilter) ([]models.FeeStructure, bool, error)
	GetStructure(ctx context.Context, id string) (*models.FeeStructure, error)
	CreateStructure(ctx context.Context, actor string, req dto.FeeStructureRequest) (*models.FeeStructure, error)
	UpdateStructure(ctx context.Context, id string, req dto.FeeStructureRequest) (*models.FeeStructure, error)
	DeleteStructure(ctx context.Context, id string) error
	ListPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, *models.Pagination, bool, error)
	GetPayment(ctx context.Context, id string) (*models.FeePayment, error)
	CollectPayment(ctx context.Context, actor string, req dto.FeePaymentRequest) (*models.FeePayment, error)
	DeletePayment(ctx context.Context, id string) error
}

// FeeHandler exposes fee structures and collected payments.
type FeeHandler struct {
	fees feeService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees feeService) *FeeHandler {
	return &FeeHandler{fees: fees}
}

// ListStructures godoc
// @Summary List fee structures
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param department query string false "Department"
// @Param active query bool false "Filter by active state"
// @Success 200 {object} response.Envelope
// @Router /fee-structures [get]
func (h *FeeHandler) ListStructures(c *gin.Context) {
	filter := models.FeeStructureFilter{
		ListFilter: listFilter(c),
		Department: models.Department(c.Query("department")),
		Active:     boolQuery(c, "active"),
	}
	items, hit, err := h.fees.ListStructures(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, items, nil, hit)
}

// GetStructure godoc
// @Summary Get fee structure
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fee structure ID"
// @Success 200 {object} response.Envelope
// @Router /fee-structures/{id} [get]
func (h *FeeHandler) GetStructure(c *gin.Context) {
	item, err := h.fees.GetStructure(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// CreateStructure godoc
// @Summary Create fee structure
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.FeeStructureRequest true "Fee structure payload"
// @Success 201 {object} response.Envelope
// @Router /fee-structures [post]
func (h *FeeHandler) CreateStructure(c *gin.Context) {
	var req dto.FeeStructureRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.fees.CreateStructure(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// UpdateStructure godoc
// @Summary Update fee structure
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fee structure ID"
// @Param payload body dto.FeeStructureRequest true "Fee structure payload"
// @Success 200 {object} response.Envelope
// @Router /fee-structures/{id} [put]
func (h *FeeHandler) UpdateStructure(c *gin.Context) {
	var req dto.FeeStructureRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.fees.UpdateStructure(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// DeleteStructure godoc
// @Summary Delete fee structure
// @Tags Fees
// @Security BearerAuth
// @Param id path string true "Fee structure ID"
// @Success 204
// @Router /fee-structures/{id} [delete]
func (h *FeeHandler) DeleteStructure(c *gin.Context) {
	if err := h.fees.DeleteStructure(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListPayments godoc
// @Summary List fee payments
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param student_id query string false "Student ID"
// @Param month query int false "Billing month"
// @Param year query int false "Billing year"
// @Param from query string false "Paid from (YYYY-MM-DD)"
// @Param to query string false "Paid to (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /fee-payments [get]
func (h *FeeHandler) ListPayments(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	month, err := intQuery(c, "month")
	if err != nil {
		response.Error(c, err)
		return
	}
	year, err := intQuery(c, "year")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.FeePaymentFilter{
		ListFilter: listFilter(c),
		StudentID:  c.Query("student_id"),
		Month:      month,
		Year:       year,
		DateFrom:   from,
		DateTo:     to,
	}
	items, pagination, hit, err := h.fees.ListPayments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, items, pagination, hit)
}

// GetPayment godoc
// @Summary Get fee payment
// @Tags Fees
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fee payment ID"
// @Success 200 {object} response.Envelope
// @Router /fee-payments/{id} [get]
func (h *FeeHandler) GetPayment(c *gin.Context) {
	item, err := h.fees.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// CollectPayment godoc
// @Summary Collect a fee
// @Description Issues an RCT-YYYYMM receipt number when none is given.
// @Tags Fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.FeePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /fee-payments [post]
func (h *FeeHandler) CollectPayment(c *gin.Context) {
	var req dto.FeePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.fees.CollectPayment(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// DeletePayment godoc
// @Summary Delete fee payment
// @Tags Fees
// @Security BearerAuth
// @Param id path string true "Fee payment ID"
// @Success 204
// @Router /fee-payments/{id} [delete]
func (h *FeeHandler) DeletePayment(c *gin.Context) {
	if err := h.fees.DeletePayment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
