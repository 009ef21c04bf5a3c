package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type expenseService interface {
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, *models.Pagination, bool, error)
	Groups(ctx context.Context, filter models.ExpenseFilter) ([]aggregate.ExpenseGroup, bool, error)
	Get(ctx context.Context, id string) (*models.Expense, error)
	Create(ctx context.Context, actor string, req dto.ExpenseRequest) (*models.Expense, error)
	CreateBatch(ctx context.Context, actor string, req dto.ExpenseBatchRequest) ([]models.Expense, error)
	Update(ctx context.Context, id string, req dto.ExpenseRequest) (*models.Expense, error)
	Delete(ctx context.Context, id string) error
	DeleteBatch(ctx context.Context, batchID string) (int64, error)
}

// ExpenseHandler exposes the expense ledger, including shopping batches.
type ExpenseHandler struct {
	expenses expenseService
}

// NewExpenseHandler constructs ExpenseHandler.
func NewExpenseHandler(expenses expenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

func expenseFilter(c *gin.Context) (models.ExpenseFilter, error) {
	from, to, err := dateRange(c)
	if err != nil {
		return models.ExpenseFilter{}, err
	}
	return models.ExpenseFilter{
		ListFilter: listFilter(c),
		Category:   models.ExpenseCategory(c.Query("category")),
		BatchID:    c.Query("batch_id"),
		DateFrom:   from,
		DateTo:     to,
	}, nil
}

// List godoc
// @Summary List expenses
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by title"
// @Param category query string false "Expense category"
// @Param batch_id query string false "Batch ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	filter, err := expenseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, hit, err := h.expenses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, items, pagination, hit)
}

// Groups godoc
// @Summary Expenses grouped by batch
// @Description Lines without a batch form one group each.
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /expenses/groups [get]
func (h *ExpenseHandler) Groups(c *gin.Context) {
	filter, err := expenseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	groups, hit, err := h.expenses.Groups(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, groups, nil, hit)
}

// Get godoc
// @Summary Get expense
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} response.Envelope
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	item, err := h.expenses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Record expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ExpenseRequest true "Expense payload"
// @Success 201 {object} response.Envelope
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.expenses.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// CreateBatch godoc
// @Summary Record a shopping batch
// @Description Every line shares one generated batch id.
// @Tags Expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ExpenseBatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Router /expenses/batches [post]
func (h *ExpenseHandler) CreateBatch(c *gin.Context) {
	var req dto.ExpenseBatchRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := h.expenses.CreateBatch(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, items)
}

// Update godoc
// @Summary Update expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param payload body dto.ExpenseRequest true "Expense payload"
// @Success 200 {object} response.Envelope
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.expenses.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete expense
// @Tags Expenses
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 204
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	if err := h.expenses.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteBatch godoc
// @Summary Delete every line of a batch
// @Tags Expenses
// @Produce json
// @Security BearerAuth
// @Param batchId path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /expenses/batches/{batchId} [delete]
func (h *ExpenseHandler) DeleteBatch(c *gin.Context) {
	deleted, err := h.expenses.DeleteBatch(c.Request.Context(), c.Param("batchId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}
