package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type transactionService interface {
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*models.Transaction, error)
	Create(ctx context.Context, actor string, req dto.TransactionRequest) (*models.Transaction, error)
	Update(ctx context.Context, id string, req dto.TransactionRequest) (*models.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// TransactionHandler exposes the income/expense ledger.
type TransactionHandler struct {
	transactions transactionService
}

// NewTransactionHandler constructs TransactionHandler.
func NewTransactionHandler(transactions transactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// List godoc
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param type query string false "income or expense"
// @Param category query string false "Category"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter := models.TransactionFilter{
		ListFilter: listFilter(c),
		Type:       models.TransactionType(c.Query("type")),
		Category:   c.Query("category"),
		DateFrom:   from,
		DateTo:     to,
	}
	items, pagination, hit, err := h.transactions.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, items, pagination, hit)
}

// Get godoc
// @Summary Get transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} response.Envelope
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	item, err := h.transactions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Record transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.TransactionRequest true "Transaction payload"
// @Success 201 {object} response.Envelope
// @Router /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req dto.TransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.transactions.Create(c.Request.Context(), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param payload body dto.TransactionRequest true "Transaction payload"
// @Success 200 {object} response.Envelope
// @Router /transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	var req dto.TransactionRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.transactions.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete transaction
// @Tags Transactions
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 204
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	if err := h.transactions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
