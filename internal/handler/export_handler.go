package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/service"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type entityExporter interface {
	Entity(ctx context.Context, entity, format string) (*service.ExportFile, error)
}

// ExportHandler streams full entity lists as downloads.
type ExportHandler struct {
	exports entityExporter
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports entityExporter) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Entity godoc
// @Summary Export an entity list
// @Tags Exports
// @Produce text/csv
// @Produce json
// @Security BearerAuth
// @Param entity path string true "students, staff, expenses, transactions, fee-payments or salary-payments"
// @Param format query string false "csv (default) or json"
// @Success 200
// @Failure 404 {object} response.Envelope
// @Router /exports/{entity} [get]
func (h *ExportHandler) Entity(c *gin.Context) {
	file, err := h.exports.Entity(c.Request.Context(), c.Param("entity"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
