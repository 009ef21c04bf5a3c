package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/internal/service"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/response"
)

type documentService interface {
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*models.Document, error)
	Upload(ctx context.Context, actor string, req dto.DocumentRequest, file service.Upload) (*models.Document, error)
	Delete(ctx context.Context, id string) error
	Open(ctx context.Context, token string) (*models.Document, *os.File, error)
}

// DocumentHandler exposes attachments and signed downloads.
type DocumentHandler struct {
	documents documentService
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(documents documentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// List godoc
// @Summary List documents
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category"
// @Param related_id query string false "Related record ID"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	filter := models.DocumentFilter{
		ListFilter: listFilter(c),
		Category:   c.Query("category"),
		RelatedID:  c.Query("related_id"),
	}
	docs, pagination, hit, err := h.documents.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, docs, pagination, hit)
}

// Get godoc
// @Summary Get document
// @Tags Documents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Upload godoc
// @Summary Upload document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File"
// @Param title formData string true "Title"
// @Param category formData string true "Category"
// @Param related_id formData string false "Related record ID"
// @Success 201 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	var req dto.DocumentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrapf(appErrors.ErrValidation, err, "invalid upload form"))
		return
	}

	var upload service.Upload
	header, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		response.Error(c, appErrors.Wrapf(appErrors.ErrValidation, err, "read upload"))
		return
	default:
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrapf(appErrors.ErrInternal, err, "open upload"))
			return
		}
		defer file.Close()
		upload = service.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	}

	doc, err := h.documents.Upload(c.Request.Context(), actorID(c), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// Delete godoc
// @Summary Delete document
// @Tags Documents
// @Security BearerAuth
// @Param id path string true "Document ID"
// @Success 204
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Download godoc
// @Summary Download a document through a signed link
// @Tags Documents
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200
// @Failure 403 {object} response.Envelope
// @Router /files/{token} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	doc, file, err := h.documents.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrapf(appErrors.ErrInternal, err, "stat document"))
		return
	}
	c.Header("Content-Type", doc.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(doc)))
	c.Header("Cache-Control", "private, max-age=0")
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), file)
}

func downloadName(doc *models.Document) string {
	ext := filepath.Ext(doc.FilePath)
	name := strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '/', '\r', '\n':
			return '_'
		}
		return r
	}, strings.TrimSpace(doc.Title))
	if name == "" {
		return filepath.Base(doc.FilePath)
	}
	return name + ext
}
