package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/internal/service"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type fakeDocumentSrv struct {
	req      dto.DocumentRequest
	upload   service.Upload
	content  []byte
	openPath string
	openErr  error
}

func (f *fakeDocumentSrv) List(context.Context, models.DocumentFilter) ([]models.Document, *models.Pagination, bool, error) {
	return nil, nil, false, nil
}
func (f *fakeDocumentSrv) Get(context.Context, string) (*models.Document, error) { return nil, nil }
func (f *fakeDocumentSrv) Delete(context.Context, string) error                 { return nil }

func (f *fakeDocumentSrv) Upload(_ context.Context, _ string, req dto.DocumentRequest, file service.Upload) (*models.Document, error) {
	f.req = req
	f.upload = file
	if file.Body == nil {
		return nil, appErrors.Invalid("file", "required", "")
	}
	content, err := io.ReadAll(file.Body)
	if err != nil {
		return nil, err
	}
	f.content = content
	return &models.Document{ID: "d-1", Title: req.Title, SizeBytes: int64(len(content))}, nil
}

func (f *fakeDocumentSrv) Open(context.Context, string) (*models.Document, *os.File, error) {
	if f.openErr != nil {
		return nil, nil, f.openErr
	}
	file, err := os.Open(f.openPath)
	if err != nil {
		return nil, nil, err
	}
	return &models.Document{ID: "d-1", Title: "Admission form", FilePath: "documents/2024/07/x.pdf", MimeType: "application/pdf"}, file, nil
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		header.Set("Content-Type", "application/pdf")
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestDocumentUploadPassesFileAndForm(t *testing.T) {
	srv := &fakeDocumentSrv{}
	h := NewDocumentHandler(srv)
	r := newTestRouter(&models.JWTClaims{UserID: "u-1", Role: models.RoleTeacher})
	r.POST("/documents", h.Upload)

	body, contentType := multipartBody(t, map[string]string{"title": "Admission form", "category": "admission"}, "form.pdf", []byte("%PDF-1.4 test"))
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Admission form", srv.req.Title)
	assert.Equal(t, "admission", srv.req.Category)
	assert.Equal(t, "form.pdf", srv.upload.Filename)
	assert.Equal(t, "application/pdf", srv.upload.ContentType)
	assert.Equal(t, int64(13), srv.upload.Size)
	assert.Equal(t, "%PDF-1.4 test", string(srv.content))
}

func TestDocumentUploadWithoutFile(t *testing.T) {
	srv := &fakeDocumentSrv{}
	h := NewDocumentHandler(srv)
	r := newTestRouter(nil)
	r.POST("/documents", h.Upload)

	body, contentType := multipartBody(t, map[string]string{"title": "Notes", "category": "misc"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error.Fields, "file")
	assert.Nil(t, srv.upload.Body)
}

func TestDocumentDownloadServesAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 body"), 0o600))
	h := NewDocumentHandler(&fakeDocumentSrv{openPath: path})
	r := newTestRouter(nil)
	r.GET("/files/:token", h.Download)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/tok", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4 body", rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Admission form.pdf"`, rec.Header().Get("Content-Disposition"))
}

func TestDocumentDownloadRejectsBadToken(t *testing.T) {
	h := NewDocumentHandler(&fakeDocumentSrv{openErr: appErrors.ErrForbidden})
	r := newTestRouter(nil)
	r.GET("/files/:token", h.Download)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/forged", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDownloadNameFallsBackToStoredName(t *testing.T) {
	assert.Equal(t, "a_b.pdf", downloadName(&models.Document{Title: `a/b`, FilePath: "documents/2024/07/x.pdf"}))
	assert.Equal(t, "x.pdf", downloadName(&models.Document{Title: "  ", FilePath: "documents/2024/07/x.pdf"}))
}
