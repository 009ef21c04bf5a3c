package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type fakeStudentSrv struct {
	lastFilter models.StudentFilter
	lastActor  string
	lastReq    dto.StudentRequest
	createErr  error
	getErr     error
	hit        bool
}

func (f *fakeStudentSrv) List(_ context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, bool, error) {
	f.lastFilter = filter
	return []models.Student{{ID: "s-1", Name: "Abdul Karim"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, f.hit, nil
}

func (f *fakeStudentSrv) Get(_ context.Context, id string) (*models.Student, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Student{ID: id}, nil
}

func (f *fakeStudentSrv) Create(_ context.Context, actor string, req dto.StudentRequest) (*models.Student, error) {
	f.lastActor = actor
	f.lastReq = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Student{ID: "s-2", Name: req.Name}, nil
}

func (f *fakeStudentSrv) Update(_ context.Context, id string, req dto.StudentRequest) (*models.Student, error) {
	return &models.Student{ID: id, Name: req.Name}, nil
}

func (f *fakeStudentSrv) Delete(context.Context, string) error { return nil }

func (f *fakeStudentSrv) CountByDepartment(context.Context) (dto.StudentOverview, error) {
	return dto.StudentOverview{}, nil
}

func studentRouter(srv *fakeStudentSrv) http.Handler {
	h := NewStudentHandler(srv)
	r := newTestRouter(&models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	r.GET("/students", h.List)
	r.GET("/students/:id", h.Get)
	r.POST("/students", h.Create)
	r.DELETE("/students/:id", h.Delete)
	return r
}

func TestStudentListPassesFiltersAndCacheMeta(t *testing.T) {
	srv := &fakeStudentSrv{hit: true}
	rec := httptest.NewRecorder()
	studentRouter(srv).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students?department=hifz&class=Class%205&status=active&page=2&limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Department("hifz"), srv.lastFilter.Department)
	assert.Equal(t, "Class 5", srv.lastFilter.ClassName)
	assert.Equal(t, models.StudentStatus("active"), srv.lastFilter.Status)
	assert.Equal(t, 2, srv.lastFilter.Page)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 10, env.Pagination.PageSize)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestStudentCreateUsesCallerAsActor(t *testing.T) {
	srv := &fakeStudentSrv{}
	rec := httptest.NewRecorder()
	body := `{"name":"Abdul Karim","guardian_phone":"01712345678","department":"hifz","class_name":"Class 5"}`
	studentRouter(srv).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "admin-1", srv.lastActor)
	assert.Equal(t, "Abdul Karim", srv.lastReq.Name)
}

func TestStudentCreateRejectsMalformedJSON(t *testing.T) {
	srv := &fakeStudentSrv{}
	rec := httptest.NewRecorder()
	studentRouter(srv).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(`{"name":`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Empty(t, srv.lastActor)
}

func TestStudentDuplicateCodeRendersConflictMessage(t *testing.T) {
	srv := &fakeStudentSrv{createErr: appErrors.Wrap(assert.AnError, appErrors.ErrConflict)}
	rec := httptest.NewRecorder()
	studentRouter(srv).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/students", strings.NewReader(`{"name":"x"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, appErrors.Message(appErrors.KindConflict, appErrors.LangEnglish), env.Error.Message)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestStudentGetNotFound(t *testing.T) {
	srv := &fakeStudentSrv{getErr: appErrors.ErrNotFound}
	rec := httptest.NewRecorder()
	studentRouter(srv).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStudentDeleteNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	studentRouter(&fakeStudentSrv{}).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/students/s-1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
