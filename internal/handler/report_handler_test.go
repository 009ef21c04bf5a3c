package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/service"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/export"
)

type fakeReportSrv struct {
	lastQuery dto.ReportQuery
	hit       bool
}

func (f *fakeReportSrv) Finance(_ context.Context, q dto.ReportQuery) (*dto.FinanceReport, bool, error) {
	f.lastQuery = q
	return &dto.FinanceReport{Window: aggregate.Window(q.Window), Income: 620000, Expense: 700000, Net: -80000}, f.hit, nil
}

func (f *fakeReportSrv) Expenses(_ context.Context, q dto.ReportQuery) (*dto.ExpenseReport, bool, error) {
	f.lastQuery = q
	return &dto.ExpenseReport{}, false, nil
}

func (f *fakeReportSrv) Attendance(context.Context, dto.AttendanceReportQuery) (*dto.AttendanceReport, error) {
	return nil, appErrors.Invalid("to", "gtefield", "From")
}

func (f *fakeReportSrv) ExamSheet(context.Context, string) (*dto.ExamResultSheet, error) {
	return &dto.ExamResultSheet{}, nil
}

type fakeReportExporter struct {
	name, format string
	table        export.Dataset
	err          error
}

func (f *fakeReportExporter) Report(name, format string, table export.Dataset, _ interface{}) (*service.ExportFile, error) {
	f.name, f.format, f.table = name, format, table
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportFile{Filename: name + "-20240315-100000." + format, ContentType: "text/csv; charset=utf-8", Body: []byte("a,b\n")}, nil
}

func TestFinanceReportAsEnvelope(t *testing.T) {
	srv := &fakeReportSrv{hit: true}
	exporter := &fakeReportExporter{}
	h := NewReportHandler(srv, exporter)
	r := newTestRouter(nil)
	r.GET("/reports/finance", h.Finance)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/finance?window=weekly", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "weekly", srv.lastQuery.Window)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Contains(t, string(env.Data), `"net":-800`)
	assert.Empty(t, exporter.name)
}

func TestFinanceReportAsDownload(t *testing.T) {
	exporter := &fakeReportExporter{}
	h := NewReportHandler(&fakeReportSrv{}, exporter)
	r := newTestRouter(nil)
	r.GET("/reports/finance", h.Finance)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/finance?window=monthly&format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "finance-report", exporter.name)
	assert.Equal(t, "csv", exporter.format)
	assert.NotEmpty(t, exporter.table.Headers)
	assert.Equal(t, `attachment; filename="finance-report-20240315-100000.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}

func TestReportExportErrorIsEnveloped(t *testing.T) {
	exporter := &fakeReportExporter{err: appErrors.Invalid("format", "oneof", "csv json pdf")}
	h := NewReportHandler(&fakeReportSrv{}, exporter)
	r := newTestRouter(nil)
	r.GET("/reports/expenses", h.Expenses)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/expenses?format=xlsx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error.Fields, "format")
}

func TestAttendanceReportValidationError(t *testing.T) {
	h := NewReportHandler(&fakeReportSrv{}, &fakeReportExporter{})
	r := newTestRouter(nil)
	r.GET("/reports/attendance", h.Attendance)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/attendance?user_id=x&user_type=student&from=2024-03-10&to=2024-03-01", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error.Fields, "to")
}

type fakeEntityExporter struct {
	entity, format string
}

func (f *fakeEntityExporter) Entity(_ context.Context, entity, format string) (*service.ExportFile, error) {
	f.entity, f.format = entity, format
	if entity == "unknown" {
		return nil, appErrors.ErrNotFound
	}
	return &service.ExportFile{Filename: entity + ".json", ContentType: "application/json", Body: []byte("[]")}, nil
}

func TestExportEntity(t *testing.T) {
	exporter := &fakeEntityExporter{}
	h := NewExportHandler(exporter)
	r := newTestRouter(nil)
	r.GET("/exports/:entity", h.Entity)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports/fee-payments?format=json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fee-payments", exporter.entity)
	assert.Equal(t, "json", exporter.format)
	assert.Equal(t, `attachment; filename="fee-payments.json"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "[]", rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/exports/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadyReportsFailingDependency(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	r := newTestRouter(nil)
	r.GET("/ready", h.Ready)
	r.GET("/health", h.Health)
	r.GET("/metrics", h.Prometheus)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"not_ready","checks":{"database":"up","redis":"down"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPrometheusServesRegistry(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordExport("students", "csv")
	h := NewMetricsHandler(metrics, nil)
	r := newTestRouter(nil)
	r.GET("/metrics", h.Prometheus)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "students")
}
