package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type fakeExpenseSrv struct {
	lastFilter models.ExpenseFilter
	lastBatch  dto.ExpenseBatchRequest
	deleted    string
}

func (f *fakeExpenseSrv) List(_ context.Context, filter models.ExpenseFilter) ([]models.Expense, *models.Pagination, bool, error) {
	f.lastFilter = filter
	return nil, &models.Pagination{Page: 1, PageSize: 20}, false, nil
}

func (f *fakeExpenseSrv) Groups(_ context.Context, filter models.ExpenseFilter) ([]aggregate.ExpenseGroup, bool, error) {
	f.lastFilter = filter
	return nil, true, nil
}

func (f *fakeExpenseSrv) Get(context.Context, string) (*models.Expense, error) {
	return nil, appErrors.ErrNotFound
}

func (f *fakeExpenseSrv) Create(_ context.Context, _ string, req dto.ExpenseRequest) (*models.Expense, error) {
	return &models.Expense{Title: req.Title}, nil
}

func (f *fakeExpenseSrv) CreateBatch(_ context.Context, _ string, req dto.ExpenseBatchRequest) ([]models.Expense, error) {
	f.lastBatch = req
	out := make([]models.Expense, len(req.Items))
	for i, item := range req.Items {
		out[i] = models.Expense{Title: item.Title}
	}
	return out, nil
}

func (f *fakeExpenseSrv) Update(_ context.Context, id string, req dto.ExpenseRequest) (*models.Expense, error) {
	return &models.Expense{ID: id, Title: req.Title}, nil
}

func (f *fakeExpenseSrv) Delete(context.Context, string) error { return nil }

func (f *fakeExpenseSrv) DeleteBatch(_ context.Context, batchID string) (int64, error) {
	f.deleted = batchID
	return 3, nil
}

func TestExpenseListParsesDateRange(t *testing.T) {
	srv := &fakeExpenseSrv{}
	h := NewExpenseHandler(srv)
	r := newTestRouter(nil)
	r.GET("/expenses", h.List)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses?category=bazar&from=2024-03-01&to=2024-03-31", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ExpenseCategory("bazar"), srv.lastFilter.Category)
	require.NotNil(t, srv.lastFilter.DateFrom)
	assert.Equal(t, 31, srv.lastFilter.DateTo.Day())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/expenses?from=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Contains(t, env.Error.Fields, "from")
}

func TestExpenseBatchCreateAndDelete(t *testing.T) {
	srv := &fakeExpenseSrv{}
	h := NewExpenseHandler(srv)
	r := newTestRouter(&models.JWTClaims{UserID: "acc-1", Role: models.RoleAccountant})
	r.POST("/expenses/batches", h.CreateBatch)
	r.DELETE("/expenses/batches/:batchId", h.DeleteBatch)

	body := `{"batch_name":"Friday bazar","date":"2024-03-08","category":"bazar","items":[{"title":"Rice","amount":"1200"},{"title":"Oil","amount":"450.50"}]}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/expenses/batches", strings.NewReader(body)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, srv.lastBatch.Items, 2)
	assert.Equal(t, "450.50", srv.lastBatch.Items[1].Amount)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/expenses/batches/b-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "b-1", srv.deleted)
	assert.JSONEq(t, `{"deleted":3}`, string(decodeEnvelope(t, rec).Data))
}

type fakeSalarySrv struct {
	month, year int
}

func (f *fakeSalarySrv) List(context.Context, models.SalaryFilter) ([]models.SalaryPayment, *models.Pagination, bool, error) {
	return nil, nil, false, nil
}
func (f *fakeSalarySrv) Get(context.Context, string) (*models.SalaryPayment, error) { return nil, nil }
func (f *fakeSalarySrv) Record(context.Context, string, dto.SalaryPaymentRequest) (*models.SalaryPayment, error) {
	return nil, appErrors.Wrap(assert.AnError, appErrors.ErrConflict)
}
func (f *fakeSalarySrv) Update(context.Context, string, dto.SalaryPaymentRequest) (*models.SalaryPayment, error) {
	return nil, nil
}
func (f *fakeSalarySrv) Delete(context.Context, string) error { return nil }
func (f *fakeSalarySrv) CountUnpaid(_ context.Context, month, year int) (int, error) {
	f.month, f.year = month, year
	return 4, nil
}

func TestSalaryUnpaidRequiresMonthAndYear(t *testing.T) {
	srv := &fakeSalarySrv{}
	h := NewSalaryHandler(srv)
	r := newTestRouter(nil)
	r.GET("/salary-payments/unpaid", h.Unpaid)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/salary-payments/unpaid?year=2024", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Error.Fields, "month")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/salary-payments/unpaid?month=3&year=2024", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, srv.month)
	assert.Equal(t, 2024, srv.year)
	assert.JSONEq(t, `{"month":3,"year":2024,"unpaid":4}`, string(decodeEnvelope(t, rec).Data))
}

func TestSalaryDuplicateMonthIsConflict(t *testing.T) {
	h := NewSalaryHandler(&fakeSalarySrv{})
	r := newTestRouter(nil)
	r.POST("/salary-payments", h.Record)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/salary-payments", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
