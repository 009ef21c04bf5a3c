package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type fakeStudentExport struct {
	rows []models.Student
	err  error
}

func (f fakeStudentExport) ListAll(context.Context, models.StudentFilter) ([]models.Student, error) {
	return f.rows, f.err
}

func newExportFixture(students fakeStudentExport) (*ExportService, *MetricsService) {
	metrics := NewMetricsService()
	svc := NewExportService(ExportSources{
		Students: students,
		Expenses: fakeExpenseLister{rows: []models.Expense{{Title: "Rice", Category: models.ExpenseBazar, Amount: models.Money(120050), Date: day(2024, 3, 8)}}},
	}, metrics, nil, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 9, 30, 5, 0, time.UTC) }
	return svc, metrics
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	body = bytes.TrimPrefix(body, []byte{0xEF, 0xBB, 0xBF})
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportEntityCSV(t *testing.T) {
	father := "Abdul Karim"
	svc, metrics := newExportFixture(fakeStudentExport{rows: []models.Student{{
		StudentCode: "HF-001", Name: "আব্দুল্লাহ", FatherName: &father, GuardianPhone: "01712345678",
		Department: models.DepartmentHifz, ClassName: "Hifz-2", Status: models.StudentActive, AdmissionDate: day(2024, 1, 10),
	}}})

	file, err := svc.Entity(context.Background(), ExportStudents, "")
	require.NoError(t, err)
	assert.Equal(t, "students-20240315-093005.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	records := readCSV(t, file.Body)
	require.Len(t, records, 2)
	assert.Equal(t, "Code", records[0][0])
	assert.Equal(t, []string{"HF-001", "আব্দুল্লাহ", "Abdul Karim", "01712345678", "hifz", "Hifz-2", "active", "2024-01-10"}, records[1])
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.exports.WithLabelValues(ExportStudents, FormatCSV)))
}

func TestExportEntityJSON(t *testing.T) {
	svc, _ := newExportFixture(fakeStudentExport{})

	file, err := svc.Entity(context.Background(), ExportExpenses, "JSON")
	require.NoError(t, err)
	assert.Equal(t, "expenses-20240315-093005.json", file.Filename)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(file.Body, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, 1200.5, decoded[0]["amount"])

	empty, err := svc.Entity(context.Background(), ExportStudents, "json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty.Body))
}

func TestExportEntityRejectsPDFAndUnknownEntity(t *testing.T) {
	svc, _ := newExportFixture(fakeStudentExport{})

	_, err := svc.Entity(context.Background(), ExportStudents, "pdf")
	require.Error(t, err)
	assert.Contains(t, appErrors.Classify(err).Violations(), "format")

	_, err = svc.Entity(context.Background(), "camels", "csv")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestExportEntityStoreFailure(t *testing.T) {
	svc, _ := newExportFixture(fakeStudentExport{err: errors.New("timeout")})
	_, err := svc.Entity(context.Background(), ExportStudents, "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.KindUnclassified, appErrors.Classify(err).Kind)
}

func TestExportReportPDF(t *testing.T) {
	svc, metrics := newExportFixture(fakeStudentExport{})
	sheet := BuildResultSheet(quranExam(), []models.ExamResult{{StudentID: "s1", MarksObtained: 75}, {StudentID: "s2", IsAbsent: true}})

	file, err := svc.Report("exam-results", FormatPDF, ResultSheetTable(sheet), sheet)
	require.NoError(t, err)
	assert.Equal(t, "exam-results-20240315-093005.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.exports.WithLabelValues("exam-results", FormatPDF)))

	_, err = svc.Report("finance", "xlsx", FinanceTable(dto.FinanceReport{}), nil)
	assert.Error(t, err)
}

func TestReportTables(t *testing.T) {
	finance := FinanceTable(dto.FinanceReport{Window: "monthly", Income: models.Taka(10), Expense: models.Taka(4), Net: models.Taka(6)})
	require.Len(t, finance.Rows, 3)
	assert.Equal(t, "6.00", finance.Rows[2]["Amount"])

	sheet := ResultSheetTable(BuildResultSheet(quranExam(), []models.ExamResult{{StudentID: "s1", MarksObtained: 20}, {StudentID: "s2", IsAbsent: true}}))
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "fail", sheet.Rows[0]["Result"])
	assert.Equal(t, "absent", sheet.Rows[1]["Result"])
}
