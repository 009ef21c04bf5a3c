package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/export"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

// Exportable entities.
const (
	ExportStudents       = "students"
	ExportStaff          = "staff"
	ExportExpenses       = "expenses"
	ExportTransactions   = "transactions"
	ExportFeePayments    = "fee-payments"
	ExportSalaryPayments = "salary-payments"
)

type tableRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type recordRenderer interface {
	Render(records interface{}) ([]byte, error)
	ContentType() string
}

type studentExportSource interface {
	ListAll(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

// ExportSources are the full-list readers behind entity exports.
type ExportSources struct {
	Students     studentExportSource
	Staff        staffLister
	Expenses     expenseLister
	Transactions transactionLister
	Fees         feePaymentLister
	Salaries     paidSalaryLister
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders entity lists and reports as downloadable files.
type ExportService struct {
	sources ExportSources
	csv     tableRenderer
	pdf     tableRenderer
	json    recordRenderer
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get the package defaults.
func NewExportService(sources ExportSources, metrics *MetricsService, logger *zap.Logger, csv, pdf tableRenderer, json recordRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	if json == nil {
		json = export.NewJSONExporter()
	}
	return &ExportService{sources: sources, csv: csv, pdf: pdf, json: json, metrics: metrics, logger: logger, now: time.Now}
}

// Entity exports every row of an entity as csv or json.
func (s *ExportService) Entity(ctx context.Context, entity, format string) (*ExportFile, error) {
	format = normalizeFormat(format)
	if format != FormatCSV && format != FormatJSON {
		return nil, appErrors.Invalid("format", "oneof", "csv json")
	}
	var (
		records interface{}
		table   export.Dataset
		err     error
	)
	switch entity {
	case ExportStudents:
		var rows []models.Student
		if rows, err = s.sources.Students.ListAll(ctx, models.StudentFilter{}); err == nil {
			records, table = rows, StudentsTable(rows)
		}
	case ExportStaff:
		var rows []models.Staff
		if rows, err = s.sources.Staff.ListAll(ctx, models.StaffFilter{}); err == nil {
			records, table = rows, StaffTable(rows)
		}
	case ExportExpenses:
		var rows []models.Expense
		if rows, err = s.sources.Expenses.ListAll(ctx, models.ExpenseFilter{}); err == nil {
			records, table = rows, ExpensesTable(rows)
		}
	case ExportTransactions:
		var rows []models.Transaction
		if rows, err = s.sources.Transactions.ListAll(ctx, models.TransactionFilter{}); err == nil {
			records, table = rows, TransactionsTable(rows)
		}
	case ExportFeePayments:
		var rows []models.FeePayment
		if rows, err = s.sources.Fees.ListAllPayments(ctx, models.FeePaymentFilter{}); err == nil {
			records, table = rows, FeePaymentsTable(rows)
		}
	case ExportSalaryPayments:
		var rows []models.SalaryPayment
		if rows, err = s.sources.Salaries.ListAll(ctx, models.SalaryFilter{}); err == nil {
			records, table = rows, SalariesTable(rows)
		}
	default:
		return nil, appErrors.ErrNotFound
	}
	if err != nil {
		return nil, appErrors.Store(err, "export "+entity)
	}
	return s.render(entity, format, table, records)
}

// Report renders an already-built report. Table is used for csv and pdf, the report value for json.
func (s *ExportService) Report(name, format string, table export.Dataset, report interface{}) (*ExportFile, error) {
	format = normalizeFormat(format)
	if format != FormatCSV && format != FormatJSON && format != FormatPDF {
		return nil, appErrors.Invalid("format", "oneof", "csv json pdf")
	}
	return s.render(name, format, table, report)
}

func (s *ExportService) render(name, format string, table export.Dataset, records interface{}) (*ExportFile, error) {
	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case FormatJSON:
		body, err = s.json.Render(records)
		contentType = s.json.ContentType()
	case FormatPDF:
		body, err = s.pdf.Render(table)
		contentType = s.pdf.ContentType()
	default:
		body, err = s.csv.Render(table)
		contentType = s.csv.ContentType()
	}
	if err != nil {
		return nil, appErrors.Wrapf(appErrors.ErrInternal, err, "render %s as %s", name, format)
	}
	s.metrics.RecordExport(name, format)
	s.logger.Debug("export rendered", zap.String("dataset", name), zap.String("format", format), zap.Int("bytes", len(body)))
	return &ExportFile{
		Filename:    fmt.Sprintf("%s-%s.%s", name, s.now().Format("20060102-150405"), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return FormatCSV
	}
	return format
}

func dateText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatText(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// StudentsTable lays out students for csv and pdf.
func StudentsTable(rows []models.Student) export.Dataset {
	d := export.Dataset{Title: "Students", Headers: []string{"Code", "Name", "Father", "Guardian Phone", "Department", "Class", "Status", "Admitted"}}
	for _, r := range rows {
		d.Append(map[string]string{
			"Code":           r.StudentCode,
			"Name":           r.Name,
			"Father":         deref(r.FatherName),
			"Guardian Phone": r.GuardianPhone,
			"Department":     string(r.Department),
			"Class":          r.ClassName,
			"Status":         string(r.Status),
			"Admitted":       dateText(r.AdmissionDate),
		})
	}
	return d
}

// StaffTable lays out staff for csv and pdf.
func StaffTable(rows []models.Staff) export.Dataset {
	d := export.Dataset{Title: "Staff", Headers: []string{"Name", "Designation", "Role", "Phone", "Salary", "Joined", "Active"}}
	for _, r := range rows {
		salary := ""
		if r.Salary != nil {
			salary = r.Salary.String()
		}
		d.Append(map[string]string{
			"Name":        r.Name,
			"Designation": r.Designation,
			"Role":        string(r.Role),
			"Phone":       r.Phone,
			"Salary":      salary,
			"Joined":      dateText(r.JoinDate),
			"Active":      strconv.FormatBool(r.Active),
		})
	}
	return d
}

// ExpensesTable lays out expense lines for csv and pdf.
func ExpensesTable(rows []models.Expense) export.Dataset {
	d := export.Dataset{Title: "Expenses", Headers: []string{"Date", "Title", "Category", "Amount", "Batch"}}
	for _, r := range rows {
		d.Append(map[string]string{
			"Date":     dateText(r.Date),
			"Title":    r.Title,
			"Category": string(r.Category),
			"Amount":   r.Amount.String(),
			"Batch":    deref(r.BatchName),
		})
	}
	return d
}

// TransactionsTable lays out ledger entries for csv and pdf.
func TransactionsTable(rows []models.Transaction) export.Dataset {
	d := export.Dataset{Title: "Transactions", Headers: []string{"Date", "Type", "Category", "Amount", "Description"}}
	for _, r := range rows {
		d.Append(map[string]string{
			"Date":        dateText(r.Date),
			"Type":        string(r.Type),
			"Category":    r.Category,
			"Amount":      r.Amount.String(),
			"Description": deref(r.Description),
		})
	}
	return d
}

// FeePaymentsTable lays out collected fees for csv and pdf.
func FeePaymentsTable(rows []models.FeePayment) export.Dataset {
	d := export.Dataset{Title: "Fee Payments", Headers: []string{"Receipt", "Date", "Student", "Fee", "Month", "Year", "Method", "Amount"}}
	for _, r := range rows {
		d.Append(map[string]string{
			"Receipt": deref(r.ReceiptNumber),
			"Date":    dateText(r.PaymentDate),
			"Student": deref(r.StudentName),
			"Fee":     deref(r.FeeType),
			"Month":   intText(r.Month),
			"Year":    intText(r.Year),
			"Method":  string(r.Method),
			"Amount":  r.Amount.String(),
		})
	}
	return d
}

// SalariesTable lays out salary rows for csv and pdf.
func SalariesTable(rows []models.SalaryPayment) export.Dataset {
	d := export.Dataset{Title: "Salary Payments", Headers: []string{"Staff", "Month", "Year", "Amount", "Status", "Paid On", "Method"}}
	for _, r := range rows {
		paidOn := ""
		if r.PaymentDate != nil {
			paidOn = dateText(*r.PaymentDate)
		}
		d.Append(map[string]string{
			"Staff":   deref(r.StaffName),
			"Month":   strconv.Itoa(r.Month),
			"Year":    strconv.Itoa(r.Year),
			"Amount":  r.Amount.String(),
			"Status":  string(r.Status),
			"Paid On": paidOn,
			"Method":  string(r.Method),
		})
	}
	return d
}

// FinanceTable flattens a finance report into category lines.
func FinanceTable(r dto.FinanceReport) export.Dataset {
	d := export.Dataset{Title: "Finance Report (" + string(r.Window) + ")", Headers: []string{"Kind", "Category", "Amount", "Share %"}}
	for _, c := range r.IncomeByCategory.Categories {
		d.Append(map[string]string{"Kind": "income", "Category": c.Category, "Amount": c.Total.String(), "Share %": strconv.FormatFloat(c.Percentage, 'f', 1, 64)})
	}
	for _, c := range r.ExpenseByCategory.Categories {
		d.Append(map[string]string{"Kind": "expense", "Category": c.Category, "Amount": c.Total.String(), "Share %": strconv.FormatFloat(c.Percentage, 'f', 1, 64)})
	}
	d.Append(map[string]string{"Kind": "total", "Category": "income", "Amount": r.Income.String()})
	d.Append(map[string]string{"Kind": "total", "Category": "expense", "Amount": r.Expense.String()})
	d.Append(map[string]string{"Kind": "total", "Category": "net", "Amount": r.Net.String()})
	return d
}

// ExpenseReportTable lists each batch or single expense of the report.
func ExpenseReportTable(r dto.ExpenseReport) export.Dataset {
	d := export.Dataset{Title: "Expense Report (" + string(r.Window) + ")", Headers: []string{"Date", "Entry", "Items", "Total"}}
	for _, g := range r.Groups {
		entry := ""
		if g.IsBatch() {
			entry = deref(g.BatchName)
		} else if len(g.Items) > 0 {
			entry = g.Items[0].Title
		}
		d.Append(map[string]string{"Date": dateText(g.Date), "Entry": entry, "Items": strconv.Itoa(g.ItemCount), "Total": g.Total.String()})
	}
	d.Append(map[string]string{"Entry": "total", "Total": r.Total.String()})
	return d
}

// AttendanceReportTable lists the marks of an attendance report.
func AttendanceReportTable(r dto.AttendanceReport) export.Dataset {
	d := export.Dataset{Title: "Attendance " + dateText(r.From) + " - " + dateText(r.To), Headers: []string{"Date", "Status", "Notes"}}
	for _, a := range r.Records {
		d.Append(map[string]string{"Date": dateText(a.Date), "Status": string(a.Status), "Notes": deref(a.Notes)})
	}
	d.Append(map[string]string{"Date": "total", "Status": strconv.FormatFloat(r.Summary.Percentage, 'f', 1, 64) + "%"})
	return d
}

// ResultSheetTable lists the rows of a result sheet.
func ResultSheetTable(sheet dto.ExamResultSheet) export.Dataset {
	d := export.Dataset{Title: sheet.Exam.Name + " - " + sheet.Exam.Subject, Headers: []string{"Student", "Marks", "Percent", "Grade", "GP", "Result"}}
	for _, row := range sheet.Rows {
		result := "fail"
		switch {
		case row.IsAbsent:
			result = "absent"
		case row.Passed:
			result = "pass"
		}
		d.Append(map[string]string{
			"Student": row.StudentName,
			"Marks":   floatText(row.MarksObtained),
			"Percent": strconv.FormatFloat(row.Percentage, 'f', 1, 64),
			"Grade":   row.Grade,
			"GP":      strconv.FormatFloat(row.GradePoint, 'f', 1, 64),
			"Result":  result,
		})
	}
	return d
}
