package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

// salaryCategory labels paid salaries in expense breakdowns.
const salaryCategory = "salary"

type paidSalaryLister interface {
	ListAll(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryPayment, error)
}

type resultSheetSource interface {
	ResultSheet(ctx context.Context, examID string) (*dto.ExamResultSheet, error)
}

// ReportServiceParams groups constructor dependencies.
type ReportServiceParams struct {
	Fees         feePaymentLister
	Transactions transactionLister
	Expenses     expenseLister
	Salaries     paidSalaryLister
	Attendance   attendanceLister
	Exams        resultSheetSource
	Cache        *CacheService
	Validator    *validator.Validate
	Logger       *zap.Logger
	Location     *time.Location
}

// ReportService builds windowed finance and academic reports.
type ReportService struct {
	fees         feePaymentLister
	transactions transactionLister
	expenses     expenseLister
	salaries     paidSalaryLister
	attendance   attendanceLister
	exams        resultSheetSource
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
	loc          *time.Location
	now          func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(params ReportServiceParams) *ReportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = dto.NewValidator()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		fees:         params.Fees,
		transactions: params.Transactions,
		expenses:     params.Expenses,
		salaries:     params.Salaries,
		attendance:   params.Attendance,
		exams:        params.Exams,
		cache:        params.Cache,
		validator:    validate,
		logger:       logger,
		loc:          loc,
		now:          time.Now,
	}
}

// window resolves the query window, defaulting to monthly.
func (s *ReportService) window(q dto.ReportQuery) (aggregate.Window, time.Time, time.Time, error) {
	if err := s.validator.Struct(q); err != nil {
		return "", time.Time{}, time.Time{}, appErrors.Classify(err)
	}
	w := aggregate.Monthly
	if q.Window != "" {
		parsed, err := aggregate.ParseWindow(q.Window)
		if err != nil {
			return "", time.Time{}, time.Time{}, appErrors.Invalid("window", "oneof", "daily weekly monthly yearly")
		}
		w = parsed
	}
	now := s.now()
	return w, now, aggregate.WindowStart(w, now, s.loc), nil
}

// Finance sums income (fees and ledger income) against spending (expenses,
// paid salaries and ledger expenses) over the window.
func (s *ReportService) Finance(ctx context.Context, q dto.ReportQuery) (*dto.FinanceReport, bool, error) {
	w, now, start, err := s.window(q)
	if err != nil {
		return nil, false, err
	}
	key := Key(ScopeReports, "finance", w, start.Truncate(time.Minute).Unix())
	report, hit, err := Remember(ctx, s.cache, key, 0, func(ctx context.Context) (dto.FinanceReport, error) {
		return s.composeFinance(ctx, w, now, start)
	})
	if err != nil {
		return nil, false, appErrors.Store(err, "finance report")
	}
	return &report, hit, nil
}

type ledgerLine struct {
	category string
	amount   models.Money
	date     time.Time
}

func (s *ReportService) composeFinance(ctx context.Context, w aggregate.Window, now, start time.Time) (dto.FinanceReport, error) {
	from := s.fromDate(start)
	var income, spending []ledgerLine

	payments, err := s.fees.ListAllPayments(ctx, models.FeePaymentFilter{DateFrom: &from})
	if err != nil {
		return dto.FinanceReport{}, err
	}
	for _, p := range payments {
		category := "fee"
		if p.FeeType != nil && *p.FeeType != "" {
			category = *p.FeeType
		}
		income = append(income, ledgerLine{category: category, amount: p.Amount, date: p.PaymentDate})
	}

	ledger, err := s.transactions.ListAll(ctx, models.TransactionFilter{DateFrom: &from})
	if err != nil {
		return dto.FinanceReport{}, err
	}
	for _, t := range ledger {
		line := ledgerLine{category: t.Category, amount: t.Amount, date: t.Date}
		if t.Type == models.TransactionIncome {
			income = append(income, line)
		} else {
			spending = append(spending, line)
		}
	}

	expenses, err := s.expenses.ListAll(ctx, models.ExpenseFilter{DateFrom: &from})
	if err != nil {
		return dto.FinanceReport{}, err
	}
	for _, e := range expenses {
		spending = append(spending, ledgerLine{category: string(e.Category), amount: e.Amount, date: e.Date})
	}

	salaries, err := s.salaries.ListAll(ctx, models.SalaryFilter{Status: models.SalaryPaid})
	if err != nil {
		return dto.FinanceReport{}, err
	}
	for _, p := range salaries {
		if p.PaymentDate == nil {
			continue
		}
		spending = append(spending, ledgerLine{category: salaryCategory, amount: p.Amount, date: *p.PaymentDate})
	}

	dateOf := func(l ledgerLine) time.Time { return l.date }
	categoryOf := func(l ledgerLine) string { return l.category }
	amountOf := func(l ledgerLine) models.Money { return l.amount }
	income = aggregate.FilterByWindow(income, w, now, s.loc, dateOf)
	spending = aggregate.FilterByWindow(spending, w, now, s.loc, dateOf)

	report := dto.FinanceReport{
		Window:            w,
		From:              start,
		GeneratedAt:       now.UTC(),
		Income:            aggregate.Sum(income, amountOf),
		Expense:           aggregate.Sum(spending, amountOf),
		IncomeByCategory:  aggregate.CategoryTotals(income, categoryOf, amountOf),
		ExpenseByCategory: aggregate.CategoryTotals(spending, categoryOf, amountOf),
	}
	report.Net = report.Income - report.Expense
	return report, nil
}

// Expenses breaks the window's expense lines down by category and by shopping trip.
func (s *ReportService) Expenses(ctx context.Context, q dto.ReportQuery) (*dto.ExpenseReport, bool, error) {
	w, now, start, err := s.window(q)
	if err != nil {
		return nil, false, err
	}
	key := Key(ScopeReports, "expenses", w, start.Truncate(time.Minute).Unix())
	report, hit, err := Remember(ctx, s.cache, key, 0, func(ctx context.Context) (dto.ExpenseReport, error) {
		from := s.fromDate(start)
		items, err := s.expenses.ListAll(ctx, models.ExpenseFilter{DateFrom: &from})
		if err != nil {
			return dto.ExpenseReport{}, err
		}
		items = aggregate.FilterByWindow(items, w, now, s.loc, func(e models.Expense) time.Time { return e.Date })
		amountOf := func(e models.Expense) models.Money { return e.Amount }
		return dto.ExpenseReport{
			Window:      w,
			From:        start,
			GeneratedAt: now.UTC(),
			Total:       aggregate.Sum(items, amountOf),
			Categories:  aggregate.CategoryTotals(items, func(e models.Expense) string { return string(e.Category) }, amountOf),
			Groups:      aggregate.GroupExpenseBatches(items),
		}, nil
	})
	if err != nil {
		return nil, false, appErrors.Store(err, "expense report")
	}
	return &report, hit, nil
}

// Attendance summarises one person's marks over an inclusive date range.
func (s *ReportService) Attendance(ctx context.Context, q dto.AttendanceReportQuery) (*dto.AttendanceReport, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Classify(err)
	}
	from, to, err := q.Range()
	if err != nil {
		return nil, appErrors.Invalid("from", "date", "")
	}
	if to.Before(from) {
		return nil, appErrors.Invalid("to", "gtefield", q.From)
	}
	records, err := s.attendance.ListAll(ctx, models.AttendanceFilter{
		UserID:   q.UserID,
		UserType: models.SubjectType(q.UserType),
		DateFrom: &from,
		DateTo:   &to,
	})
	if err != nil {
		return nil, appErrors.Store(err, "attendance report")
	}
	return &dto.AttendanceReport{
		UserID:   q.UserID,
		UserType: models.SubjectType(q.UserType),
		From:     from,
		To:       to,
		Summary:  aggregate.SummarizeAttendance(records),
		Records:  records,
	}, nil
}

// ExamSheet returns the graded result sheet of an exam.
func (s *ReportService) ExamSheet(ctx context.Context, examID string) (*dto.ExamResultSheet, error) {
	return s.exams.ResultSheet(ctx, examID)
}

// fromDate is the first calendar date that can fall inside a window starting at start.
func (s *ReportService) fromDate(start time.Time) time.Time {
	local := start.In(s.loc)
	return dateOnly(local.Year(), local.Month(), local.Day())
}
