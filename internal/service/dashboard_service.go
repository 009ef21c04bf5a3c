package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type studentCounter interface {
	CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error)
}

type staffLister interface {
	ListAll(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error)
}

type attendanceLister interface {
	ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
}

type feePaymentLister interface {
	ListAllPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, error)
}

type transactionLister interface {
	ListAll(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
}

type expenseLister interface {
	ListAll(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error)
}

type salaryLister interface {
	ListAll(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryPayment, error)
	CountUnpaid(ctx context.Context, month, year int) (int, error)
}

type recentNoticeLister interface {
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL      time.Duration
	Location      *time.Location
	RecentNotices int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Students     studentCounter
	Staff        staffLister
	Attendance   attendanceLister
	Fees         feePaymentLister
	Transactions transactionLister
	Expenses     expenseLister
	Salaries     salaryLister
	Notices      recentNoticeLister
	Cache        *CacheService
	Logger       *zap.Logger
	Config       DashboardServiceConfig
}

// DashboardService composes the home screen summary.
type DashboardService struct {
	students     studentCounter
	staff        staffLister
	attendance   attendanceLister
	fees         feePaymentLister
	transactions transactionLister
	expenses     expenseLister
	salaries     salaryLister
	notices      recentNoticeLister
	cache        *CacheService
	logger       *zap.Logger
	now          func() time.Time
	cfg          DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.RecentNotices <= 0 {
		cfg.RecentNotices = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:     params.Students,
		staff:        params.Staff,
		attendance:   params.Attendance,
		fees:         params.Fees,
		transactions: params.Transactions,
		expenses:     params.Expenses,
		salaries:     params.Salaries,
		notices:      params.Notices,
		cache:        params.Cache,
		logger:       logger,
		now:          time.Now,
		cfg:          cfg,
	}
}

// Stats returns the dashboard summary and indicates cache utilisation.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, bool, error) {
	local := s.now().In(s.cfg.Location)
	key := Key(ScopeDashboard, "stats", local.Format("2006-01-02"))
	stats, hit, err := Remember(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (dto.DashboardStats, error) {
		return s.compose(ctx, local)
	})
	if err != nil {
		return nil, false, appErrors.Store(err, "compose dashboard")
	}
	return &stats, hit, nil
}

func (s *DashboardService) compose(ctx context.Context, local time.Time) (dto.DashboardStats, error) {
	stats := dto.DashboardStats{GeneratedAt: local.UTC()}
	today := dateOnly(local.Year(), local.Month(), local.Day())
	monthStart := dateOnly(local.Year(), local.Month(), 1)
	monthEnd := monthStart.AddDate(0, 1, -1)

	counts, err := s.students.CountByDepartment(ctx)
	if err != nil {
		return stats, err
	}
	stats.Students = studentOverview(counts)

	active := true
	staff, err := s.staff.ListAll(ctx, models.StaffFilter{Active: &active})
	if err != nil {
		return stats, err
	}
	stats.Staff = staffOverview(staff)

	marks, err := s.attendance.ListAll(ctx, models.AttendanceFilter{UserType: models.SubjectStudent, DateFrom: &today, DateTo: &today})
	if err != nil {
		return stats, err
	}
	stats.Attendance = dto.TodayAttendance{Date: today.Format("2006-01-02"), AttendanceSummary: aggregate.SummarizeAttendance(marks)}

	finance := dto.MonthlyFinance{Month: int(local.Month()), Year: local.Year()}
	payments, err := s.fees.ListAllPayments(ctx, models.FeePaymentFilter{DateFrom: &monthStart, DateTo: &monthEnd})
	if err != nil {
		return stats, err
	}
	finance.FeeCollected = aggregate.Sum(payments, func(p models.FeePayment) models.Money { return p.Amount })

	ledger, err := s.transactions.ListAll(ctx, models.TransactionFilter{DateFrom: &monthStart, DateTo: &monthEnd})
	if err != nil {
		return stats, err
	}
	for _, t := range ledger {
		if t.Type == models.TransactionIncome {
			finance.OtherIncome += t.Amount
		} else {
			finance.OtherExpense += t.Amount
		}
	}

	expenses, err := s.expenses.ListAll(ctx, models.ExpenseFilter{DateFrom: &monthStart, DateTo: &monthEnd})
	if err != nil {
		return stats, err
	}
	finance.Expenses = aggregate.Sum(expenses, func(e models.Expense) models.Money { return e.Amount })

	month, year := int(local.Month()), local.Year()
	paid, err := s.salaries.ListAll(ctx, models.SalaryFilter{Month: &month, Year: &year, Status: models.SalaryPaid})
	if err != nil {
		return stats, err
	}
	finance.SalariesPaid = aggregate.Sum(paid, func(p models.SalaryPayment) models.Money { return p.Amount })

	finance.Income = finance.FeeCollected + finance.OtherIncome
	finance.Expense = finance.Expenses + finance.SalariesPaid + finance.OtherExpense
	finance.Net = finance.Income - finance.Expense
	stats.Finance = finance

	if stats.UnpaidSalaries, err = s.salaries.CountUnpaid(ctx, month, year); err != nil {
		return stats, err
	}

	published := true
	notices, _, err := s.notices.List(ctx, models.NoticeFilter{
		ListFilter: models.ListFilter{Page: 1, PageSize: s.cfg.RecentNotices, SortBy: "publish_date", SortOrder: "desc"},
		Published:  &published,
	})
	if err != nil {
		return stats, err
	}
	stats.RecentNotices = notices
	return stats, nil
}

func studentOverview(counts []models.DepartmentCount) dto.StudentOverview {
	byDept := make(map[models.Department]int, len(counts))
	for _, c := range counts {
		byDept[c.Department] = c.Count
	}
	out := dto.StudentOverview{ByDepartment: make([]models.DepartmentCount, 0, len(models.Departments))}
	for _, d := range models.Departments {
		out.ByDepartment = append(out.ByDepartment, models.DepartmentCount{Department: d, Count: byDept[d]})
		out.Total += byDept[d]
	}
	return out
}

func staffOverview(staff []models.Staff) dto.StaffOverview {
	out := dto.StaffOverview{Total: len(staff)}
	for _, m := range staff {
		if m.Role == models.StaffTeacher {
			out.Teachers++
		} else {
			out.NonTeachers++
		}
	}
	return out
}

// dateOnly builds the value bound against DATE columns.
func dateOnly(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
