package dto

import (
	"time"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

// DashboardStats is the cached summary shown on the home screen.
type DashboardStats struct {
	GeneratedAt    time.Time       `json:"generated_at"`
	Students       StudentOverview `json:"students"`
	Staff          StaffOverview   `json:"staff"`
	Attendance     TodayAttendance `json:"attendance"`
	Finance        MonthlyFinance  `json:"finance"`
	UnpaidSalaries int             `json:"unpaid_salaries"`
	RecentNotices  []models.Notice `json:"recent_notices"`
}

// StudentOverview counts active students.
type StudentOverview struct {
	Total        int                      `json:"total"`
	ByDepartment []models.DepartmentCount `json:"by_department"`
}

// StaffOverview counts active staff by explicit role.
type StaffOverview struct {
	Total       int `json:"total"`
	Teachers    int `json:"teachers"`
	NonTeachers int `json:"non_teachers"`
}

// TodayAttendance is the student attendance of the current local day.
type TodayAttendance struct {
	Date string `json:"date"`
	aggregate.AttendanceSummary
}

// MonthlyFinance is the current calendar month's income and spending.
type MonthlyFinance struct {
	Month        int          `json:"month"`
	Year         int          `json:"year"`
	FeeCollected models.Money `json:"fee_collected"`
	OtherIncome  models.Money `json:"other_income"`
	Income       models.Money `json:"income"`
	Expenses     models.Money `json:"expenses"`
	SalariesPaid models.Money `json:"salaries_paid"`
	OtherExpense models.Money `json:"other_expense"`
	Expense      models.Money `json:"expense"`
	Net          models.Money `json:"net"`
}
