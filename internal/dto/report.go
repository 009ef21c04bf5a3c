package dto

import (
	"time"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

// ReportQuery selects the window and output of a report.
type ReportQuery struct {
	Window string `form:"window" validate:"omitempty,oneof=daily weekly monthly yearly"`
	Format string `form:"format" validate:"omitempty,oneof=json csv pdf"`
}

// AttendanceReportQuery selects one person's attendance over a date range.
type AttendanceReportQuery struct {
	UserID   string `form:"user_id" validate:"required"`
	UserType string `form:"user_type" validate:"required,oneof=student staff"`
	From     string `form:"from" validate:"required,date"`
	To       string `form:"to" validate:"required,date"`
	Format   string `form:"format" validate:"omitempty,oneof=json csv pdf"`
}

// Range parses the inclusive date bounds.
func (q AttendanceReportQuery) Range() (time.Time, time.Time, error) {
	from, err := ParseDate(q.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseDate(q.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// FinanceReport summarises money in and out over a window.
type FinanceReport struct {
	Window            aggregate.Window            `json:"window"`
	From              time.Time                   `json:"from"`
	GeneratedAt       time.Time                   `json:"generated_at"`
	Income            models.Money                `json:"income"`
	Expense           models.Money                `json:"expense"`
	Net               models.Money                `json:"net"`
	IncomeByCategory  aggregate.CategoryBreakdown `json:"income_by_category"`
	ExpenseByCategory aggregate.CategoryBreakdown `json:"expense_by_category"`
}

// ExpenseReport lists a window's expenses by category and by shopping trip.
type ExpenseReport struct {
	Window      aggregate.Window            `json:"window"`
	From        time.Time                   `json:"from"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Total       models.Money                `json:"total"`
	Categories  aggregate.CategoryBreakdown `json:"categories"`
	Groups      []aggregate.ExpenseGroup    `json:"groups"`
}

// AttendanceReport is one person's attendance over a date range.
type AttendanceReport struct {
	UserID   string                      `json:"user_id"`
	UserType models.SubjectType          `json:"user_type"`
	From     time.Time                   `json:"from"`
	To       time.Time                   `json:"to"`
	Summary  aggregate.AttendanceSummary `json:"summary"`
	Records  []models.Attendance         `json:"records"`
}

// ExamResultRow is one student's line on a result sheet.
type ExamResultRow struct {
	StudentID     string  `json:"student_id"`
	StudentName   string  `json:"student_name"`
	MarksObtained float64 `json:"marks_obtained"`
	Percentage    float64 `json:"percentage"`
	Grade         string  `json:"grade"`
	GradePoint    float64 `json:"grade_point"`
	IsAbsent      bool    `json:"is_absent"`
	Passed        bool    `json:"passed"`
}

// GradeCount is the number of students holding one grade.
type GradeCount struct {
	Grade string `json:"grade"`
	Count int    `json:"count"`
}

// ExamResultSheet is the graded result sheet of an exam.
type ExamResultSheet struct {
	Exam         models.Exam     `json:"exam"`
	Rows         []ExamResultRow `json:"rows"`
	Appeared     int             `json:"appeared"`
	Absent       int             `json:"absent"`
	Passed       int             `json:"passed"`
	Failed       int             `json:"failed"`
	PassRate     float64         `json:"pass_rate"`
	Distribution []GradeCount    `json:"distribution"`
}
