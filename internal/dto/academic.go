package dto

import (
	"fmt"
	"strings"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

// ExamRequest schedules an exam paper.
type ExamRequest struct {
	Name       string  `json:"name" validate:"required,max=120"`
	ExamType   string  `json:"exam_type" validate:"required,oneof=monthly half_yearly annual test"`
	Department string  `json:"department" validate:"required,oneof=noorani nazera hifz kitab"`
	ClassName  string  `json:"class_name" validate:"required,max=60"`
	Subject    string  `json:"subject" validate:"required,max=80"`
	TotalMarks float64 `json:"total_marks" validate:"required,gt=0,lte=1000"`
	PassMarks  float64 `json:"pass_marks" validate:"gte=0"`
	ExamDate   string  `json:"exam_date" validate:"required,date"`
}

// ToRecord maps the form onto an exam row.
func (r ExamRequest) ToRecord() (models.Exam, error) {
	d, err := ParseDate(r.ExamDate)
	if err != nil {
		return models.Exam{}, appErrors.Invalid("exam_date", "date", "")
	}
	return models.Exam{
		Name:       strings.TrimSpace(r.Name),
		ExamType:   models.ExamType(r.ExamType),
		Department: models.Department(r.Department),
		ClassName:  strings.TrimSpace(r.ClassName),
		Subject:    strings.TrimSpace(r.Subject),
		TotalMarks: r.TotalMarks,
		PassMarks:  r.PassMarks,
		ExamDate:   d,
	}, nil
}

// ExamResultItem is one student's marks.
type ExamResultItem struct {
	StudentID     string  `json:"student_id" validate:"required,uuid"`
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0"`
	IsAbsent      bool    `json:"is_absent"`
	Remarks       string  `json:"remarks" validate:"omitempty,max=255"`
}

// BulkExamResultRequest enters the result sheet of one exam.
type BulkExamResultRequest struct {
	Results []ExamResultItem `json:"results" validate:"required,min=1,max=1000,dive"`
}

// ToRecords maps the sheet onto result rows for exam, deriving each grade.
// Marks above the exam total are rejected; absent students are stored with zero marks.
func (r BulkExamResultRequest) ToRecords(exam models.Exam) ([]models.ExamResult, error) {
	out := make([]models.ExamResult, 0, len(r.Results))
	for i, item := range r.Results {
		if !item.IsAbsent && item.MarksObtained > exam.TotalMarks {
			return nil, appErrors.Invalid(fmt.Sprintf("results[%d].marks_obtained", i), "lte", trimFloat(exam.TotalMarks))
		}
		marks := item.MarksObtained
		if item.IsAbsent {
			marks = 0
		}
		out = append(out, models.ExamResult{
			ExamID:        exam.ID,
			StudentID:     item.StudentID,
			MarksObtained: marks,
			Grade:         aggregate.Grade(marks, exam.TotalMarks, item.IsAbsent),
			IsAbsent:      item.IsAbsent,
			Remarks:       optional(item.Remarks),
		})
	}
	return out, nil
}

func trimFloat(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

// TimetableRequest schedules one period.
type TimetableRequest struct {
	Department string `json:"department" validate:"required,oneof=noorani nazera hifz kitab"`
	ClassName  string `json:"class_name" validate:"required,max=60"`
	DayOfWeek  string `json:"day_of_week" validate:"required,oneof=saturday sunday monday tuesday wednesday thursday friday"`
	Subject    string `json:"subject" validate:"required,max=80"`
	TeacherID  string `json:"teacher_id" validate:"omitempty,uuid"`
	StartTime  string `json:"start_time" validate:"required,hhmm"`
	EndTime    string `json:"end_time" validate:"required,hhmm"`
	Room       string `json:"room" validate:"omitempty,max=40"`
}

// ToRecord maps the form onto a timetable row.
func (r TimetableRequest) ToRecord() models.TimetableEntry {
	return models.TimetableEntry{
		Department: models.Department(r.Department),
		ClassName:  strings.TrimSpace(r.ClassName),
		DayOfWeek:  models.Weekday(r.DayOfWeek),
		Subject:    strings.TrimSpace(r.Subject),
		TeacherID:  optional(r.TeacherID),
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Room:       optional(r.Room),
	}
}
