package models

import "time"

// ExamType classifies an exam sitting.
type ExamType string

const (
	ExamMonthly    ExamType = "monthly"
	ExamHalfYearly ExamType = "half_yearly"
	ExamAnnual     ExamType = "annual"
	ExamTest       ExamType = "test"
)

// Exam is a single paper taken by one class.
type Exam struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	ExamType   ExamType   `db:"exam_type" json:"exam_type"`
	Department Department `db:"department" json:"department"`
	ClassName  string     `db:"class_name" json:"class_name"`
	Subject    string     `db:"subject" json:"subject"`
	TotalMarks float64    `db:"total_marks" json:"total_marks"`
	PassMarks  float64    `db:"pass_marks" json:"pass_marks"`
	ExamDate   time.Time  `db:"exam_date" json:"exam_date"`
	CreatedBy  *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// ExamFilter narrows exam listings.
type ExamFilter struct {
	ListFilter
	Department Department
	ClassName  string
	ExamType   ExamType
}

// ExamResult is unique per (exam_id, student_id); writes upsert.
type ExamResult struct {
	ID            string    `db:"id" json:"id"`
	ExamID        string    `db:"exam_id" json:"exam_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	MarksObtained float64   `db:"marks_obtained" json:"marks_obtained"`
	Grade         string    `db:"grade" json:"grade"`
	IsAbsent      bool      `db:"is_absent" json:"is_absent"`
	Remarks       *string   `db:"remarks" json:"remarks"`
	CreatedBy     *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`

	StudentName *string `db:"student_name" json:"student_name,omitempty"`
}
