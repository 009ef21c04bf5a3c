package models

import "time"

// Weekday is a day of the madrasah week, which starts on Saturday.
type Weekday string

const (
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
)

// TimetableEntry is one scheduled period.
type TimetableEntry struct {
	ID         string     `db:"id" json:"id"`
	Department Department `db:"department" json:"department"`
	ClassName  string     `db:"class_name" json:"class_name"`
	DayOfWeek  Weekday    `db:"day_of_week" json:"day_of_week"`
	Subject    string     `db:"subject" json:"subject"`
	TeacherID  *string    `db:"teacher_id" json:"teacher_id"`
	StartTime  string     `db:"start_time" json:"start_time"`
	EndTime    string     `db:"end_time" json:"end_time"`
	Room       *string    `db:"room" json:"room"`
	CreatedBy  *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`

	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// TimetableFilter narrows timetable listings.
type TimetableFilter struct {
	Department Department
	ClassName  string
	DayOfWeek  Weekday
	TeacherID  string
}
