package models

import "time"

// StaffRole is the explicit teaching classification of a staff member.
type StaffRole string

const (
	StaffTeacher    StaffRole = "teacher"
	StaffNonTeacher StaffRole = "non_teacher"
)

// Staff is an employee of the institution.
type Staff struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Designation string    `db:"designation" json:"designation"`
	Role        StaffRole `db:"role" json:"role"`
	Phone       string    `db:"phone" json:"phone"`
	NID         *string   `db:"nid" json:"nid"`
	Salary      *Money    `db:"salary" json:"salary"`
	JoinDate    time.Time `db:"join_date" json:"join_date"`
	Active      bool      `db:"active" json:"active"`
	CreatedBy   *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StaffFilter narrows staff listings.
type StaffFilter struct {
	ListFilter
	Role   StaffRole
	Active *bool
}
