package models

import "time"

// Department is one of the fixed teaching tracks.
type Department string

const (
	DepartmentNoorani Department = "noorani"
	DepartmentNazera  Department = "nazera"
	DepartmentHifz    Department = "hifz"
	DepartmentKitab   Department = "kitab"
)

// Departments lists departments in display order.
var Departments = []Department{DepartmentNoorani, DepartmentNazera, DepartmentHifz, DepartmentKitab}

// StudentStatus is the soft lifecycle state of a student.
type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentInactive StudentStatus = "inactive"
)

// Student is an enrolled learner.
type Student struct {
	ID            string        `db:"id" json:"id"`
	StudentCode   string        `db:"student_code" json:"student_code"`
	Name          string        `db:"name" json:"name"`
	FatherName    *string       `db:"father_name" json:"father_name"`
	GuardianPhone string        `db:"guardian_phone" json:"guardian_phone"`
	GuardianNID   *string       `db:"guardian_nid" json:"guardian_nid"`
	Department    Department    `db:"department" json:"department"`
	ClassName     string        `db:"class_name" json:"class_name"`
	Address       *string       `db:"address" json:"address"`
	Status        StudentStatus `db:"status" json:"status"`
	AdmissionDate time.Time     `db:"admission_date" json:"admission_date"`
	CreatedBy     *string       `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	ListFilter
	Department Department
	ClassName  string
	Status     StudentStatus
}

// DepartmentCount is the number of active students in a department.
type DepartmentCount struct {
	Department Department `db:"department" json:"department"`
	Count      int        `db:"count" json:"count"`
}
