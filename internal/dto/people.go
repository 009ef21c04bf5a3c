package dto

import (
	"strings"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

// StudentRequest is the admission / edit form for a student.
type StudentRequest struct {
	StudentCode   string `json:"student_code" validate:"required,max=32"`
	Name          string `json:"name" validate:"required,min=2,max=120"`
	FatherName    string `json:"father_name" validate:"omitempty,max=120"`
	GuardianPhone string `json:"guardian_phone" validate:"required,bdphone"`
	GuardianNID   string `json:"guardian_nid" validate:"omitempty,nid"`
	Department    string `json:"department" validate:"required,oneof=noorani nazera hifz kitab"`
	ClassName     string `json:"class_name" validate:"required,max=60"`
	Address       string `json:"address" validate:"omitempty,max=500"`
	Status        string `json:"status" validate:"omitempty,oneof=active inactive"`
	AdmissionDate string `json:"admission_date" validate:"required,date"`
}

// ToRecord maps the validated form onto a student row.
func (r StudentRequest) ToRecord() (models.Student, error) {
	admitted, err := ParseDate(r.AdmissionDate)
	if err != nil {
		return models.Student{}, appErrors.Invalid("admission_date", "date", "")
	}
	status := models.StudentStatus(r.Status)
	if status == "" {
		status = models.StudentActive
	}
	return models.Student{
		StudentCode:   strings.TrimSpace(r.StudentCode),
		Name:          strings.TrimSpace(r.Name),
		FatherName:    optional(r.FatherName),
		GuardianPhone: r.GuardianPhone,
		GuardianNID:   optional(r.GuardianNID),
		Department:    models.Department(r.Department),
		ClassName:     strings.TrimSpace(r.ClassName),
		Address:       optional(r.Address),
		Status:        status,
		AdmissionDate: admitted,
	}, nil
}

// StaffRequest is the staff registration / edit form.
type StaffRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Designation string `json:"designation" validate:"required,max=80"`
	Role        string `json:"role" validate:"omitempty,oneof=teacher non_teacher"`
	Phone       string `json:"phone" validate:"required,bdphone"`
	NID         string `json:"nid" validate:"omitempty,nid"`
	Salary      string `json:"salary" validate:"omitempty,money"`
	JoinDate    string `json:"join_date" validate:"required,date"`
	Active      *bool  `json:"active"`
}

// ToRecord maps the form onto a staff row. A blank role is prefilled from the designation.
func (r StaffRequest) ToRecord() (models.Staff, error) {
	joined, err := ParseDate(r.JoinDate)
	if err != nil {
		return models.Staff{}, appErrors.Invalid("join_date", "date", "")
	}
	var salary *models.Money
	if strings.TrimSpace(r.Salary) != "" {
		m, err := models.ParseMoney(r.Salary)
		if err != nil {
			return models.Staff{}, appErrors.Invalid("salary", "money", "")
		}
		salary = &m
	}
	role := models.StaffRole(r.Role)
	if role == "" {
		role = aggregate.SuggestStaffRole(r.Designation)
	}
	return models.Staff{
		Name:        strings.TrimSpace(r.Name),
		Designation: strings.TrimSpace(r.Designation),
		Role:        role,
		Phone:       r.Phone,
		NID:         optional(r.NID),
		Salary:      salary,
		JoinDate:    joined,
		Active:      boolOr(r.Active, true),
	}, nil
}

// AttendanceRequest marks one person for one day.
type AttendanceRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	UserType string `json:"user_type" validate:"required,oneof=student staff"`
	Date     string `json:"date" validate:"required,date"`
	Status   string `json:"status" validate:"required,oneof=present absent leave late"`
	Notes    string `json:"notes" validate:"omitempty,max=255"`
}

// ToRecord maps the form onto an attendance row.
func (r AttendanceRequest) ToRecord() (models.Attendance, error) {
	d, err := ParseDate(r.Date)
	if err != nil {
		return models.Attendance{}, appErrors.Invalid("date", "date", "")
	}
	return models.Attendance{
		UserID:   r.UserID,
		UserType: models.SubjectType(r.UserType),
		Date:     d,
		Status:   models.AttendanceStatus(r.Status),
		Notes:    optional(r.Notes),
	}, nil
}

// BulkAttendanceRequest marks a whole class or staff roster at once.
type BulkAttendanceRequest struct {
	Records []AttendanceRequest `json:"records" validate:"required,min=1,max=1000,dive"`
}

// ToRecords maps every item.
func (r BulkAttendanceRequest) ToRecords() ([]models.Attendance, error) {
	out := make([]models.Attendance, 0, len(r.Records))
	for _, item := range r.Records {
		rec, err := item.ToRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
