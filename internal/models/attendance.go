package models

import "time"

// AttendanceStatus is the mark recorded for one person on one day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLeave   AttendanceStatus = "leave"
	AttendanceLate    AttendanceStatus = "late"
)

// SubjectType says whether an attendance row belongs to a student or to staff.
type SubjectType string

const (
	SubjectStudent SubjectType = "student"
	SubjectStaff   SubjectType = "staff"
)

// Attendance is unique per (user_id, user_type, date); writes upsert.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	UserType  SubjectType      `db:"user_type" json:"user_type"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Notes     *string          `db:"notes" json:"notes"`
	CreatedBy *string          `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceKey identifies the unique slot an attendance row occupies.
type AttendanceKey struct {
	UserID   string
	UserType SubjectType
	Date     string
}

// Key returns the uniqueness key of the row.
func (a Attendance) Key() AttendanceKey {
	return AttendanceKey{UserID: a.UserID, UserType: a.UserType, Date: a.Date.Format("2006-01-02")}
}

// AttendanceFilter narrows attendance listings.
type AttendanceFilter struct {
	ListFilter
	UserID   string
	UserType SubjectType
	Status   AttendanceStatus
	DateFrom *time.Time
	DateTo   *time.Time
}
