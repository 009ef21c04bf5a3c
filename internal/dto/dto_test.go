package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

const (
	studentUUID = "3f1c2d4e-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
	staffUUID   = "7a9b1c2d-3e4f-4a5b-9c6d-7e8f9a0b1c2d"
)

func violations(t *testing.T, err error) map[string]appErrors.Violation {
	t.Helper()
	require.Error(t, err)
	classified := appErrors.Classify(err)
	require.Equal(t, appErrors.KindValidation, classified.Kind)
	return classified.Violations()
}

func validStudent() StudentRequest {
	return StudentRequest{
		StudentCode:   "H-101",
		Name:          "Abdur Rahman",
		GuardianPhone: "01712345678",
		Department:    "hifz",
		ClassName:     "Hifz 2",
		AdmissionDate: "2024-01-15",
	}
}

func TestStudentRequestValidation(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.Struct(validStudent()))

	req := validStudent()
	req.GuardianPhone = "0171234567"
	req.GuardianNID = "12345"
	req.Department = "science"
	got := violations(t, v.Struct(req))
	assert.Equal(t, "bdphone", got["guardian_phone"].Rule)
	assert.Equal(t, "nid", got["guardian_nid"].Rule)
	assert.Equal(t, "oneof", got["department"].Rule)
	assert.NotContains(t, got, "name")
}

func TestStudentRequestToRecordConvertsBlanksToNil(t *testing.T) {
	req := validStudent()
	req.FatherName = "   "
	req.Address = "Mirpur, Dhaka"
	rec, err := req.ToRecord()
	require.NoError(t, err)
	assert.Nil(t, rec.FatherName)
	assert.Nil(t, rec.GuardianNID)
	require.NotNil(t, rec.Address)
	assert.Equal(t, "Mirpur, Dhaka", *rec.Address)
	assert.Equal(t, models.StudentActive, rec.Status)
	assert.Equal(t, models.DepartmentHifz, rec.Department)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), rec.AdmissionDate)
}

func TestStaffRequestToRecord(t *testing.T) {
	req := StaffRequest{Name: "Karim", Designation: "Senior Ustad", Phone: "01812345678", Salary: "15000.50", JoinDate: "2023-06-01"}
	require.NoError(t, NewValidator().Struct(req))
	rec, err := req.ToRecord()
	require.NoError(t, err)
	assert.Equal(t, models.StaffTeacher, rec.Role)
	require.NotNil(t, rec.Salary)
	assert.Equal(t, models.Money(1500050), *rec.Salary)
	assert.True(t, rec.Active)

	req = StaffRequest{Name: "Rahim", Designation: "Cook", Role: "teacher", Phone: "01812345678", JoinDate: "2023-06-01"}
	rec, err = req.ToRecord()
	require.NoError(t, err)
	assert.Equal(t, models.StaffTeacher, rec.Role, "explicit role wins over the designation")
	assert.Nil(t, rec.Salary)

	inactive := false
	req = StaffRequest{Name: "Rahim", Designation: "Cook", Phone: "01812345678", JoinDate: "2023-06-01", Active: &inactive}
	rec, err = req.ToRecord()
	require.NoError(t, err)
	assert.Equal(t, models.StaffNonTeacher, rec.Role)
	assert.False(t, rec.Active)
}

func TestMoneyTagRejectsMalformedAmounts(t *testing.T) {
	v := NewValidator()
	for _, amount := range []string{"12.345", "-5", "abc", "1,000"} {
		req := ExpenseRequest{Title: "Rice", Category: "bazar", Amount: amount, Date: "2024-03-01"}
		got := violations(t, v.Struct(req))
		assert.Equal(t, "money", got["amount"].Rule, amount)
	}
	ok := ExpenseRequest{Title: "Rice", Category: "bazar", Amount: "99.5", Date: "2024-03-01"}
	assert.NoError(t, v.Struct(ok))
}

func TestBulkAttendanceReportsNestedField(t *testing.T) {
	req := BulkAttendanceRequest{Records: []AttendanceRequest{
		{UserID: studentUUID, UserType: "student", Date: "2024-03-01", Status: "present"},
		{UserID: studentUUID, UserType: "student", Date: "2024-03-01", Status: "sick"},
	}}
	got := violations(t, NewValidator().Struct(req))
	assert.Equal(t, "oneof", got["records[1].status"].Rule)

	localized := appErrors.Classify(NewValidator().Struct(req)).Localize(appErrors.LangEnglish)
	assert.Equal(t, "Must be one of: present, absent, leave, late", localized.Fields["records[1].status"])
}

func TestBulkAttendanceToRecords(t *testing.T) {
	req := BulkAttendanceRequest{Records: []AttendanceRequest{
		{UserID: studentUUID, UserType: "student", Date: "2024-03-01", Status: "late", Notes: ""},
		{UserID: staffUUID, UserType: "staff", Date: "2024-03-01", Status: "leave", Notes: "Hajj"},
	}}
	recs, err := req.ToRecords()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, models.SubjectStudent, recs[0].UserType)
	assert.Nil(t, recs[0].Notes)
	assert.Equal(t, models.AttendanceLeave, recs[1].Status)
	require.NotNil(t, recs[1].Notes)
}

func TestTimetableEndMustFollowStart(t *testing.T) {
	req := TimetableRequest{Department: "kitab", ClassName: "Jamat 1", DayOfWeek: "sunday", Subject: "Nahw", StartTime: "09:00", EndTime: "08:45"}
	got := violations(t, NewValidator().Struct(req))
	assert.Equal(t, appErrors.Violation{Rule: "after", Param: "start_time"}, got["end_time"])

	req.EndTime = "09:45"
	require.NoError(t, NewValidator().Struct(req))
	rec := req.ToRecord()
	assert.Nil(t, rec.TeacherID)
	assert.Equal(t, models.Weekday("sunday"), rec.DayOfWeek)
}

func TestExamPassMarksMustNotExceedTotal(t *testing.T) {
	req := ExamRequest{Name: "Half yearly", ExamType: "half_yearly", Department: "kitab", ClassName: "Jamat 1", Subject: "Fiqh", TotalMarks: 100, PassMarks: 120, ExamDate: "2024-06-10"}
	got := violations(t, NewValidator().Struct(req))
	assert.Equal(t, "ltefield", got["pass_marks"].Rule)

	req.PassMarks = 33
	require.NoError(t, NewValidator().Struct(req))
}

func TestBulkExamResultToRecordsDerivesGrades(t *testing.T) {
	exam := models.Exam{ID: "exam-1", TotalMarks: 50}
	req := BulkExamResultRequest{Results: []ExamResultItem{
		{StudentID: studentUUID, MarksObtained: 40},
		{StudentID: staffUUID, MarksObtained: 50, IsAbsent: true},
	}}
	recs, err := req.ToRecords(exam)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A+", recs[0].Grade)
	assert.Equal(t, "exam-1", recs[0].ExamID)
	assert.Equal(t, "F", recs[1].Grade)
	assert.Zero(t, recs[1].MarksObtained)

	req.Results[0].MarksObtained = 50.5
	_, err = req.ToRecords(exam)
	got := violations(t, err)
	assert.Equal(t, appErrors.Violation{Rule: "lte", Param: "50"}, got["results[0].marks_obtained"])
}

func TestExpenseBatchToRecordsSharesBatch(t *testing.T) {
	req := ExpenseBatchRequest{
		BatchName: "Kawran bazar trip",
		Date:      "2024-03-05",
		Category:  "",
		Items: []ExpenseBatchItem{
			{Title: "Rice", Amount: "1200"},
			{Title: "Bulbs", Category: "maintenance", Amount: "150.75"},
		},
	}
	require.NoError(t, NewValidator().Struct(req))
	recs, err := req.ToRecords("batch-9")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		require.NotNil(t, r.BatchID)
		assert.Equal(t, "batch-9", *r.BatchID)
		assert.Equal(t, "Kawran bazar trip", *r.BatchName)
	}
	assert.Equal(t, models.ExpenseBazar, recs[0].Category)
	assert.Equal(t, models.ExpenseCategory("maintenance"), recs[1].Category)
	assert.Equal(t, models.Money(15075), recs[1].Amount)
}

func TestFeePaymentDefaults(t *testing.T) {
	now := time.Date(2024, 4, 9, 15, 30, 0, 0, time.UTC)
	req := FeePaymentRequest{StudentID: studentUUID, FeeStructureID: staffUUID, Amount: "500"}
	require.NoError(t, NewValidator().Struct(req))
	rec, err := req.ToRecord(now)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCash, rec.Method)
	assert.Equal(t, time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC), rec.PaymentDate)
	assert.Nil(t, rec.ReceiptNumber)
	assert.Equal(t, models.Taka(500), rec.Amount)
}

func TestSalaryPaymentDates(t *testing.T) {
	now := time.Date(2024, 4, 9, 10, 0, 0, 0, time.UTC)
	paid := SalaryPaymentRequest{StaffID: staffUUID, Month: 3, Year: 2024, Amount: "12000"}
	rec, err := paid.ToRecord(now)
	require.NoError(t, err)
	assert.Equal(t, models.SalaryPaid, rec.Status)
	require.NotNil(t, rec.PaymentDate)
	assert.Equal(t, 9, rec.PaymentDate.Day())

	unpaid := SalaryPaymentRequest{StaffID: staffUUID, Month: 3, Year: 2024, Amount: "12000", Status: "unpaid", PaymentDate: "2024-03-31"}
	rec, err = unpaid.ToRecord(now)
	require.NoError(t, err)
	assert.Nil(t, rec.PaymentDate)

	bad := SalaryPaymentRequest{StaffID: staffUUID, Month: 13, Year: 1999, Amount: "12000"}
	got := violations(t, NewValidator().Struct(bad))
	assert.Equal(t, "max", got["month"].Rule)
	assert.Equal(t, "gte", got["year"].Rule)
}

func TestNoticeDefaults(t *testing.T) {
	rec, err := NoticeRequest{Title: "Eid holiday", Content: "Closed for a week"}.ToRecord(time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.NoticeNormal, rec.Priority)
	assert.Equal(t, models.AudienceAll, rec.Audience)
	assert.True(t, rec.Published)
	assert.Equal(t, 1, rec.PublishDate.Day())
}

func TestAttendanceReportRange(t *testing.T) {
	q := AttendanceReportQuery{UserID: studentUUID, UserType: "student", From: "2024-03-01", To: "2024-03-31"}
	require.NoError(t, NewValidator().Struct(q))
	from, to, err := q.Range()
	require.NoError(t, err)
	assert.True(t, to.After(from))
}
