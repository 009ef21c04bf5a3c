package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryListFiltersAndPages(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_code", "name", "father_name", "guardian_phone", "guardian_nid", "department", "class_name", "address", "status", "admission_date", "created_by", "created_at", "updated_at"}).
		AddRow("s1", "H-001", "Abdullah", nil, "01712345678", nil, "hifz", "Class 1", nil, "active", now, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE department = $1 AND (LOWER(name) LIKE $2 OR LOWER(student_code) LIKE $2 OR LOWER(guardian_phone) LIKE $2) ORDER BY name ASC LIMIT 10 OFFSET 10")).
		WithArgs(models.DepartmentHifz, "%abd%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE department = $1")).
		WithArgs(models.DepartmentHifz, "%abd%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	filter := models.StudentFilter{
		ListFilter: models.ListFilter{Search: " Abd ", Page: 2, PageSize: 10, SortBy: "name", SortOrder: "asc"},
		Department: models.DepartmentHifz,
	}
	students, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "H-001", students[0].StudentCode)
	assert.Nil(t, students[0].FatherName)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUnknownSortFallsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	students, total, err := repo.List(context.Background(), models.StudentFilter{ListFilter: models.ListFilter{SortBy: "password; DROP TABLE"}})
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NotNil(t, students)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateUnknownIDIsNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Student{ID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCountByDepartment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT department, COUNT(*) AS count FROM students WHERE status = $1 GROUP BY department")).
		WithArgs(models.StudentActive).
		WillReturnRows(sqlmock.NewRows([]string{"department", "count"}).AddRow("hifz", 4).AddRow("kitab", 2))

	counts, err := repo.CountByDepartment(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.DepartmentHifz, counts[0].Department)
	assert.Equal(t, 4, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceBulkUpsertCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	created := day.Add(-time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO attendance .* ON CONFLICT \\(user_id, user_type, date\\) DO UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("existing", created))
	mock.ExpectQuery("INSERT INTO attendance").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("new", day))
	mock.ExpectCommit()

	records := []models.Attendance{
		{UserID: "s1", UserType: models.SubjectStudent, Date: day, Status: models.AttendancePresent},
		{UserID: "s2", UserType: models.SubjectStudent, Date: day, Status: models.AttendanceLate},
	}
	require.NoError(t, repo.BulkUpsert(context.Background(), records))
	assert.Equal(t, "existing", records[0].ID)
	assert.Equal(t, created, records[0].CreatedAt)
	assert.Equal(t, "new", records[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceBulkUpsertRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO attendance").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("a1", day))
	mock.ExpectQuery("INSERT INTO attendance").
		WillReturnError(errors.New("violates foreign key"))
	mock.ExpectRollback()

	records := []models.Attendance{
		{UserID: "s1", UserType: models.SubjectStudent, Date: day, Status: models.AttendancePresent},
		{UserID: "ghost", UserType: models.SubjectStudent, Date: day, Status: models.AttendanceAbsent},
	}
	err := repo.BulkUpsert(context.Background(), records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceListDateRange(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date, user_id")).
		WithArgs("s1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "user_type", "date", "status"}).
			AddRow("a1", "s1", "student", from, "present"))

	rows, err := repo.ListAll(context.Background(), models.AttendanceFilter{UserID: "s1", DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.AttendancePresent, rows[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseCreateBatchRunsInOneTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExpenseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO expenses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO expenses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	batch := "b1"
	items := []models.Expense{
		{Title: "Rice", Category: models.ExpenseBazar, Amount: models.Taka(500), BatchID: &batch},
		{Title: "Oil", Category: models.ExpenseBazar, Amount: models.Taka(200), BatchID: &batch},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), items))
	assert.NotEmpty(t, items[0].ID)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseDeleteBatchOnlyTouchesBatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExpenseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM expenses WHERE batch_id = $1")).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseListScansMoney(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExpenseRepository(db)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM expenses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "category", "amount", "date"}).
			AddRow("e1", "Rice", "bazar", "1250.50", day))

	rows, err := repo.ListAll(context.Background(), models.ExpenseFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.Money(125050), rows[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalaryUpsertReturnsStoredRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSalaryRepository(db)

	created := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO salary_payments .* ON CONFLICT \\(staff_id, month, year\\)").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("sal-1", created))

	p := &models.SalaryPayment{StaffID: "st1", Month: 1, Year: 2024, Amount: models.Taka(12000), Status: models.SalaryPaid}
	require.NoError(t, repo.Upsert(context.Background(), p))
	assert.Equal(t, "sal-1", p.ID)
	assert.Equal(t, created, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalaryCountUnpaid(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSalaryRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM staff s WHERE s.active = TRUE AND NOT EXISTS").
		WithArgs(3, 2024, models.SalaryPaid).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountUnpaid(context.Background(), 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamUpsertResultsRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO exam_results .* ON CONFLICT \\(exam_id, student_id\\)").
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.UpsertResults(context.Background(), []models.ExamResult{{ExamID: "x1", StudentID: "s1", MarksObtained: 80, Grade: "A+"}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamDeleteRemovesResultsFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_results WHERE exam_id = $1")).WithArgs("x1").WillReturnResult(sqlmock.NewResult(0, 30))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exams WHERE id = $1")).WithArgs("x1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "x1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableListOrdersByWeekday(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery("LEFT JOIN staff s ON s.id = t.teacher_id WHERE t.class_name = \\$1 ORDER BY CASE t.day_of_week WHEN 'saturday' THEN 0").
		WithArgs("Class 2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "class_name", "day_of_week", "start_time", "end_time", "teacher_name"}).
			AddRow("t1", "Class 2", "saturday", "08:00", "08:45", "Ustadh Karim"))

	rows, err := repo.List(context.Background(), models.TimetableFilter{ClassName: "Class 2"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].TeacherName)
	assert.Equal(t, "Ustadh Karim", *rows[0].TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByEmailJoinsRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "role", "active", "last_login", "created_at", "updated_at"}).
		AddRow("u1", "admin@madrasah.test", "hash", "Admin", "admin", true, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN user_roles ur ON ur.user_id = u.id WHERE LOWER(u.email) = LOWER($1)")).
		WithArgs("Admin@Madrasah.test").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "Admin@Madrasah.test")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Nil(t, user.LastLogin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateWritesRoleInSameTransaction(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_roles (user_id, role) VALUES ($1, $2)")).
		WithArgs(sqlmock.AnyArg(), models.RoleUser).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user := &models.User{Email: "new@madrasah.test", PasswordHash: "hash", FullName: "New", Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateRoleUnknownUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs("ghost", models.RoleTeacher).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateRole(context.Background(), "ghost", models.RoleTeacher)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenLookupByHash(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash = $1")).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at", "revoked_at", "ip_address", "user_agent"}).
			AddRow("rt1", "u1", "abc", exp, time.Now(), nil, "127.0.0.1", "curl"))

	token, err := repo.FindRefreshToken(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, token.Active(time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectExec("INSERT INTO activity_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.ActivityLog{Action: "POST", Resource: "students", Path: "/api/v1/students", Status: 201}
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
