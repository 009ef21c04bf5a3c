package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

const studentColumns = `id, student_code, name, father_name, guardian_phone, guardian_nid, department, class_name, address, status, admission_date, created_by, created_at, updated_at`

var studentSorts = map[string]string{
	"name":           "name",
	"student_code":   "student_code",
	"admission_date": "admission_date",
	"class_name":     "class_name",
	"created_at":     "created_at",
}

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func studentConditions(filter models.StudentFilter) *conditions {
	c := &conditions{}
	if filter.Department != "" {
		c.add("department = $?", filter.Department)
	}
	if filter.ClassName != "" {
		c.add("class_name = $?", filter.ClassName)
	}
	if filter.Status != "" {
		c.add("status = $?", filter.Status)
	}
	c.addSearch(filter.Search, "name", "student_code", "guardian_phone")
	return c
}

// List returns one page of students and the total match count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	c := studentConditions(filter)
	query := "SELECT " + studentColumns + " FROM students" + c.where() + orderBy(filter.ListFilter, studentSorts, "created_at") + limit(filter.ListFilter, true)
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll returns every matching student, for exports and reports.
func (r *StudentRepository) ListAll(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	c := studentConditions(filter)
	query := "SELECT " + studentColumns + " FROM students" + c.where() + " ORDER BY department, class_name, name"
	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query, c.args...); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT "+studentColumns+" FROM students WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (` + studentColumns + `)
        VALUES (:id, :student_code, :name, :father_name, :guardian_phone, :guardian_nid, :department, :class_name, :address, :status, :admission_date, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET student_code = :student_code, name = :name, father_name = :father_name, guardian_phone = :guardian_phone,
        guardian_nid = :guardian_nid, department = :department, class_name = :class_name, address = :address, status = :status,
        admission_date = :admission_date, updated_at = :updated_at WHERE id = :id`
	return expectOne(r.db.NamedExecContext(ctx, query, student))("update student")
}

// SetStatus soft-deletes or reactivates a student.
func (r *StudentRepository) SetStatus(ctx context.Context, id string, status models.StudentStatus) error {
	const query = `UPDATE students SET status = $2, updated_at = $3 WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, query, id, status, time.Now().UTC()))("set student status")
}

// CountByDepartment groups active students by department.
func (r *StudentRepository) CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error) {
	const query = `SELECT department, COUNT(*) AS count FROM students WHERE status = $1 GROUP BY department ORDER BY department`
	counts := make([]models.DepartmentCount, 0)
	if err := r.db.SelectContext(ctx, &counts, query, models.StudentActive); err != nil {
		return nil, fmt.Errorf("count students by department: %w", err)
	}
	return counts, nil
}
