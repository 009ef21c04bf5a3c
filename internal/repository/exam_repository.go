package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
	"github.com/noah-isme/madrasah-admin-api/pkg/database"
)

const examColumns = `id, name, exam_type, department, class_name, subject, total_marks, pass_marks, exam_date, created_by, created_at, updated_at`

const upsertResultQuery = `INSERT INTO exam_results (id, exam_id, student_id, marks_obtained, grade, is_absent, remarks, created_by, created_at, updated_at)
        VALUES (:id, :exam_id, :student_id, :marks_obtained, :grade, :is_absent, :remarks, :created_by, :created_at, :updated_at)
        ON CONFLICT (exam_id, student_id) DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, grade = EXCLUDED.grade,
        is_absent = EXCLUDED.is_absent, remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at`

var examSorts = map[string]string{
	"exam_date":  "exam_date",
	"name":       "name",
	"created_at": "created_at",
}

// ExamRepository persists exams and their result sheets.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns one page of exams.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	c := &conditions{}
	if filter.Department != "" {
		c.add("department = $?", filter.Department)
	}
	if filter.ClassName != "" {
		c.add("class_name = $?", filter.ClassName)
	}
	if filter.ExamType != "" {
		c.add("exam_type = $?", filter.ExamType)
	}
	c.addSearch(filter.Search, "name", "subject")
	query := "SELECT " + examColumns + " FROM exams" + c.where() + orderBy(filter.ListFilter, examSorts, "exam_date") + limit(filter.ListFilter, true)
	rows := make([]models.Exam, 0)
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM exams"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}
	return rows, total, nil
}

// FindByID fetches one exam.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	var e models.Exam
	if err := r.db.GetContext(ctx, &e, "SELECT "+examColumns+" FROM exams WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("find exam: %w", err)
	}
	return &e, nil
}

// Create inserts an exam.
func (r *ExamRepository) Create(ctx context.Context, e *models.Exam) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	const query = `INSERT INTO exams (` + examColumns + `)
        VALUES (:id, :name, :exam_type, :department, :class_name, :subject, :total_marks, :pass_marks, :exam_date, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update modifies an exam.
func (r *ExamRepository) Update(ctx context.Context, e *models.Exam) error {
	e.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET name = :name, exam_type = :exam_type, department = :department, class_name = :class_name,
        subject = :subject, total_marks = :total_marks, pass_marks = :pass_marks, exam_date = :exam_date, updated_at = :updated_at WHERE id = :id`
	return expectOne(r.db.NamedExecContext(ctx, query, e))("update exam")
}

// Delete removes an exam together with its results.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM exam_results WHERE exam_id = $1`, id); err != nil {
			return fmt.Errorf("delete exam results: %w", err)
		}
		return expectOne(tx.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id))("delete exam")
	})
}

// ListResults returns the result sheet of an exam ordered by student name.
func (r *ExamRepository) ListResults(ctx context.Context, examID string) ([]models.ExamResult, error) {
	const query = `SELECT r.id, r.exam_id, r.student_id, r.marks_obtained, r.grade, r.is_absent, r.remarks, r.created_by,
        r.created_at, r.updated_at, s.name AS student_name
        FROM exam_results r
        LEFT JOIN students s ON s.id = r.student_id
        WHERE r.exam_id = $1
        ORDER BY s.name`
	rows := make([]models.ExamResult, 0)
	if err := r.db.SelectContext(ctx, &rows, query, examID); err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return rows, nil
}

// UpsertResults writes a result sheet in one transaction. Rows for an
// (exam, student) pair that already exist are updated in place.
func (r *ExamRepository) UpsertResults(ctx context.Context, results []models.ExamResult) error {
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range results {
			res := &results[i]
			if res.ID == "" {
				res.ID = uuid.NewString()
			}
			res.CreatedAt = now
			res.UpdatedAt = now
			query, args, err := tx.BindNamed(upsertResultQuery, res)
			if err != nil {
				return fmt.Errorf("bind result %d: %w", i, err)
			}
			if err := tx.QueryRowxContext(ctx, query, args...).Scan(&res.ID, &res.CreatedAt); err != nil {
				return fmt.Errorf("upsert result %d: %w", i, err)
			}
		}
		return nil
	})
}

// DeleteResult removes one result row.
func (r *ExamRepository) DeleteResult(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM exam_results WHERE id = $1`, id))("delete exam result")
}
