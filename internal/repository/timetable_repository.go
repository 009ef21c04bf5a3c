package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

const timetableSelect = `SELECT t.id, t.department, t.class_name, t.day_of_week, t.subject, t.teacher_id, t.start_time, t.end_time,
        t.room, t.created_by, t.created_at, t.updated_at, s.name AS teacher_name
        FROM timetables t
        LEFT JOIN staff s ON s.id = t.teacher_id`

// dayOrder sorts the week from Saturday.
const dayOrder = `CASE t.day_of_week WHEN 'saturday' THEN 0 WHEN 'sunday' THEN 1 WHEN 'monday' THEN 2
        WHEN 'tuesday' THEN 3 WHEN 'wednesday' THEN 4 WHEN 'thursday' THEN 5 ELSE 6 END`

// TimetableRepository persists timetable periods.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// List returns the periods matching filter in weekly order.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, error) {
	c := &conditions{}
	if filter.Department != "" {
		c.add("t.department = $?", filter.Department)
	}
	if filter.ClassName != "" {
		c.add("t.class_name = $?", filter.ClassName)
	}
	if filter.DayOfWeek != "" {
		c.add("t.day_of_week = $?", filter.DayOfWeek)
	}
	if filter.TeacherID != "" {
		c.add("t.teacher_id = $?", filter.TeacherID)
	}
	rows := make([]models.TimetableEntry, 0)
	query := timetableSelect + c.where() + " ORDER BY " + dayOrder + ", t.start_time, t.class_name"
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, fmt.Errorf("list timetable: %w", err)
	}
	return rows, nil
}

// FindByID fetches one period.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.TimetableEntry, error) {
	var t models.TimetableEntry
	if err := r.db.GetContext(ctx, &t, timetableSelect+" WHERE t.id = $1", id); err != nil {
		return nil, fmt.Errorf("find timetable entry: %w", err)
	}
	return &t, nil
}

// Create inserts a period.
func (r *TimetableRepository) Create(ctx context.Context, t *models.TimetableEntry) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	const query = `INSERT INTO timetables (id, department, class_name, day_of_week, subject, teacher_id, start_time, end_time, room, created_by, created_at, updated_at)
        VALUES (:id, :department, :class_name, :day_of_week, :subject, :teacher_id, :start_time, :end_time, :room, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("create timetable entry: %w", err)
	}
	return nil
}

// Update modifies a period.
func (r *TimetableRepository) Update(ctx context.Context, t *models.TimetableEntry) error {
	t.UpdatedAt = time.Now().UTC()
	const query = `UPDATE timetables SET department = :department, class_name = :class_name, day_of_week = :day_of_week, subject = :subject,
        teacher_id = :teacher_id, start_time = :start_time, end_time = :end_time, room = :room, updated_at = :updated_at WHERE id = :id`
	return expectOne(r.db.NamedExecContext(ctx, query, t))("update timetable entry")
}

// Delete removes a period.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id))("delete timetable entry")
}
