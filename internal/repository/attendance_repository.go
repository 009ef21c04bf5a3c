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

const attendanceColumns = `id, user_id, user_type, date, status, notes, created_by, created_at, updated_at`

const upsertAttendanceQuery = `INSERT INTO attendance (` + attendanceColumns + `)
        VALUES (:id, :user_id, :user_type, :date, :status, :notes, :created_by, :created_at, :updated_at)
        ON CONFLICT (user_id, user_type, date) DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes,
        created_by = EXCLUDED.created_by, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at`

var attendanceSorts = map[string]string{
	"date":       "date",
	"status":     "status",
	"created_at": "created_at",
}

// AttendanceRepository persists daily attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func attendanceConditions(filter models.AttendanceFilter) *conditions {
	c := &conditions{}
	if filter.UserID != "" {
		c.add("user_id = $?", filter.UserID)
	}
	if filter.UserType != "" {
		c.add("user_type = $?", filter.UserType)
	}
	if filter.Status != "" {
		c.add("status = $?", filter.Status)
	}
	if filter.DateFrom != nil {
		c.add("date >= $?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		c.add("date <= $?", *filter.DateTo)
	}
	return c
}

// List returns one page of attendance rows.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	c := attendanceConditions(filter)
	query := "SELECT " + attendanceColumns + " FROM attendance" + c.where() + orderBy(filter.ListFilter, attendanceSorts, "date") + limit(filter.ListFilter, true)
	rows := make([]models.Attendance, 0)
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM attendance"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// ListAll returns every matching row ordered by date, for reports.
func (r *AttendanceRepository) ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	c := attendanceConditions(filter)
	rows := make([]models.Attendance, 0)
	if err := r.db.SelectContext(ctx, &rows, "SELECT "+attendanceColumns+" FROM attendance"+c.where()+" ORDER BY date, user_id", c.args...); err != nil {
		return nil, fmt.Errorf("list all attendance: %w", err)
	}
	return rows, nil
}

func prepareAttendance(a *models.Attendance, now time.Time) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
}

func upsertAttendance(ctx context.Context, ext sqlx.ExtContext, a *models.Attendance) error {
	query, args, err := ext.BindNamed(upsertAttendanceQuery, a)
	if err != nil {
		return fmt.Errorf("bind attendance: %w", err)
	}
	row := ext.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// Upsert writes one mark; re-marking the same person and date overwrites.
func (r *AttendanceRepository) Upsert(ctx context.Context, a *models.Attendance) error {
	prepareAttendance(a, time.Now().UTC())
	return upsertAttendance(ctx, r.db, a)
}

// BulkUpsert writes all marks in one transaction; any failure rolls every row back.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.Attendance) error {
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range records {
			prepareAttendance(&records[i], now)
			if err := upsertAttendance(ctx, tx, &records[i]); err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
		}
		return nil
	})
}

// Delete removes an attendance row.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id))("delete attendance")
}
