package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

const staffColumns = `id, name, designation, role, phone, nid, salary, join_date, active, created_by, created_at, updated_at`

var staffSorts = map[string]string{
	"name":       "name",
	"join_date":  "join_date",
	"salary":     "salary",
	"created_at": "created_at",
}

// StaffRepository persists staff members.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func staffConditions(filter models.StaffFilter) *conditions {
	c := &conditions{}
	if filter.Role != "" {
		c.add("role = $?", filter.Role)
	}
	if filter.Active != nil {
		c.add("active = $?", *filter.Active)
	}
	c.addSearch(filter.Search, "name", "designation", "phone")
	return c
}

// List returns one page of staff and the total match count.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	c := staffConditions(filter)
	query := "SELECT " + staffColumns + " FROM staff" + c.where() + orderBy(filter.ListFilter, staffSorts, "created_at") + limit(filter.ListFilter, true)
	staff := make([]models.Staff, 0)
	if err := r.db.SelectContext(ctx, &staff, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM staff"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}
	return staff, total, nil
}

// ListAll returns every matching staff member ordered by name.
func (r *StaffRepository) ListAll(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error) {
	c := staffConditions(filter)
	staff := make([]models.Staff, 0)
	if err := r.db.SelectContext(ctx, &staff, "SELECT "+staffColumns+" FROM staff"+c.where()+" ORDER BY name", c.args...); err != nil {
		return nil, fmt.Errorf("list all staff: %w", err)
	}
	return staff, nil
}

// FindByID fetches a staff member.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, "SELECT "+staffColumns+" FROM staff WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("find staff: %w", err)
	}
	return &staff, nil
}

// Create inserts a staff member.
func (r *StaffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now
	const query = `INSERT INTO staff (` + staffColumns + `)
        VALUES (:id, :name, :designation, :role, :phone, :nid, :salary, :join_date, :active, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, staff); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update modifies a staff member.
func (r *StaffRepository) Update(ctx context.Context, staff *models.Staff) error {
	staff.UpdatedAt = time.Now().UTC()
	const query = `UPDATE staff SET name = :name, designation = :designation, role = :role, phone = :phone, nid = :nid,
        salary = :salary, join_date = :join_date, active = :active, updated_at = :updated_at WHERE id = :id`
	return expectOne(r.db.NamedExecContext(ctx, query, staff))("update staff")
}

// Deactivate marks a staff member as no longer employed.
func (r *StaffRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE staff SET active = FALSE, updated_at = $2 WHERE id = $1`
	return expectOne(r.db.ExecContext(ctx, query, id, time.Now().UTC()))("deactivate staff")
}
