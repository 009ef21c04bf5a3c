package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

const salarySelect = `SELECT p.id, p.staff_id, p.month, p.year, p.amount, p.payment_date, p.method, p.status, p.notes,
        p.created_by, p.created_at, p.updated_at, s.name AS staff_name
        FROM salary_payments p
        LEFT JOIN staff s ON s.id = p.staff_id`

const upsertSalaryQuery = `INSERT INTO salary_payments (id, staff_id, month, year, amount, payment_date, method, status, notes, created_by, created_at, updated_at)
        VALUES (:id, :staff_id, :month, :year, :amount, :payment_date, :method, :status, :notes, :created_by, :created_at, :updated_at)
        ON CONFLICT (staff_id, month, year) DO UPDATE SET amount = EXCLUDED.amount, payment_date = EXCLUDED.payment_date,
        method = EXCLUDED.method, status = EXCLUDED.status, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
        RETURNING id, created_at`

var salarySorts = map[string]string{
	"period":     "p.year DESC, p.month",
	"amount":     "p.amount",
	"created_at": "p.created_at",
}

// SalaryRepository persists salary payments, one row per staff member and month.
type SalaryRepository struct {
	db *sqlx.DB
}

// NewSalaryRepository constructs a SalaryRepository.
func NewSalaryRepository(db *sqlx.DB) *SalaryRepository {
	return &SalaryRepository{db: db}
}

func salaryConditions(filter models.SalaryFilter) *conditions {
	c := &conditions{}
	if filter.StaffID != "" {
		c.add("p.staff_id = $?", filter.StaffID)
	}
	if filter.Month != nil {
		c.add("p.month = $?", *filter.Month)
	}
	if filter.Year != nil {
		c.add("p.year = $?", *filter.Year)
	}
	if filter.Status != "" {
		c.add("p.status = $?", filter.Status)
	}
	c.addSearch(filter.Search, "s.name")
	return c
}

// List returns one page of salary rows.
func (r *SalaryRepository) List(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryPayment, int, error) {
	c := salaryConditions(filter)
	query := salarySelect + c.where() + orderBy(filter.ListFilter, salarySorts, "period") + limit(filter.ListFilter, true)
	rows := make([]models.SalaryPayment, 0)
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list salaries: %w", err)
	}
	var total int
	countQuery := "SELECT COUNT(*) FROM salary_payments p LEFT JOIN staff s ON s.id = p.staff_id" + c.where()
	if err := r.db.GetContext(ctx, &total, countQuery, c.args...); err != nil {
		return nil, 0, fmt.Errorf("count salaries: %w", err)
	}
	return rows, total, nil
}

// ListAll returns every matching salary row.
func (r *SalaryRepository) ListAll(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryPayment, error) {
	c := salaryConditions(filter)
	rows := make([]models.SalaryPayment, 0)
	if err := r.db.SelectContext(ctx, &rows, salarySelect+c.where()+" ORDER BY p.year DESC, p.month DESC, s.name", c.args...); err != nil {
		return nil, fmt.Errorf("list all salaries: %w", err)
	}
	return rows, nil
}

// FindByID fetches one salary row.
func (r *SalaryRepository) FindByID(ctx context.Context, id string) (*models.SalaryPayment, error) {
	var p models.SalaryPayment
	if err := r.db.GetContext(ctx, &p, salarySelect+" WHERE p.id = $1", id); err != nil {
		return nil, fmt.Errorf("find salary: %w", err)
	}
	return &p, nil
}

// Upsert records the salary of a staff member for a month; a second write for
// the same month replaces the first.
func (r *SalaryRepository) Upsert(ctx context.Context, p *models.SalaryPayment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	query, args, err := r.db.BindNamed(upsertSalaryQuery, p)
	if err != nil {
		return fmt.Errorf("bind salary: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("upsert salary: %w", err)
	}
	return nil
}

// Update modifies a salary row by id.
func (r *SalaryRepository) Update(ctx context.Context, p *models.SalaryPayment) error {
	p.UpdatedAt = time.Now().UTC()
	const query = `UPDATE salary_payments SET month = :month, year = :year, amount = :amount, payment_date = :payment_date,
        method = :method, status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	return expectOne(r.db.NamedExecContext(ctx, query, p))("update salary")
}

// Delete removes a salary row.
func (r *SalaryRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM salary_payments WHERE id = $1`, id))("delete salary")
}

// CountUnpaid counts active staff without a paid salary for the month.
func (r *SalaryRepository) CountUnpaid(ctx context.Context, month, year int) (int, error) {
	const query = `SELECT COUNT(*) FROM staff s WHERE s.active = TRUE AND NOT EXISTS (
        SELECT 1 FROM salary_payments p WHERE p.staff_id = s.id AND p.month = $1 AND p.year = $2 AND p.status = $3)`
	var n int
	if err := r.db.GetContext(ctx, &n, query, month, year, models.SalaryPaid); err != nil {
		return 0, fmt.Errorf("count unpaid salaries: %w", err)
	}
	return n, nil
}
