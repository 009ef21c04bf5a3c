package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

const feeStructureColumns = `id, fee_type, amount, frequency, department, class_name, active, created_by, created_at, updated_at`

const feePaymentSelect = `SELECT p.id, p.student_id, p.fee_structure_id, p.amount, p.payment_date, p.method, p.month, p.year,
        p.receipt_number, p.notes, p.created_by, p.created_at, s.name AS student_name, f.fee_type AS fee_type
        FROM fee_payments p
        LEFT JOIN students s ON s.id = p.student_id
        LEFT JOIN fee_structures f ON f.id = p.fee_structure_id`

var feePaymentSorts = map[string]string{
	"payment_date": "p.payment_date",
	"amount":       "p.amount",
	"created_at":   "p.created_at",
}

// FeeRepository persists fee structures and fee payments.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// ListStructures returns fee structures, active first.
func (r *FeeRepository) ListStructures(ctx context.Context, filter models.FeeStructureFilter) ([]models.FeeStructure, error) {
	c := &conditions{}
	if filter.Department != "" {
		c.add("(department = $? OR department IS NULL)", filter.Department)
	}
	if filter.Active != nil {
		c.add("active = $?", *filter.Active)
	}
	c.addSearch(filter.Search, "fee_type")
	rows := make([]models.FeeStructure, 0)
	query := "SELECT " + feeStructureColumns + " FROM fee_structures" + c.where() + " ORDER BY active DESC, fee_type"
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, fmt.Errorf("list fee structures: %w", err)
	}
	return rows, nil
}

// FindStructure fetches one fee structure.
func (r *FeeRepository) FindStructure(ctx context.Context, id string) (*models.FeeStructure, error) {
	var f models.FeeStructure
	if err := r.db.GetContext(ctx, &f, "SELECT "+feeStructureColumns+" FROM fee_structures WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("find fee structure: %w", err)
	}
	return &f, nil
}

// CreateStructure inserts a fee structure.
func (r *FeeRepository) CreateStructure(ctx context.Context, f *models.FeeStructure) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	const query = `INSERT INTO fee_structures (` + feeStructureColumns + `)
        VALUES (:id, :fee_type, :amount, :frequency, :department, :class_name, :active, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		return fmt.Errorf("create fee structure: %w", err)
	}
	return nil
}

// UpdateStructure modifies a fee structure.
func (r *FeeRepository) UpdateStructure(ctx context.Context, f *models.FeeStructure) error {
	f.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fee_structures SET fee_type = :fee_type, amount = :amount, frequency = :frequency, department = :department,
        class_name = :class_name, active = :active, updated_at = :updated_at WHERE id = :id`
	return expectOne(r.db.NamedExecContext(ctx, query, f))("update fee structure")
}

// DeleteStructure removes a fee structure; payments referencing it make this fail.
func (r *FeeRepository) DeleteStructure(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM fee_structures WHERE id = $1`, id))("delete fee structure")
}

func feePaymentConditions(filter models.FeePaymentFilter) *conditions {
	c := &conditions{}
	if filter.StudentID != "" {
		c.add("p.student_id = $?", filter.StudentID)
	}
	if filter.Month != nil {
		c.add("p.month = $?", *filter.Month)
	}
	if filter.Year != nil {
		c.add("p.year = $?", *filter.Year)
	}
	if filter.DateFrom != nil {
		c.add("p.payment_date >= $?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		c.add("p.payment_date <= $?", *filter.DateTo)
	}
	c.addSearch(filter.Search, "s.name", "p.receipt_number")
	return c
}

// ListPayments returns one page of fee payments with student and fee names.
func (r *FeeRepository) ListPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, int, error) {
	c := feePaymentConditions(filter)
	query := feePaymentSelect + c.where() + orderBy(filter.ListFilter, feePaymentSorts, "payment_date") + limit(filter.ListFilter, true)
	rows := make([]models.FeePayment, 0)
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list fee payments: %w", err)
	}
	var total int
	countQuery := "SELECT COUNT(*) FROM fee_payments p LEFT JOIN students s ON s.id = p.student_id" + c.where()
	if err := r.db.GetContext(ctx, &total, countQuery, c.args...); err != nil {
		return nil, 0, fmt.Errorf("count fee payments: %w", err)
	}
	return rows, total, nil
}

// ListAllPayments returns every matching payment, newest first.
func (r *FeeRepository) ListAllPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, error) {
	c := feePaymentConditions(filter)
	rows := make([]models.FeePayment, 0)
	if err := r.db.SelectContext(ctx, &rows, feePaymentSelect+c.where()+" ORDER BY p.payment_date DESC, p.created_at DESC", c.args...); err != nil {
		return nil, fmt.Errorf("list all fee payments: %w", err)
	}
	return rows, nil
}

// FindPayment fetches one payment.
func (r *FeeRepository) FindPayment(ctx context.Context, id string) (*models.FeePayment, error) {
	var p models.FeePayment
	if err := r.db.GetContext(ctx, &p, feePaymentSelect+" WHERE p.id = $1", id); err != nil {
		return nil, fmt.Errorf("find fee payment: %w", err)
	}
	return &p, nil
}

// CreatePayment inserts a payment.
func (r *FeeRepository) CreatePayment(ctx context.Context, p *models.FeePayment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO fee_payments (id, student_id, fee_structure_id, amount, payment_date, method, month, year, receipt_number, notes, created_by, created_at)
        VALUES (:id, :student_id, :fee_structure_id, :amount, :payment_date, :method, :month, :year, :receipt_number, :notes, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create fee payment: %w", err)
	}
	return nil
}

// DeletePayment removes a payment.
func (r *FeeRepository) DeletePayment(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM fee_payments WHERE id = $1`, id))("delete fee payment")
}
