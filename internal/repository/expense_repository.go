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

const expenseColumns = `id, title, category, amount, date, batch_id, batch_name, notes, created_by, created_at, updated_at`

const insertExpenseQuery = `INSERT INTO expenses (` + expenseColumns + `)
        VALUES (:id, :title, :category, :amount, :date, :batch_id, :batch_name, :notes, :created_by, :created_at, :updated_at)`

var expenseSorts = map[string]string{
	"date":       "date",
	"amount":     "amount",
	"title":      "title",
	"created_at": "created_at",
}

// ExpenseRepository persists expense lines and shopping-trip batches.
type ExpenseRepository struct {
	db *sqlx.DB
}

// NewExpenseRepository constructs an ExpenseRepository.
func NewExpenseRepository(db *sqlx.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func expenseConditions(filter models.ExpenseFilter) *conditions {
	c := &conditions{}
	if filter.Category != "" {
		c.add("category = $?", filter.Category)
	}
	if filter.BatchID != "" {
		c.add("batch_id = $?", filter.BatchID)
	}
	if filter.DateFrom != nil {
		c.add("date >= $?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		c.add("date <= $?", *filter.DateTo)
	}
	c.addSearch(filter.Search, "title", "batch_name")
	return c
}

// List returns one page of expenses.
func (r *ExpenseRepository) List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, int, error) {
	c := expenseConditions(filter)
	query := "SELECT " + expenseColumns + " FROM expenses" + c.where() + orderBy(filter.ListFilter, expenseSorts, "date") + limit(filter.ListFilter, true)
	rows := make([]models.Expense, 0)
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM expenses"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}
	return rows, total, nil
}

// ListAll returns every matching expense, newest first.
func (r *ExpenseRepository) ListAll(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error) {
	c := expenseConditions(filter)
	rows := make([]models.Expense, 0)
	if err := r.db.SelectContext(ctx, &rows, "SELECT "+expenseColumns+" FROM expenses"+c.where()+" ORDER BY date DESC, created_at DESC", c.args...); err != nil {
		return nil, fmt.Errorf("list all expenses: %w", err)
	}
	return rows, nil
}

// FindByID fetches one expense.
func (r *ExpenseRepository) FindByID(ctx context.Context, id string) (*models.Expense, error) {
	var e models.Expense
	if err := r.db.GetContext(ctx, &e, "SELECT "+expenseColumns+" FROM expenses WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return &e, nil
}

func prepareExpense(e *models.Expense, now time.Time) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
}

// Create inserts one expense.
func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	prepareExpense(e, time.Now().UTC())
	if _, err := r.db.NamedExecContext(ctx, insertExpenseQuery, e); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}
	return nil
}

// CreateBatch inserts every line of a shopping trip in one transaction.
func (r *ExpenseRepository) CreateBatch(ctx context.Context, items []models.Expense) error {
	now := time.Now().UTC()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range items {
			prepareExpense(&items[i], now)
			if _, err := tx.NamedExecContext(ctx, insertExpenseQuery, &items[i]); err != nil {
				return fmt.Errorf("create batch item %d: %w", i, err)
			}
		}
		return nil
	})
}

// Update modifies one expense. Batch membership is not editable.
func (r *ExpenseRepository) Update(ctx context.Context, e *models.Expense) error {
	e.UpdatedAt = time.Now().UTC()
	const query = `UPDATE expenses SET title = :title, category = :category, amount = :amount, date = :date, notes = :notes,
        updated_at = :updated_at WHERE id = :id`
	return expectOne(r.db.NamedExecContext(ctx, query, e))("update expense")
}

// Delete removes one expense.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id))("delete expense")
}

// DeleteBatch removes exactly the rows of one batch and reports how many went.
func (r *ExpenseRepository) DeleteBatch(ctx context.Context, batchID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE batch_id = $1`, batchID)
	if err != nil {
		return 0, fmt.Errorf("delete expense batch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expense batch: %w", err)
	}
	return n, nil
}
