package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

const transactionColumns = `id, type, category, amount, date, description, created_by, created_at, updated_at`

var transactionSorts = map[string]string{
	"date":       "date",
	"amount":     "amount",
	"category":   "category",
	"created_at": "created_at",
}

// TransactionRepository persists general ledger entries.
type TransactionRepository struct {
	db *sqlx.DB
}

// NewTransactionRepository constructs a TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func transactionConditions(filter models.TransactionFilter) *conditions {
	c := &conditions{}
	if filter.Type != "" {
		c.add("type = $?", filter.Type)
	}
	if filter.Category != "" {
		c.add("category = $?", filter.Category)
	}
	if filter.DateFrom != nil {
		c.add("date >= $?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		c.add("date <= $?", *filter.DateTo)
	}
	c.addSearch(filter.Search, "category", "description")
	return c
}

// List returns one page of ledger entries.
func (r *TransactionRepository) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int, error) {
	c := transactionConditions(filter)
	query := "SELECT " + transactionColumns + " FROM transactions" + c.where() + orderBy(filter.ListFilter, transactionSorts, "date") + limit(filter.ListFilter, true)
	rows := make([]models.Transaction, 0)
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM transactions"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	return rows, total, nil
}

// ListAll returns every matching entry, newest first.
func (r *TransactionRepository) ListAll(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	c := transactionConditions(filter)
	rows := make([]models.Transaction, 0)
	if err := r.db.SelectContext(ctx, &rows, "SELECT "+transactionColumns+" FROM transactions"+c.where()+" ORDER BY date DESC, created_at DESC", c.args...); err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	return rows, nil
}

// FindByID fetches one entry.
func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.GetContext(ctx, &t, "SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return &t, nil
}

// Create inserts one entry.
func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	const query = `INSERT INTO transactions (` + transactionColumns + `)
        VALUES (:id, :type, :category, :amount, :date, :description, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// Update modifies one entry.
func (r *TransactionRepository) Update(ctx context.Context, t *models.Transaction) error {
	t.UpdatedAt = time.Now().UTC()
	const query = `UPDATE transactions SET type = :type, category = :category, amount = :amount, date = :date,
        description = :description, updated_at = :updated_at WHERE id = :id`
	return expectOne(r.db.NamedExecContext(ctx, query, t))("update transaction")
}

// Delete removes one entry.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id))("delete transaction")
}
