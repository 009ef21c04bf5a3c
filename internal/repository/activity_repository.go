package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

const activityColumns = `id, user_id, action, resource, path, status, ip_address, user_agent, created_at`

// ActivityRepository stores the write audit trail.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends one activity row.
func (r *ActivityRepository) Create(ctx context.Context, a *models.ActivityLog) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activity_logs (` + activityColumns + `)
        VALUES (:id, :user_id, :action, :resource, :path, :status, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

// List returns the newest activity first.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error) {
	c := &conditions{}
	if filter.UserID != "" {
		c.add("user_id = $?", filter.UserID)
	}
	if filter.Resource != "" {
		c.add("resource = $?", filter.Resource)
	}
	c.addSearch(filter.Search, "path")
	query := "SELECT " + activityColumns + " FROM activity_logs" + c.where() + " ORDER BY created_at DESC" + limit(filter.ListFilter, true)
	rows := make([]models.ActivityLog, 0)
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM activity_logs"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count activity: %w", err)
	}
	return rows, total, nil
}
