package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

const noticeColumns = `id, title, content, priority, audience, published, publish_date, created_by, created_at, updated_at`

var noticeSorts = map[string]string{
	"publish_date": "publish_date",
	"priority":     "priority",
	"title":        "title",
	"created_at":   "created_at",
}

// NoticeRepository persists board notices.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository constructs a NoticeRepository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// List returns one page of notices.
func (r *NoticeRepository) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error) {
	c := &conditions{}
	if filter.Audience != "" {
		c.add("audience IN ($?, 'all')", filter.Audience)
	}
	if filter.Published != nil {
		c.add("published = $?", *filter.Published)
	}
	c.addSearch(filter.Search, "title", "content")
	query := "SELECT " + noticeColumns + " FROM notices" + c.where() + orderBy(filter.ListFilter, noticeSorts, "publish_date") + limit(filter.ListFilter, true)
	rows := make([]models.Notice, 0)
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list notices: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM notices"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count notices: %w", err)
	}
	return rows, total, nil
}

// FindByID fetches one notice.
func (r *NoticeRepository) FindByID(ctx context.Context, id string) (*models.Notice, error) {
	var n models.Notice
	if err := r.db.GetContext(ctx, &n, "SELECT "+noticeColumns+" FROM notices WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("find notice: %w", err)
	}
	return &n, nil
}

// Create inserts a notice.
func (r *NoticeRepository) Create(ctx context.Context, n *models.Notice) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now
	const query = `INSERT INTO notices (` + noticeColumns + `)
        VALUES (:id, :title, :content, :priority, :audience, :published, :publish_date, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notice: %w", err)
	}
	return nil
}

// Update modifies a notice.
func (r *NoticeRepository) Update(ctx context.Context, n *models.Notice) error {
	n.UpdatedAt = time.Now().UTC()
	const query = `UPDATE notices SET title = :title, content = :content, priority = :priority, audience = :audience,
        published = :published, publish_date = :publish_date, updated_at = :updated_at WHERE id = :id`
	return expectOne(r.db.NamedExecContext(ctx, query, n))("update notice")
}

// Delete removes a notice.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id))("delete notice")
}
