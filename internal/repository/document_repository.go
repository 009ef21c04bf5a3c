package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
)

const documentColumns = `id, title, category, file_path, file_url, mime_type, size_bytes, related_id, uploaded_by, uploaded_at`

var documentSorts = map[string]string{
	"uploaded_at": "uploaded_at",
	"title":       "title",
	"size_bytes":  "size_bytes",
}

// DocumentRepository persists metadata of uploaded files.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs a DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// List returns one page of documents.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	c := &conditions{}
	if filter.Category != "" {
		c.add("category = $?", filter.Category)
	}
	if filter.RelatedID != "" {
		c.add("related_id = $?", filter.RelatedID)
	}
	c.addSearch(filter.Search, "title")
	query := "SELECT " + documentColumns + " FROM documents" + c.where() + orderBy(filter.ListFilter, documentSorts, "uploaded_at") + limit(filter.ListFilter, true)
	rows := make([]models.Document, 0)
	if err := r.db.SelectContext(ctx, &rows, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return rows, total, nil
}

// FindByID fetches one document.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	var d models.Document
	if err := r.db.GetContext(ctx, &d, "SELECT "+documentColumns+" FROM documents WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return &d, nil
}

// Create inserts document metadata.
func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO documents (` + documentColumns + `)
        VALUES (:id, :title, :category, :file_path, :file_url, :mime_type, :size_bytes, :related_id, :uploaded_by, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, d); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Delete removes document metadata.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id))("delete document")
}
