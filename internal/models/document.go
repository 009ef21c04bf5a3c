package models

import "time"

// Document is metadata for an uploaded attachment.
type Document struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Category   string    `db:"category" json:"category"`
	FilePath   string    `db:"file_path" json:"file_path"`
	FileURL    string    `db:"file_url" json:"file_url"`
	MimeType   string    `db:"mime_type" json:"mime_type"`
	SizeBytes  int64     `db:"size_bytes" json:"size_bytes"`
	RelatedID  *string   `db:"related_id" json:"related_id"`
	UploadedBy *string   `db:"uploaded_by" json:"uploaded_by,omitempty"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`

	DownloadURL string `db:"-" json:"download_url,omitempty"`
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	ListFilter
	Category  string
	RelatedID string
}
