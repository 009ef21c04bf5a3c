package models

import "time"

// NoticePriority orders notices on the board.
type NoticePriority string

const (
	NoticeLow    NoticePriority = "low"
	NoticeNormal NoticePriority = "normal"
	NoticeHigh   NoticePriority = "high"
)

// NoticeAudience says who a notice addresses.
type NoticeAudience string

const (
	AudienceAll      NoticeAudience = "all"
	AudienceStudents NoticeAudience = "students"
	AudienceStaff    NoticeAudience = "staff"
)

// Notice is a board announcement.
type Notice struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Content     string         `db:"content" json:"content"`
	Priority    NoticePriority `db:"priority" json:"priority"`
	Audience    NoticeAudience `db:"audience" json:"audience"`
	Published   bool           `db:"published" json:"published"`
	PublishDate time.Time      `db:"publish_date" json:"publish_date"`
	CreatedBy   *string        `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// NoticeFilter narrows notice listings.
type NoticeFilter struct {
	ListFilter
	Audience  NoticeAudience
	Published *bool
}
