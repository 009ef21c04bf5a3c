package dto

import (
	"strings"
	"time"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

// NoticeRequest publishes or edits a notice.
type NoticeRequest struct {
	Title       string `json:"title" validate:"required,max=160"`
	Content     string `json:"content" validate:"required,max=5000"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low normal high"`
	Audience    string `json:"audience" validate:"omitempty,oneof=all students staff"`
	Published   *bool  `json:"published"`
	PublishDate string `json:"publish_date" validate:"omitempty,date"`
}

// ToRecord maps the form onto a notice row, defaulting to a normal-priority
// notice for everyone, published today.
func (r NoticeRequest) ToRecord(now time.Time) (models.Notice, error) {
	publishOn := today(now)
	if r.PublishDate != "" {
		d, err := ParseDate(r.PublishDate)
		if err != nil {
			return models.Notice{}, appErrors.Invalid("publish_date", "date", "")
		}
		publishOn = d
	}
	priority := models.NoticePriority(r.Priority)
	if priority == "" {
		priority = models.NoticeNormal
	}
	audience := models.NoticeAudience(r.Audience)
	if audience == "" {
		audience = models.AudienceAll
	}
	return models.Notice{
		Title:       strings.TrimSpace(r.Title),
		Content:     r.Content,
		Priority:    priority,
		Audience:    audience,
		Published:   boolOr(r.Published, true),
		PublishDate: publishOn,
	}, nil
}

// DocumentRequest carries the metadata fields of a multipart upload.
type DocumentRequest struct {
	Title     string `form:"title" validate:"required,max=160"`
	Category  string `form:"category" validate:"required,max=60"`
	RelatedID string `form:"related_id" validate:"omitempty,uuid"`
}
