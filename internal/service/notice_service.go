package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type noticeRepository interface {
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error)
	FindByID(ctx context.Context, id string) (*models.Notice, error)
	Create(ctx context.Context, n *models.Notice) error
	Update(ctx context.Context, n *models.Notice) error
	Delete(ctx context.Context, id string) error
}

// NoticeService runs the notice board.
type NoticeService struct {
	repo        noticeRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
	clock       Clock
	loc         *time.Location
}

// NewNoticeService constructs a NoticeService.
func NewNoticeService(repo noticeRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator, loc *time.Location) *NoticeService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &NoticeService{repo: repo, validator: validate, logger: logger, cache: cache, invalidator: invalidator, loc: loc}
}

// List returns one page of notices, newest first.
func (s *NoticeService) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeNotices, "list", filter), 0, func(ctx context.Context) (Page[models.Notice], error) {
		items, total, err := s.repo.List(ctx, filter)
		return Page[models.Notice]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list notices")
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// Recent returns the latest published notices.
func (s *NoticeService) Recent(ctx context.Context, limit int) ([]models.Notice, error) {
	published := true
	items, _, _, err := s.List(ctx, models.NoticeFilter{
		ListFilter: models.ListFilter{Page: 1, PageSize: limit, SortBy: "publish_date", SortOrder: "desc"},
		Published:  &published,
	})
	return items, err
}

// Get returns one notice.
func (s *NoticeService) Get(ctx context.Context, id string) (*models.Notice, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find notice")
	}
	return n, nil
}

// Create posts a notice.
func (s *NoticeService) Create(ctx context.Context, actor string, req dto.NoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	n, err := req.ToRecord(s.clock.in(s.loc))
	if err != nil {
		return nil, err
	}
	n.CreatedBy = actorRef(actor)
	if err := s.repo.Create(ctx, &n); err != nil {
		return nil, appErrors.Store(err, "create notice")
	}
	s.invalidator.After(ctx, MutationNoticeSave)
	return &n, nil
}

// Update edits a notice. An omitted publish date keeps the original one.
func (s *NoticeService) Update(ctx context.Context, id string, req dto.NoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find notice")
	}
	n, err := req.ToRecord(s.clock.in(s.loc))
	if err != nil {
		return nil, err
	}
	n.ID = existing.ID
	n.CreatedBy = existing.CreatedBy
	n.CreatedAt = existing.CreatedAt
	if req.PublishDate == "" {
		n.PublishDate = existing.PublishDate
	}
	if req.Published == nil {
		n.Published = existing.Published
	}
	if err := s.repo.Update(ctx, &n); err != nil {
		return nil, appErrors.Store(err, "update notice")
	}
	s.invalidator.After(ctx, MutationNoticeSave)
	return &n, nil
}

// Delete removes a notice.
func (s *NoticeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Store(err, "delete notice")
	}
	s.invalidator.After(ctx, MutationNoticeDelete)
	return nil
}
