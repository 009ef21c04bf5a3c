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

type salaryRepository interface {
	List(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryPayment, int, error)
	ListAll(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryPayment, error)
	FindByID(ctx context.Context, id string) (*models.SalaryPayment, error)
	Upsert(ctx context.Context, p *models.SalaryPayment) error
	Update(ctx context.Context, p *models.SalaryPayment) error
	Delete(ctx context.Context, id string) error
	CountUnpaid(ctx context.Context, month, year int) (int, error)
}

// SalaryService records monthly staff salaries.
type SalaryService struct {
	repo        salaryRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
	clock       Clock
	loc         *time.Location
}

// NewSalaryService constructs a SalaryService.
func NewSalaryService(repo salaryRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator, loc *time.Location) *SalaryService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SalaryService{repo: repo, validator: validate, logger: logger, cache: cache, invalidator: invalidator, loc: loc}
}

// List returns one page of salary rows.
func (s *SalaryService) List(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryPayment, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeSalaryPayments, "list", filter), 0, func(ctx context.Context) (Page[models.SalaryPayment], error) {
		items, total, err := s.repo.List(ctx, filter)
		return Page[models.SalaryPayment]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list salaries")
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// ListAll returns every matching salary row.
func (s *SalaryService) ListAll(ctx context.Context, filter models.SalaryFilter) ([]models.SalaryPayment, error) {
	items, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "list all salaries")
	}
	return items, nil
}

// Get returns one salary row.
func (s *SalaryService) Get(ctx context.Context, id string) (*models.SalaryPayment, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find salary")
	}
	return p, nil
}

// Record stores a month's salary for a staff member. Recording the same month
// again replaces the earlier row.
func (s *SalaryService) Record(ctx context.Context, actor string, req dto.SalaryPaymentRequest) (*models.SalaryPayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	p, err := req.ToRecord(s.clock.in(s.loc))
	if err != nil {
		return nil, err
	}
	p.CreatedBy = actorRef(actor)
	if err := s.repo.Upsert(ctx, &p); err != nil {
		return nil, appErrors.Store(err, "record salary")
	}
	s.invalidator.After(ctx, MutationSalarySave)
	return &p, nil
}

// Update edits a salary row by id. The staff member cannot change.
func (s *SalaryService) Update(ctx context.Context, id string, req dto.SalaryPaymentRequest) (*models.SalaryPayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find salary")
	}
	if req.StaffID != existing.StaffID {
		return nil, appErrors.Invalid("staff_id", "eqfield", "")
	}
	p, err := req.ToRecord(s.clock.in(s.loc))
	if err != nil {
		return nil, err
	}
	p.ID = existing.ID
	p.CreatedBy = existing.CreatedBy
	p.CreatedAt = existing.CreatedAt
	p.StaffName = existing.StaffName
	if err := s.repo.Update(ctx, &p); err != nil {
		return nil, appErrors.Store(err, "update salary")
	}
	s.invalidator.After(ctx, MutationSalarySave)
	return &p, nil
}

// Delete removes a salary row.
func (s *SalaryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Store(err, "delete salary")
	}
	s.invalidator.After(ctx, MutationSalaryDelete)
	return nil
}

// CountUnpaid counts active staff with no paid salary for the month.
func (s *SalaryService) CountUnpaid(ctx context.Context, month, year int) (int, error) {
	n, err := s.repo.CountUnpaid(ctx, month, year)
	if err != nil {
		return 0, appErrors.Store(err, "count unpaid salaries")
	}
	return n, nil
}
