package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
	ListAll(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error)
	FindByID(ctx context.Context, id string) (*models.Staff, error)
	Create(ctx context.Context, staff *models.Staff) error
	Update(ctx context.Context, staff *models.Staff) error
	Deactivate(ctx context.Context, id string) error
}

// StaffService handles staff records.
type StaffService struct {
	repo        staffRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator) *StaffService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffService{repo: repo, validator: validate, logger: logger, cache: cache, invalidator: invalidator}
}

// List returns one page of staff.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeStaff, "list", filter), 0, func(ctx context.Context) (Page[models.Staff], error) {
		items, total, err := s.repo.List(ctx, filter)
		return Page[models.Staff]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list staff")
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// ListAll returns every matching staff member.
func (s *StaffService) ListAll(ctx context.Context, filter models.StaffFilter) ([]models.Staff, error) {
	staff, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "list all staff")
	}
	return staff, nil
}

// Get returns one staff member.
func (s *StaffService) Get(ctx context.Context, id string) (*models.Staff, error) {
	staff, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find staff")
	}
	return staff, nil
}

// SuggestRole prefills the role field of the staff form from a designation.
func (s *StaffService) SuggestRole(designation string) models.StaffRole {
	return aggregate.SuggestStaffRole(designation)
}

// Create registers a staff member.
func (s *StaffService) Create(ctx context.Context, actor string, req dto.StaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	staff, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	staff.CreatedBy = actorRef(actor)
	if err := s.repo.Create(ctx, &staff); err != nil {
		return nil, appErrors.Store(err, "create staff")
	}
	s.invalidator.After(ctx, MutationStaffSave)
	return &staff, nil
}

// Update replaces the editable fields of a staff member.
func (s *StaffService) Update(ctx context.Context, id string, req dto.StaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find staff")
	}
	staff, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	staff.ID = existing.ID
	staff.CreatedBy = existing.CreatedBy
	staff.CreatedAt = existing.CreatedAt
	if req.Active == nil {
		staff.Active = existing.Active
	}
	if err := s.repo.Update(ctx, &staff); err != nil {
		return nil, appErrors.Store(err, "update staff")
	}
	s.invalidator.After(ctx, MutationStaffSave)
	return &staff, nil
}

// Delete deactivates a staff member; salary history keeps referencing the row.
func (s *StaffService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Store(err, "deactivate staff")
	}
	s.invalidator.After(ctx, MutationStaffDelete)
	return nil
}
