package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListAll(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	SetStatus(ctx context.Context, id string, status models.StudentStatus) error
	CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error)
}

// StudentService handles student use-cases.
type StudentService struct {
	repo        studentRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator) *StudentService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger, cache: cache, invalidator: invalidator}
}

// List returns one page of students. The boolean reports a cache hit.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeStudents, "list", filter), 0, func(ctx context.Context) (Page[models.Student], error) {
		items, total, err := s.repo.List(ctx, filter)
		return Page[models.Student]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list students")
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// ListAll returns every matching student for exports.
func (s *StudentService) ListAll(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	students, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "list all students")
	}
	return students, nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find student")
	}
	return student, nil
}

// Create admits a student.
func (s *StudentService) Create(ctx context.Context, actor string, req dto.StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	student, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	student.CreatedBy = actorRef(actor)
	if err := s.repo.Create(ctx, &student); err != nil {
		return nil, appErrors.Store(err, "create student")
	}
	s.invalidator.After(ctx, MutationStudentSave)
	return &student, nil
}

// Update replaces the editable fields of a student.
func (s *StudentService) Update(ctx context.Context, id string, req dto.StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find student")
	}
	student, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	student.ID = existing.ID
	student.CreatedBy = existing.CreatedBy
	student.CreatedAt = existing.CreatedAt
	if req.Status == "" {
		student.Status = existing.Status
	}
	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, appErrors.Store(err, "update student")
	}
	s.invalidator.After(ctx, MutationStudentSave)
	return &student, nil
}

// Delete marks a student inactive; student rows are never hard-deleted.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.SetStatus(ctx, id, models.StudentInactive); err != nil {
		return appErrors.Store(err, "deactivate student")
	}
	s.invalidator.After(ctx, MutationStudentDelete)
	return nil
}

// CountByDepartment returns active students per department, zero-filled in display order.
func (s *StudentService) CountByDepartment(ctx context.Context) (dto.StudentOverview, error) {
	counts, err := s.repo.CountByDepartment(ctx)
	if err != nil {
		return dto.StudentOverview{}, appErrors.Store(err, "count students")
	}
	return studentOverview(counts), nil
}
