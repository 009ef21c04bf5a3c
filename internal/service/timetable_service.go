package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type timetableRepository interface {
	List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, error)
	FindByID(ctx context.Context, id string) (*models.TimetableEntry, error)
	Create(ctx context.Context, t *models.TimetableEntry) error
	Update(ctx context.Context, t *models.TimetableEntry) error
	Delete(ctx context.Context, id string) error
}

// TimetableService maintains the weekly class routine.
type TimetableService struct {
	repo        timetableRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(repo timetableRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator) *TimetableService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, validator: validate, logger: logger, cache: cache, invalidator: invalidator}
}

// List returns the routine ordered Saturday first, then by start time.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, bool, error) {
	entries, hit, err := Remember(ctx, s.cache, Key(ScopeTimetables, "list", filter), 0, func(ctx context.Context) ([]models.TimetableEntry, error) {
		return s.repo.List(ctx, filter)
	})
	if err != nil {
		return nil, false, appErrors.Store(err, "list timetable")
	}
	return entries, hit, nil
}

// Get returns one period.
func (s *TimetableService) Get(ctx context.Context, id string) (*models.TimetableEntry, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find timetable entry")
	}
	return t, nil
}

// Create schedules a period. A period overlapping another of the same class
// on the same day is rejected.
func (s *TimetableService) Create(ctx context.Context, actor string, req dto.TimetableRequest) (*models.TimetableEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	t := req.ToRecord()
	if err := s.checkOverlap(ctx, t); err != nil {
		return nil, err
	}
	t.CreatedBy = actorRef(actor)
	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, appErrors.Store(err, "create timetable entry")
	}
	s.invalidator.After(ctx, MutationTimetableSave)
	return &t, nil
}

// Update edits a period.
func (s *TimetableService) Update(ctx context.Context, id string, req dto.TimetableRequest) (*models.TimetableEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find timetable entry")
	}
	t := req.ToRecord()
	t.ID = existing.ID
	t.CreatedBy = existing.CreatedBy
	t.CreatedAt = existing.CreatedAt
	if err := s.checkOverlap(ctx, t); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &t); err != nil {
		return nil, appErrors.Store(err, "update timetable entry")
	}
	s.invalidator.After(ctx, MutationTimetableSave)
	return &t, nil
}

// Delete removes a period.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Store(err, "delete timetable entry")
	}
	s.invalidator.After(ctx, MutationTimetableDelete)
	return nil
}

func (s *TimetableService) checkOverlap(ctx context.Context, t models.TimetableEntry) error {
	if clock(t.EndTime) <= clock(t.StartTime) {
		return appErrors.Invalid("end_time", "gt", clock(t.StartTime))
	}
	existing, err := s.repo.List(ctx, models.TimetableFilter{Department: t.Department, ClassName: t.ClassName, DayOfWeek: t.DayOfWeek})
	if err != nil {
		return appErrors.Store(err, "list timetable")
	}
	for _, other := range existing {
		if other.ID == t.ID {
			continue
		}
		if Overlaps(t.StartTime, t.EndTime, other.StartTime, other.EndTime) {
			return appErrors.Invalid("start_time", "overlap", clock(other.StartTime)+"-"+clock(other.EndTime))
		}
	}
	return nil
}

// Overlaps reports whether two HH:MM periods share any minute. Touching ends do not overlap.
func Overlaps(startA, endA, startB, endB string) bool {
	return clock(startA) < clock(endB) && clock(startB) < clock(endA)
}

// clock trims a time column ("08:00:00") to HH:MM so string order is time order.
func clock(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 5 {
		return v[:5]
	}
	return v
}
