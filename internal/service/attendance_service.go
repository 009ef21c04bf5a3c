package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
	ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	Upsert(ctx context.Context, a *models.Attendance) error
	BulkUpsert(ctx context.Context, records []models.Attendance) error
	Delete(ctx context.Context, id string) error
}

// AttendanceService marks and summarises attendance.
type AttendanceService struct {
	repo        attendanceRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator) *AttendanceService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger, cache: cache, invalidator: invalidator}
}

// List returns one page of attendance rows.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeAttendance, "list", filter), 0, func(ctx context.Context) (Page[models.Attendance], error) {
		items, total, err := s.repo.List(ctx, filter)
		return Page[models.Attendance]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list attendance")
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// ListRange returns every row matching filter, oldest first.
func (s *AttendanceService) ListRange(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	rows, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "list attendance")
	}
	return rows, nil
}

// Summary computes attendance statistics for the rows matching filter.
func (s *AttendanceService) Summary(ctx context.Context, filter models.AttendanceFilter) (aggregate.AttendanceSummary, bool, error) {
	summary, hit, err := Remember(ctx, s.cache, Key(ScopeAttendance, "summary", filter), 0, func(ctx context.Context) (aggregate.AttendanceSummary, error) {
		rows, err := s.repo.ListAll(ctx, filter)
		if err != nil {
			return aggregate.AttendanceSummary{}, err
		}
		return aggregate.SummarizeAttendance(rows), nil
	})
	if err != nil {
		return aggregate.AttendanceSummary{}, false, appErrors.Store(err, "summarise attendance")
	}
	return summary, hit, nil
}

// Mark records one person's status for one day. Re-marking overwrites.
func (s *AttendanceService) Mark(ctx context.Context, actor string, req dto.AttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	record, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	record.CreatedBy = actorRef(actor)
	if err := s.repo.Upsert(ctx, &record); err != nil {
		return nil, appErrors.Store(err, "mark attendance")
	}
	s.invalidator.After(ctx, MutationAttendanceMark)
	return &record, nil
}

// MarkBulk records a whole roster in one transaction. Repeated
// (user, type, date) keys in the batch collapse to the last entry, and any
// failure leaves storage untouched.
func (s *AttendanceService) MarkBulk(ctx context.Context, actor string, req dto.BulkAttendanceRequest) ([]models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	records, err := req.ToRecords()
	if err != nil {
		return nil, err
	}
	records = aggregate.DedupeAttendance(records)
	for i := range records {
		records[i].CreatedBy = actorRef(actor)
	}
	if err := s.repo.BulkUpsert(ctx, records); err != nil {
		return nil, appErrors.Store(err, "bulk mark attendance")
	}
	s.invalidator.After(ctx, MutationAttendanceBulk)
	s.logger.Info("attendance batch stored", zap.Int("records", len(records)), zap.Int("submitted", len(req.Records)))
	return records, nil
}

// Delete removes one attendance row.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Store(err, "delete attendance")
	}
	s.invalidator.After(ctx, MutationAttendanceDelete)
	return nil
}

// Today returns the student attendance summary of the local calendar day.
func (s *AttendanceService) Today(ctx context.Context, now time.Time, loc *time.Location) (aggregate.AttendanceSummary, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := dateOnly(local.Year(), local.Month(), local.Day())
	summary, _, err := s.Summary(ctx, models.AttendanceFilter{UserType: models.SubjectStudent, DateFrom: &day, DateTo: &day})
	return summary, err
}
