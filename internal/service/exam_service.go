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

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, e *models.Exam) error
	Update(ctx context.Context, e *models.Exam) error
	Delete(ctx context.Context, id string) error
	ListResults(ctx context.Context, examID string) ([]models.ExamResult, error)
	UpsertResults(ctx context.Context, results []models.ExamResult) error
	DeleteResult(ctx context.Context, id string) error
}

// ExamService schedules exams and records their results.
type ExamService struct {
	repo        examRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
}

// NewExamService constructs an ExamService.
func NewExamService(repo examRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator) *ExamService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, validator: validate, logger: logger, cache: cache, invalidator: invalidator}
}

// List returns one page of exams.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeExams, "list", filter), 0, func(ctx context.Context) (Page[models.Exam], error) {
		items, total, err := s.repo.List(ctx, filter)
		return Page[models.Exam]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list exams")
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// Get returns one exam.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find exam")
	}
	return e, nil
}

// Create schedules an exam.
func (s *ExamService) Create(ctx context.Context, actor string, req dto.ExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	e, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	e.CreatedBy = actorRef(actor)
	if err := s.repo.Create(ctx, &e); err != nil {
		return nil, appErrors.Store(err, "create exam")
	}
	s.invalidator.After(ctx, MutationExamSave)
	return &e, nil
}

// Update edits an exam.
func (s *ExamService) Update(ctx context.Context, id string, req dto.ExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find exam")
	}
	e, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	e.ID = existing.ID
	e.CreatedBy = existing.CreatedBy
	e.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, &e); err != nil {
		return nil, appErrors.Store(err, "update exam")
	}
	s.invalidator.After(ctx, MutationExamSave)
	return &e, nil
}

// Delete removes an exam together with its results.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Store(err, "delete exam")
	}
	s.invalidator.After(ctx, MutationExamDelete)
	return nil
}

// Results returns the stored results of an exam, ordered by student name.
func (s *ExamService) Results(ctx context.Context, examID string) ([]models.ExamResult, bool, error) {
	if _, err := s.repo.FindByID(ctx, examID); err != nil {
		return nil, false, appErrors.Store(err, "find exam")
	}
	results, hit, err := Remember(ctx, s.cache, Key(ScopeExamResults, "exam", examID), 0, func(ctx context.Context) ([]models.ExamResult, error) {
		return s.repo.ListResults(ctx, examID)
	})
	if err != nil {
		return nil, false, appErrors.Store(err, "list exam results")
	}
	return results, hit, nil
}

// SaveResults grades and upserts a result sheet in one transaction. A student
// listed twice keeps the last entry.
func (s *ExamService) SaveResults(ctx context.Context, actor, examID string, req dto.BulkExamResultRequest) ([]models.ExamResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	exam, err := s.repo.FindByID(ctx, examID)
	if err != nil {
		return nil, appErrors.Store(err, "find exam")
	}
	results, err := req.ToRecords(*exam)
	if err != nil {
		return nil, err
	}
	results = aggregate.DedupeResults(results)
	for i := range results {
		results[i].CreatedBy = actorRef(actor)
	}
	if err := s.repo.UpsertResults(ctx, results); err != nil {
		return nil, appErrors.Store(err, "save exam results")
	}
	s.invalidator.After(ctx, MutationExamResultsSave)
	return results, nil
}

// DeleteResult removes one student's result.
func (s *ExamService) DeleteResult(ctx context.Context, id string) error {
	if err := s.repo.DeleteResult(ctx, id); err != nil {
		return appErrors.Store(err, "delete exam result")
	}
	s.invalidator.After(ctx, MutationExamResultDelete)
	return nil
}

// ResultSheet grades every stored result of an exam and tallies the class.
func (s *ExamService) ResultSheet(ctx context.Context, examID string) (*dto.ExamResultSheet, error) {
	exam, err := s.repo.FindByID(ctx, examID)
	if err != nil {
		return nil, appErrors.Store(err, "find exam")
	}
	results, _, err := s.Results(ctx, examID)
	if err != nil {
		return nil, err
	}
	sheet := BuildResultSheet(*exam, results)
	return &sheet, nil
}

// BuildResultSheet derives the sheet from stored results. Grades are
// recomputed from marks so a changed total is reflected immediately.
func BuildResultSheet(exam models.Exam, results []models.ExamResult) dto.ExamResultSheet {
	sheet := dto.ExamResultSheet{Exam: exam, Rows: make([]dto.ExamResultRow, 0, len(results))}
	counts := make(map[string]int, len(aggregate.Grades))
	for _, r := range results {
		grade := aggregate.Grade(r.MarksObtained, exam.TotalMarks, r.IsAbsent)
		row := dto.ExamResultRow{
			StudentID:     r.StudentID,
			MarksObtained: r.MarksObtained,
			Grade:         grade,
			GradePoint:    aggregate.GradePoint(grade),
			IsAbsent:      r.IsAbsent,
		}
		if r.StudentName != nil {
			row.StudentName = *r.StudentName
		}
		if r.IsAbsent {
			sheet.Absent++
		} else {
			row.Percentage = aggregate.ScorePercentage(r.MarksObtained, exam.TotalMarks)
			row.Passed = r.MarksObtained >= exam.PassMarks
			sheet.Appeared++
			if row.Passed {
				sheet.Passed++
			} else {
				sheet.Failed++
			}
		}
		counts[grade]++
		sheet.Rows = append(sheet.Rows, row)
	}
	if sheet.Appeared > 0 {
		sheet.PassRate = float64(sheet.Passed) * 100 / float64(sheet.Appeared)
	}
	sheet.Distribution = make([]dto.GradeCount, 0, len(aggregate.Grades))
	for _, g := range aggregate.Grades {
		sheet.Distribution = append(sheet.Distribution, dto.GradeCount{Grade: g, Count: counts[g]})
	}
	return sheet
}
