package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
	"github.com/noah-isme/madrasah-admin-api/pkg/jobs"
)

// ActivityJobType tags activity log jobs on the queue.
const ActivityJobType = "activity.log"

type activityRepository interface {
	Create(ctx context.Context, a *models.ActivityLog) error
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error)
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// ActivityService records the write trail off the request path.
type ActivityService struct {
	repo    activityRepository
	queue   jobEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewActivityService constructs an ActivityService. The queue is attached
// later with UseQueue because the queue's handler is this service.
func NewActivityService(repo activityRepository, metrics *MetricsService, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, metrics: metrics, logger: logger}
}

// UseQueue sets the queue Record pushes onto.
func (s *ActivityService) UseQueue(q jobEnqueuer) {
	s.queue = q
}

// Record schedules entry for persistence. It never blocks the request; a
// full or stopped queue drops the entry with a warning.
func (s *ActivityService) Record(entry models.ActivityLog) {
	if s == nil || s.queue == nil {
		return
	}
	if err := s.queue.TryEnqueue(jobs.Job{Type: ActivityJobType, Payload: entry}); err != nil {
		s.metrics.RecordActivityJob("dropped")
		s.logger.Warn("activity log dropped", zap.String("path", entry.Path), zap.Error(err))
	}
}

// Handle is the queue handler that writes one entry.
func (s *ActivityService) Handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.ActivityLog)
	if !ok {
		s.metrics.RecordActivityJob("invalid")
		s.logger.Error("unexpected activity payload", zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		s.metrics.RecordActivityJob("failed")
		return err
	}
	s.metrics.RecordActivityJob("stored")
	return nil
}

// List returns one page of the trail, newest first.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Store(err, "list activity")
	}
	return items, Pagination(filter.ListFilter, total), nil
}
