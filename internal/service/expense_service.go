package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/aggregate"
	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type expenseRepository interface {
	List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, int, error)
	ListAll(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error)
	FindByID(ctx context.Context, id string) (*models.Expense, error)
	Create(ctx context.Context, e *models.Expense) error
	CreateBatch(ctx context.Context, items []models.Expense) error
	Update(ctx context.Context, e *models.Expense) error
	Delete(ctx context.Context, id string) error
	DeleteBatch(ctx context.Context, batchID string) (int64, error)
}

// ExpenseService records spending, including multi-line shopping trips.
type ExpenseService struct {
	repo        expenseRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
	newID       func() string
}

// NewExpenseService constructs an ExpenseService.
func NewExpenseService(repo expenseRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator) *ExpenseService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		repo:        repo,
		validator:   validate,
		logger:      logger,
		cache:       cache,
		invalidator: invalidator,
		newID:       func() string { return uuid.NewString() },
	}
}

// List returns one page of expense lines.
func (s *ExpenseService) List(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeExpenses, "list", filter), 0, func(ctx context.Context) (Page[models.Expense], error) {
		items, total, err := s.repo.List(ctx, filter)
		return Page[models.Expense]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list expenses")
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// ListAll returns every matching expense line.
func (s *ExpenseService) ListAll(ctx context.Context, filter models.ExpenseFilter) ([]models.Expense, error) {
	items, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "list all expenses")
	}
	return items, nil
}

// Groups returns expenses collapsed into batches and singles, newest first.
func (s *ExpenseService) Groups(ctx context.Context, filter models.ExpenseFilter) ([]aggregate.ExpenseGroup, bool, error) {
	groups, hit, err := Remember(ctx, s.cache, Key(ScopeExpenses, "groups", filter), 0, func(ctx context.Context) ([]aggregate.ExpenseGroup, error) {
		items, err := s.repo.ListAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		return aggregate.GroupExpenseBatches(items), nil
	})
	if err != nil {
		return nil, false, appErrors.Store(err, "group expenses")
	}
	return groups, hit, nil
}

// Get returns one expense line.
func (s *ExpenseService) Get(ctx context.Context, id string) (*models.Expense, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find expense")
	}
	return e, nil
}

// Create records a single expense line.
func (s *ExpenseService) Create(ctx context.Context, actor string, req dto.ExpenseRequest) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	e, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	e.CreatedBy = actorRef(actor)
	if err := s.repo.Create(ctx, &e); err != nil {
		return nil, appErrors.Store(err, "create expense")
	}
	s.invalidator.After(ctx, MutationExpenseSave)
	return &e, nil
}

// CreateBatch stores every line of one trip under a fresh batch id. Either all lines land or none do.
func (s *ExpenseService) CreateBatch(ctx context.Context, actor string, req dto.ExpenseBatchRequest) ([]models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	batchID := s.newID()
	items, err := req.ToRecords(batchID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].CreatedBy = actorRef(actor)
	}
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return nil, appErrors.Store(err, "create expense batch")
	}
	s.invalidator.After(ctx, MutationExpenseBatch)
	s.logger.Info("expense batch stored", zap.String("batch_id", batchID), zap.Int("items", len(items)))
	return items, nil
}

// Update edits one line. Batch membership is kept.
func (s *ExpenseService) Update(ctx context.Context, id string, req dto.ExpenseRequest) (*models.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find expense")
	}
	e, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	e.ID = existing.ID
	e.BatchID = existing.BatchID
	e.BatchName = existing.BatchName
	e.CreatedBy = existing.CreatedBy
	e.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, &e); err != nil {
		return nil, appErrors.Store(err, "update expense")
	}
	s.invalidator.After(ctx, MutationExpenseSave)
	return &e, nil
}

// Delete removes one expense line.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Store(err, "delete expense")
	}
	s.invalidator.After(ctx, MutationExpenseDelete)
	return nil
}

// DeleteBatch removes exactly the rows of one batch and reports how many went.
func (s *ExpenseService) DeleteBatch(ctx context.Context, batchID string) (int64, error) {
	if _, err := uuid.Parse(batchID); err != nil {
		return 0, appErrors.Invalid("batch_id", "uuid", "")
	}
	n, err := s.repo.DeleteBatch(ctx, batchID)
	if err != nil {
		return 0, appErrors.Store(err, "delete expense batch")
	}
	if n == 0 {
		return 0, appErrors.ErrNotFound
	}
	s.invalidator.After(ctx, MutationExpenseBatchDrop)
	return n, nil
}
