package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type transactionRepository interface {
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int, error)
	ListAll(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	Create(ctx context.Context, t *models.Transaction) error
	Update(ctx context.Context, t *models.Transaction) error
	Delete(ctx context.Context, id string) error
}

// TransactionService manages the general ledger.
type TransactionService struct {
	repo        transactionRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
}

// NewTransactionService constructs a TransactionService.
func NewTransactionService(repo transactionRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator) *TransactionService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionService{repo: repo, validator: validate, logger: logger, cache: cache, invalidator: invalidator}
}

// List returns one page of ledger entries.
func (s *TransactionService) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeTransactions, "list", filter), 0, func(ctx context.Context) (Page[models.Transaction], error) {
		items, total, err := s.repo.List(ctx, filter)
		return Page[models.Transaction]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list transactions")
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// ListAll returns every matching ledger entry.
func (s *TransactionService) ListAll(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	items, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "list all transactions")
	}
	return items, nil
}

// Get returns one ledger entry.
func (s *TransactionService) Get(ctx context.Context, id string) (*models.Transaction, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find transaction")
	}
	return t, nil
}

// Create records a ledger entry.
func (s *TransactionService) Create(ctx context.Context, actor string, req dto.TransactionRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	t, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	t.CreatedBy = actorRef(actor)
	if err := s.repo.Create(ctx, &t); err != nil {
		return nil, appErrors.Store(err, "create transaction")
	}
	s.invalidator.After(ctx, MutationTransactionSave)
	return &t, nil
}

// Update edits a ledger entry.
func (s *TransactionService) Update(ctx context.Context, id string, req dto.TransactionRequest) (*models.Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find transaction")
	}
	t, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	t.ID = existing.ID
	t.CreatedBy = existing.CreatedBy
	t.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, &t); err != nil {
		return nil, appErrors.Store(err, "update transaction")
	}
	s.invalidator.After(ctx, MutationTransactionSave)
	return &t, nil
}

// Delete removes a ledger entry.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Store(err, "delete transaction")
	}
	s.invalidator.After(ctx, MutationTransactionDelete)
	return nil
}
