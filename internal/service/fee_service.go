package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type feeRepository interface {
	ListStructures(ctx context.Context, filter models.FeeStructureFilter) ([]models.FeeStructure, error)
	FindStructure(ctx context.Context, id string) (*models.FeeStructure, error)
	CreateStructure(ctx context.Context, f *models.FeeStructure) error
	UpdateStructure(ctx context.Context, f *models.FeeStructure) error
	DeleteStructure(ctx context.Context, id string) error
	ListPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, int, error)
	ListAllPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, error)
	FindPayment(ctx context.Context, id string) (*models.FeePayment, error)
	CreatePayment(ctx context.Context, p *models.FeePayment) error
	DeletePayment(ctx context.Context, id string) error
}

// FeeService manages fee structures and collected payments.
type FeeService struct {
	repo        feeRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
	clock       Clock
	loc         *time.Location
}

// NewFeeService constructs a FeeService.
func NewFeeService(repo feeRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator, loc *time.Location) *FeeService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &FeeService{repo: repo, validator: validate, logger: logger, cache: cache, invalidator: invalidator, loc: loc}
}

// ListStructures returns fee structures, active first.
func (s *FeeService) ListStructures(ctx context.Context, filter models.FeeStructureFilter) ([]models.FeeStructure, bool, error) {
	items, hit, err := Remember(ctx, s.cache, Key(ScopeFeeStructures, "list", filter), 0, func(ctx context.Context) ([]models.FeeStructure, error) {
		return s.repo.ListStructures(ctx, filter)
	})
	if err != nil {
		return nil, false, appErrors.Store(err, "list fee structures")
	}
	return items, hit, nil
}

// GetStructure returns one fee structure.
func (s *FeeService) GetStructure(ctx context.Context, id string) (*models.FeeStructure, error) {
	f, err := s.repo.FindStructure(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find fee structure")
	}
	return f, nil
}

// CreateStructure defines a fee.
func (s *FeeService) CreateStructure(ctx context.Context, actor string, req dto.FeeStructureRequest) (*models.FeeStructure, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	f, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	f.CreatedBy = actorRef(actor)
	if err := s.repo.CreateStructure(ctx, &f); err != nil {
		return nil, appErrors.Store(err, "create fee structure")
	}
	s.invalidator.After(ctx, MutationFeeStructureSave)
	return &f, nil
}

// UpdateStructure edits a fee definition.
func (s *FeeService) UpdateStructure(ctx context.Context, id string, req dto.FeeStructureRequest) (*models.FeeStructure, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	existing, err := s.repo.FindStructure(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find fee structure")
	}
	f, err := req.ToRecord()
	if err != nil {
		return nil, err
	}
	f.ID = existing.ID
	f.CreatedBy = existing.CreatedBy
	f.CreatedAt = existing.CreatedAt
	if req.Active == nil {
		f.Active = existing.Active
	}
	if err := s.repo.UpdateStructure(ctx, &f); err != nil {
		return nil, appErrors.Store(err, "update fee structure")
	}
	s.invalidator.After(ctx, MutationFeeStructureSave)
	return &f, nil
}

// DeleteStructure removes a fee definition. Structures with payments are
// protected by the foreign key and surface as a referential error.
func (s *FeeService) DeleteStructure(ctx context.Context, id string) error {
	if err := s.repo.DeleteStructure(ctx, id); err != nil {
		return appErrors.Store(err, "delete fee structure")
	}
	s.invalidator.After(ctx, MutationFeeStructureDrop)
	return nil
}

// ListPayments returns one page of collected fees.
func (s *FeeService) ListPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeFeePayments, "list", filter), 0, func(ctx context.Context) (Page[models.FeePayment], error) {
		items, total, err := s.repo.ListPayments(ctx, filter)
		return Page[models.FeePayment]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list fee payments")
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// ListAllPayments returns every matching payment.
func (s *FeeService) ListAllPayments(ctx context.Context, filter models.FeePaymentFilter) ([]models.FeePayment, error) {
	items, err := s.repo.ListAllPayments(ctx, filter)
	if err != nil {
		return nil, appErrors.Store(err, "list all fee payments")
	}
	return items, nil
}

// GetPayment returns one payment.
func (s *FeeService) GetPayment(ctx context.Context, id string) (*models.FeePayment, error) {
	p, err := s.repo.FindPayment(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find fee payment")
	}
	return p, nil
}

// CollectPayment records a fee paid by a student and issues a receipt number when none was given.
func (s *FeeService) CollectPayment(ctx context.Context, actor string, req dto.FeePaymentRequest) (*models.FeePayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	p, err := req.ToRecord(s.clock.in(s.loc))
	if err != nil {
		return nil, err
	}
	if p.ReceiptNumber == nil {
		receipt := ReceiptNumber(p.PaymentDate.Year(), int(p.PaymentDate.Month()), uuid.NewString())
		p.ReceiptNumber = &receipt
	}
	p.CreatedBy = actorRef(actor)
	if err := s.repo.CreatePayment(ctx, &p); err != nil {
		return nil, appErrors.Store(err, "create fee payment")
	}
	s.invalidator.After(ctx, MutationFeePaymentSave)
	return &p, nil
}

// DeletePayment removes a payment.
func (s *FeeService) DeletePayment(ctx context.Context, id string) error {
	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return appErrors.Store(err, "delete fee payment")
	}
	s.invalidator.After(ctx, MutationFeePaymentDelete)
	return nil
}

// ReceiptNumber formats RCT-YYYYMM-xxxxxxxx from the first eight hex digits of seed.
func ReceiptNumber(year, month int, seed string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(seed, "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("RCT-%04d%02d-%s", year, month, suffix)
}
