package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	SetActive(ctx context.Context, id string, active bool) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
}

// UserService manages accounts and their roles.
type UserService struct {
	repo        userRepository
	validator   *validator.Validate
	logger      *zap.Logger
	cache       *CacheService
	invalidator *Invalidator
}

// NewUserService constructs a UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger, cache *CacheService, invalidator *Invalidator) *UserService {
	if validate == nil {
		validate = dto.NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, validator: validate, logger: logger, cache: cache, invalidator: invalidator}
}

// List returns users with their roles.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, bool, error) {
	page, hit, err := Remember(ctx, s.cache, Key(ScopeUsers, "list", filter), 0, func(ctx context.Context) (Page[models.User], error) {
		items, total, err := s.repo.List(ctx, filter)
		return Page[models.User]{Items: items, Total: total}, err
	})
	if err != nil {
		return nil, nil, false, appErrors.Store(err, "list users")
	}
	return page.Items, Pagination(filter.ListFilter, page.Total), hit, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Store(err, "find user")
	}
	return user, nil
}

// UpdateRole replaces the role of a user. Admins cannot demote themselves.
func (s *UserService) UpdateRole(ctx context.Context, actor, id string, req dto.UpdateRoleRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	role := models.UserRole(req.Role)
	if actor == id && role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, appErrors.Store(err, "update role")
	}
	s.invalidator.After(ctx, MutationUserRole)
	s.logger.Info("user role changed", zap.String("user_id", id), zap.String("role", string(role)), zap.String("by", actor))
	return s.Get(ctx, id)
}

// SetStatus activates or deactivates an account. Deactivation ends its sessions.
func (s *UserService) SetStatus(ctx context.Context, actor, id string, req dto.UpdateUserStatusRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	if actor == id && !*req.Active {
		return nil, appErrors.ErrForbidden
	}
	if err := s.repo.SetActive(ctx, id, *req.Active); err != nil {
		return nil, appErrors.Store(err, "set user status")
	}
	if !*req.Active {
		if err := s.repo.RevokeUserRefreshTokens(ctx, id); err != nil {
			s.logger.Warn("failed to revoke sessions of deactivated user", zap.String("user_id", id), zap.Error(err))
		}
	}
	s.invalidator.After(ctx, MutationUserStatus)
	return s.Get(ctx, id)
}
