package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type mockUserRepo struct {
	users      map[string]models.User
	revokeErr  error
	revokedFor []string
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Role = role
	m.users[id] = u
	return nil
}

func (m *mockUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Active = active
	m.users[id] = u
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedFor = append(m.revokedFor, userID)
	return m.revokeErr
}

func newUserFixture() (*UserService, *mockUserRepo, *memCacheRepo) {
	_, inv, cacheRepo := newTestCache()
	repo := &mockUserRepo{users: map[string]models.User{
		"admin": {ID: "admin", Role: models.RoleAdmin, Active: true},
		"u-2":   {ID: "u-2", Role: models.RoleUser, Active: true},
	}}
	return NewUserService(repo, nil, nil, nil, inv), repo, cacheRepo
}

func TestUserUpdateRole(t *testing.T) {
	svc, _, cacheRepo := newUserFixture()

	user, err := svc.UpdateRole(context.Background(), "admin", "u-2", dto.UpdateRoleRequest{Role: "accountant"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAccountant, user.Role)
	assert.Contains(t, cacheRepo.prefixes, "users:")

	_, err = svc.UpdateRole(context.Background(), "admin", "u-2", dto.UpdateRoleRequest{Role: "superuser"})
	assert.Contains(t, appErrors.Classify(err).Violations(), "role")
}

func TestUserAdminCannotDemoteOrDisableSelf(t *testing.T) {
	svc, _, _ := newUserFixture()
	inactive := false

	_, err := svc.UpdateRole(context.Background(), "admin", "admin", dto.UpdateRoleRequest{Role: "teacher"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.SetStatus(context.Background(), "admin", "admin", dto.UpdateUserStatusRequest{Active: &inactive})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestUserDeactivationEndsSessions(t *testing.T) {
	svc, repo, _ := newUserFixture()
	repo.revokeErr = errors.New("db hiccup")
	inactive := false

	user, err := svc.SetStatus(context.Background(), "admin", "u-2", dto.UpdateUserStatusRequest{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, user.Active)
	assert.Equal(t, []string{"u-2"}, repo.revokedFor)

	active := true
	_, err = svc.SetStatus(context.Background(), "admin", "u-2", dto.UpdateUserStatusRequest{Active: &active})
	require.NoError(t, err)
	assert.Len(t, repo.revokedFor, 1)
}

func TestUserMissingIsNotFound(t *testing.T) {
	svc, _, _ := newUserFixture()
	_, err := svc.Get(context.Background(), "ghost")
	assert.Equal(t, appErrors.KindNotFound, appErrors.Classify(err).Kind)
}
