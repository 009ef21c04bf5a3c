package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type mockAuthRepo struct {
	users            map[string]*models.User
	tokens           map[string]*models.RefreshToken
	lastLoginUpdated bool
	revokedAll       []string
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{users: map[string]*models.User{}, tokens: map[string]*models.RefreshToken{}}
}

func (m *mockAuthRepo) addUser(t *testing.T, id, email, password string, role models.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{ID: id, Email: email, PasswordHash: string(hash), FullName: "Test " + id, Role: role, Active: active}
	m.users[id] = u
	return u
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	if _, err := m.FindByEmail(ctx, user.Email); err == nil {
		return appErrors.ErrConflict
	}
	user.ID = "u-new"
	m.users[user.ID] = user
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error) {
	tok, ok := m.tokens[hash]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return tok, nil
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, tok := range m.tokens {
		if tok.ID == id {
			ts := revokedAt
			tok.RevokedAt = &ts
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedAll = append(m.revokedAll, userID)
	return nil
}

var authNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func newAuthService(repo *mockAuthRepo) *AuthService {
	svc := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "madrasah-admin"}, nil)
	svc.clock = func() time.Time { return authNow }
	return svc
}

func TestAuthSignInIssuesTokens(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "u-1", "admin@madrasah.test", "password123", models.RoleAdmin, true)
	svc := newAuthService(repo)

	tokens, err := svc.SignIn(context.Background(), dto.SignInRequest{Email: "admin@madrasah.test", Password: "password123"}, ClientMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.EqualValues(t, 900, tokens.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, tokens.User.Role)
	assert.True(t, repo.lastLoginUpdated)

	stored, ok := repo.tokens[hashToken(tokens.RefreshToken)]
	require.True(t, ok, "only the hash is persisted")
	assert.Equal(t, "10.0.0.1", stored.IPAddress)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthSignInFailures(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "u-1", "teacher@madrasah.test", "password123", models.RoleTeacher, true)
	repo.addUser(t, "u-2", "gone@madrasah.test", "password123", models.RoleTeacher, false)
	svc := newAuthService(repo)

	_, err := svc.SignIn(context.Background(), dto.SignInRequest{Email: "teacher@madrasah.test", Password: "wrong-pass"}, ClientMeta{})
	assert.ErrorIs(t, err, appErrors.ErrInvalidLogin)

	_, err = svc.SignIn(context.Background(), dto.SignInRequest{Email: "nobody@madrasah.test", Password: "password123"}, ClientMeta{})
	assert.ErrorIs(t, err, appErrors.ErrInvalidLogin)

	_, err = svc.SignIn(context.Background(), dto.SignInRequest{Email: "gone@madrasah.test", Password: "password123"}, ClientMeta{})
	assert.ErrorIs(t, err, appErrors.ErrInactive)

	_, err = svc.SignIn(context.Background(), dto.SignInRequest{Email: "not-an-email", Password: "x"}, ClientMeta{})
	assert.Contains(t, appErrors.Classify(err).Violations(), "email")
}

func TestAuthSignUpGetsUserRole(t *testing.T) {
	_, inv, cacheRepo := newTestCache()
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "secret"}, inv)

	tokens, err := svc.SignUp(context.Background(), dto.SignUpRequest{Email: "New@Madrasah.test", Password: "password123", FullName: "New Person"}, ClientMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, tokens.User.Role)
	assert.Equal(t, "new@madrasah.test", tokens.User.Email)
	assert.Contains(t, cacheRepo.prefixes, "users:")
}

func TestAuthRefreshRotates(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "u-1", "acc@madrasah.test", "password123", models.RoleAccountant, true)
	svc := newAuthService(repo)

	first, err := svc.SignIn(context.Background(), dto.SignInRequest{Email: "acc@madrasah.test", Password: "password123"}, ClientMeta{})
	require.NoError(t, err)

	second, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: first.RefreshToken}, ClientMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: first.RefreshToken}, ClientMeta{})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: "made-up"}, ClientMeta{})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthRefreshRejectsExpired(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "u-1", "acc@madrasah.test", "password123", models.RoleAccountant, true)
	svc := newAuthService(repo)
	tokens, err := svc.SignIn(context.Background(), dto.SignInRequest{Email: "acc@madrasah.test", Password: "password123"}, ClientMeta{})
	require.NoError(t, err)

	svc.clock = func() time.Time { return authNow.Add(8 * 24 * time.Hour) }
	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: tokens.RefreshToken}, ClientMeta{})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthSignOut(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "u-1", "a@madrasah.test", "password123", models.RoleTeacher, true)
	svc := newAuthService(repo)
	tokens, err := svc.SignIn(context.Background(), dto.SignInRequest{Email: "a@madrasah.test", Password: "password123"}, ClientMeta{})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SignOut(context.Background(), "someone-else", tokens.RefreshToken), appErrors.ErrForbidden)
	require.NoError(t, svc.SignOut(context.Background(), "u-1", tokens.RefreshToken))
	assert.NotNil(t, repo.tokens[hashToken(tokens.RefreshToken)].RevokedAt)

	require.NoError(t, svc.SignOut(context.Background(), "u-1", ""))
	assert.Equal(t, []string{"u-1"}, repo.revokedAll)
}

func TestAuthValidateTokenRejectsForeignAndExpired(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "u-1", "a@madrasah.test", "password123", models.RoleTeacher, true)
	svc := newAuthService(repo)
	tokens, err := svc.SignIn(context.Background(), dto.SignInRequest{Email: "a@madrasah.test", Password: "password123"}, ClientMeta{})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "other"}, nil)
	other.clock = svc.clock
	_, err = other.ValidateToken(tokens.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	svc.clock = func() time.Time { return authNow.Add(time.Hour) }
	_, err = svc.ValidateToken(tokens.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthMe(t *testing.T) {
	repo := newMockAuthRepo()
	repo.addUser(t, "u-1", "a@madrasah.test", "password123", models.RoleTeacher, true)
	svc := newAuthService(repo)

	me, err := svc.Me(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, me.Role)

	_, err = svc.Me(context.Background(), "ghost")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
