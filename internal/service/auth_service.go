package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/madrasah-admin-api/internal/dto"
	"github.com/noah-isme/madrasah-admin-api/internal/models"
	appErrors "github.com/noah-isme/madrasah-admin-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, hash string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
}

// ClientMeta identifies the client that opened a session.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// AuthService issues and verifies sessions.
type AuthService struct {
	repo        authUserRepository
	validator   *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
	invalidator *Invalidator
	clock       Clock
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig, invalidator *Invalidator) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 15 * time.Minute
	}
	if config.RefreshTokenExpiry <= 0 {
		config.RefreshTokenExpiry = 7 * 24 * time.Hour
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, config: config, invalidator: invalidator}
}

// SignUp registers an account with the default "user" role and signs it in.
func (s *AuthService) SignUp(ctx context.Context, req dto.SignUpRequest, meta ClientMeta) (*models.AuthTokens, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrapf(appErrors.ErrInternal, err, "hash password")
	}
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleUser,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Store(err, "create user")
	}
	s.invalidator.After(ctx, MutationUserSignUp)
	s.logger.Info("account registered", zap.String("user_id", user.ID))
	return s.issue(ctx, user, meta)
}

// SignIn authenticates a user and returns issued tokens.
func (s *AuthService) SignIn(ctx context.Context, req dto.SignInRequest, meta ClientMeta) (*models.AuthTokens, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidLogin
		}
		return nil, appErrors.Store(err, "find user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidLogin
	}
	if !user.Active {
		return nil, appErrors.ErrInactive
	}
	if err := s.repo.UpdateLastLogin(ctx, user.ID, s.clock.now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	return s.issue(ctx, user, meta)
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair issued.
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshRequest, meta ClientMeta) (*models.AuthTokens, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Classify(err)
	}
	stored, err := s.repo.FindRefreshToken(ctx, hashToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, appErrors.Store(err, "find refresh token")
	}
	now := s.clock.now().UTC()
	if !stored.Active(now) {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.repo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, appErrors.Store(err, "find user")
	}
	if !user.Active {
		return nil, appErrors.ErrInactive
	}
	if err := s.repo.RevokeRefreshToken(ctx, stored.ID, now); err != nil {
		return nil, appErrors.Store(err, "revoke refresh token")
	}
	return s.issue(ctx, user, meta)
}

// SignOut revokes a refresh token owned by userID. An empty token ends every session of the user.
func (s *AuthService) SignOut(ctx context.Context, userID, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		if err := s.repo.RevokeUserRefreshTokens(ctx, userID); err != nil {
			return appErrors.Store(err, "revoke sessions")
		}
		return nil
	}
	stored, err := s.repo.FindRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Store(err, "find refresh token")
	}
	if stored.UserID != userID {
		return appErrors.ErrForbidden
	}
	if err := s.repo.RevokeRefreshToken(ctx, stored.ID, s.clock.now().UTC()); err != nil {
		return appErrors.Store(err, "revoke refresh token")
	}
	return nil
}

// Me returns the current user with the role read from user_roles.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, appErrors.Store(err, "find user")
	}
	return user, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, jwt.WithTimeFunc(s.clock.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User, meta ClientMeta) (*models.AuthTokens, error) {
	now := s.clock.now().UTC()
	access, err := s.generateAccessToken(user, now)
	if err != nil {
		return nil, appErrors.Wrapf(appErrors.ErrInternal, err, "sign access token")
	}
	raw, err := generateRefreshTokenString()
	if err != nil {
		return nil, appErrors.Wrapf(appErrors.ErrInternal, err, "generate refresh token")
	}
	refresh := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: now.Add(s.config.RefreshTokenExpiry),
		CreatedAt: now,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.repo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, appErrors.Store(err, "store refresh token")
	}
	return &models.AuthTokens{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:     now,
		User: models.UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func generateRefreshTokenString() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashToken is what refresh_tokens stores; the raw value only exists client side.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
