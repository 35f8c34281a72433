package service

import (
	"context"
	"errors"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// AuthService coordinates login and token issuance.
type AuthService struct {
	users    repository.UserRepository
	tokenMgr *auth.TokenManager
	hasher   *auth.PasswordHasher
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:    deps.UserRepo,
		tokenMgr: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		hasher:   auth.NewPasswordHasher(cfg.Auth.HashPasswords, cfg.Auth.BcryptCost),
	}
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, domain.Token, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Token{}, apperrors.NewNotFound("user", map[string]any{"username": username})
		}
		return nil, domain.Token{}, apperrors.MapError(err)
	}

	if err := s.hasher.Verify(user.Password, password); err != nil {
		return nil, domain.Token{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, domain.Token{}, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Hasher exposes the password policy shared with user management.
func (s *AuthService) Hasher() *auth.PasswordHasher {
	return s.hasher
}
