package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// UserService manages the user and technician directory.
type UserService struct {
	users  repository.UserRepository
	hasher *auth.PasswordHasher
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo repository.UserRepository
	Hasher   *auth.PasswordHasher
}

// CreateUserInput describes a new directory entry.
type CreateUserInput struct {
	Username        string
	Password        string
	Email           string
	Role            string
	Specializations []string
}

// UpdateUserInput carries a partial update. Nil fields are left untouched.
type UpdateUserInput struct {
	Username        *string
	Password        *string
	Email           *string
	Role            *string
	Specializations []string
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewPasswordHasher(false, 0)
	}
	return &UserService{users: deps.UserRepo, hasher: hasher}
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Create validates and stores a new user.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	user, err := domain.NewUser(input.Username, input.Password, input.Email, input.Role, input.Specializations)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	if user.Password, err = s.hasher.Prepare(user.Password); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("username already taken", map[string]any{"username": user.Username})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Update applies the supplied fields to an existing user.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, apperrors.NewValidationError(domain.ErrUsernameRequired.Error(), nil)
		}
		user.Username = username
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.Password != nil {
		if user.Password, err = s.hasher.Prepare(*input.Password); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}

	specs := input.Specializations
	if input.Role != nil {
		role, err := domain.ParseRole(*input.Role)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
		if role != user.Role && specs == nil {
			specs = []string{}
		}
		user.Role = role
	}
	if specs != nil {
		if err := user.SetSpecializations(specs); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), nil)
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		case errors.Is(err, repository.ErrDuplicate):
			return nil, apperrors.NewConflict("username already taken", map[string]any{"username": user.Username})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Delete removes a user. Incidents referencing it are left as they are.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
