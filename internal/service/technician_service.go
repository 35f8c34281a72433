package service

import (
	"context"
	"errors"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// TechnicianService answers technician directory queries.
type TechnicianService struct {
	users repository.UserRepository
}

// NewTechnicianService constructs the service.
func NewTechnicianService(users repository.UserRepository) *TechnicianService {
	return &TechnicianService{users: users}
}

// Specializations returns the specializations of the technician with the
// given username.
func (s *TechnicianService) Specializations(ctx context.Context, username string) ([]domain.Specialization, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}
	if err != nil || !user.IsTechnician() {
		return nil, apperrors.NewNotFound("technician", map[string]any{"username": username})
	}
	if user.Specializations == nil {
		return []domain.Specialization{}, nil
	}
	return user.Specializations, nil
}
