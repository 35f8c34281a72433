package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
)

// ReferenceResolver replaces identifier-only reporter and technician
// references with the live directory records.
type ReferenceResolver struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewReferenceResolver builds the resolver.
func NewReferenceResolver(users repository.UserRepository, logger *zap.Logger) *ReferenceResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceResolver{users: users, logger: logger}
}

// Resolve mutates the incident in place. Lookup failures leave the
// reference untouched and never surface to the caller.
func (r *ReferenceResolver) Resolve(ctx context.Context, incident *domain.Incident) {
	if incident == nil {
		return
	}

	if reporter := r.lookup(ctx, incident.ReporterID(), "reporter"); reporter != nil {
		incident.Reporter = reporter
	}
	if technician := r.lookup(ctx, incident.TechnicianID(), "technician"); technician.IsTechnician() {
		incident.AssignedTechnician = technician
	}
}

// ResolveAll resolves every incident of the slice.
func (r *ReferenceResolver) ResolveAll(ctx context.Context, incidents []domain.Incident) {
	for i := range incidents {
		r.Resolve(ctx, &incidents[i])
	}
}

func (r *ReferenceResolver) lookup(ctx context.Context, id, field string) *domain.User {
	if id == "" {
		return nil
	}
	user, err := r.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Warn("reference lookup failed",
				zap.String("field", field),
				zap.String("id", id),
				zap.Error(err),
			)
		}
		return nil
	}
	return user
}
