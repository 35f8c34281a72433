package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// AssignmentService handles technician self-assignment.
type AssignmentService struct {
	incidents repository.IncidentRepository
	users     repository.UserRepository
	logger    *zap.Logger
	strict    bool
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	IncidentRepo repository.IncidentRepository
	UserRepo     repository.UserRepository
	Logger       *zap.Logger
	// StrictTakeCharge reports missing incidents or technicians as not
	// found. When false they are logged and ignored.
	StrictTakeCharge bool
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		incidents: deps.IncidentRepo,
		users:     deps.UserRepo,
		logger:    logger,
		strict:    deps.StrictTakeCharge,
	}
}

// TakeCharge assigns the incident to the technician with the given username,
// replacing any previous assignee.
func (s *AssignmentService) TakeCharge(ctx context.Context, incidentID, username string) error {
	technician, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperrors.MapError(err)
	}
	if err != nil || !technician.IsTechnician() {
		return s.missing("technician", map[string]any{"username": username})
	}

	incident, err := s.incidents.GetByID(ctx, incidentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.missing("incident", map[string]any{"incident_id": incidentID})
		}
		return apperrors.MapError(err)
	}

	incident.AssignedTechnician = technician
	if err := s.incidents.Save(ctx, incident); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.missing("incident", map[string]any{"incident_id": incidentID})
		}
		return apperrors.MapError(err)
	}

	s.logger.Info("incident taken in charge",
		zap.String("incident_id", incidentID),
		zap.String("technician", technician.Username),
	)
	return nil
}

func (s *AssignmentService) missing(resource string, details map[string]any) error {
	if s.strict {
		return apperrors.NewNotFound(resource, details)
	}
	s.logger.Warn("take charge skipped", zap.String("missing", resource), zap.Any("details", details))
	return nil
}
