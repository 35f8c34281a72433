package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// Classifier assigns category and priority to new incidents.
type Classifier interface {
	Classify(ctx context.Context, incident *domain.Incident)
}

// IncidentService coordinates incident workflows.
type IncidentService struct {
	incidents  repository.IncidentRepository
	resolver   *ReferenceResolver
	classifier Classifier
	router     *SpecializationRouter
	now        func() time.Time
}

// IncidentDependencies bundles collaborators for the incident service.
type IncidentDependencies struct {
	IncidentRepo repository.IncidentRepository
	Resolver     *ReferenceResolver
	Classifier   Classifier
	Router       *SpecializationRouter
}

// NewIncidentService constructs the service.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	router := deps.Router
	if router == nil {
		router = NewSpecializationRouter(deps.IncidentRepo, deps.Resolver)
	}
	return &IncidentService{
		incidents:  deps.IncidentRepo,
		resolver:   deps.Resolver,
		classifier: deps.Classifier,
		router:     router,
		now:        time.Now,
	}
}

// Create stamps, classifies and stores a new incident.
func (s *IncidentService) Create(ctx context.Context, incident *domain.Incident) (*domain.Incident, error) {
	incident.ID = ""
	incident.CreationDate = s.now().UTC()
	if incident.Status == "" {
		incident.Status = domain.StatusOpen
	}

	if s.classifier != nil {
		s.classifier.Classify(ctx, incident)
	}
	s.resolver.Resolve(ctx, incident)

	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, apperrors.MapError(err)
	}
	return incident, nil
}

// Get returns one incident with its references resolved.
func (s *IncidentService) Get(ctx context.Context, id string) (*domain.Incident, error) {
	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("incident", map[string]any{"incident_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	s.resolver.Resolve(ctx, incident)
	return incident, nil
}

// List returns the incidents matching filter with references resolved.
func (s *IncidentService) List(ctx context.Context, filter repository.IncidentFilter) ([]domain.Incident, error) {
	incidents, err := s.incidents.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.resolver.ResolveAll(ctx, incidents)
	return incidents, nil
}

// ListByStatus filters on a status parsed like incoming writes.
func (s *IncidentService) ListByStatus(ctx context.Context, raw string) ([]domain.Incident, error) {
	status := domain.ParseStatus(raw)
	return s.List(ctx, repository.IncidentFilter{Status: &status})
}

// ListByPriority filters on priority.
func (s *IncidentService) ListByPriority(ctx context.Context, priority int) ([]domain.Incident, error) {
	return s.List(ctx, repository.IncidentFilter{Priority: &priority})
}

// ListByCategory filters on a category parsed like incoming writes.
func (s *IncidentService) ListByCategory(ctx context.Context, raw string) ([]domain.Incident, error) {
	category := domain.ParseCategory(raw)
	return s.List(ctx, repository.IncidentFilter{Category: &category})
}

// ListByTechnician returns the incidents assigned to a technician id.
func (s *IncidentService) ListByTechnician(ctx context.Context, technicianID string) ([]domain.Incident, error) {
	return s.List(ctx, repository.IncidentFilter{TechnicianID: &technicianID})
}

// ListByReporter returns the incidents reported by a user id.
func (s *IncidentService) ListByReporter(ctx context.Context, reporterID string) ([]domain.Incident, error) {
	return s.List(ctx, repository.IncidentFilter{ReporterID: &reporterID})
}

// ListBySpecializations routes incidents to a specialization set.
func (s *IncidentService) ListBySpecializations(ctx context.Context, specializations []string) ([]domain.Incident, error) {
	return s.router.Route(ctx, specializations)
}

// Update overwrites an existing incident. The identifier comes from the path
// and the creation date from the stored record.
func (s *IncidentService) Update(ctx context.Context, id string, incident *domain.Incident) (*domain.Incident, error) {
	exists, err := s.incidents.Exists(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !exists {
		return nil, apperrors.NewNotFound("incident", map[string]any{"incident_id": id})
	}

	stored, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("incident", map[string]any{"incident_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	incident.ID = id
	incident.CreationDate = stored.CreationDate
	if incident.Status == "" {
		incident.Status = domain.StatusOpen
	}
	s.resolver.Resolve(ctx, incident)

	if err := s.incidents.Save(ctx, incident); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("incident", map[string]any{"incident_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return incident, nil
}

// Delete removes the incident if present.
func (s *IncidentService) Delete(ctx context.Context, id string) error {
	if err := s.incidents.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
