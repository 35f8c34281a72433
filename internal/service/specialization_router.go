package service

import (
	"context"
	"strings"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// SpecializationRouter matches incidents to technician specializations by
// category.
type SpecializationRouter struct {
	incidents repository.IncidentRepository
	resolver  *ReferenceResolver
}

// NewSpecializationRouter builds the router.
func NewSpecializationRouter(incidents repository.IncidentRepository, resolver *ReferenceResolver) *SpecializationRouter {
	return &SpecializationRouter{incidents: incidents, resolver: resolver}
}

// Route returns the incidents whose category matches one of the supplied
// specializations, case-insensitively, in store scan order.
func (r *SpecializationRouter) Route(ctx context.Context, specializations []string) ([]domain.Incident, error) {
	wanted := make(map[string]struct{}, len(specializations))
	for _, spec := range specializations {
		wanted[strings.ToLower(strings.TrimSpace(spec))] = struct{}{}
	}
	if len(wanted) == 0 {
		return []domain.Incident{}, nil
	}

	all, err := r.incidents.List(ctx, repository.IncidentFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	matched := make([]domain.Incident, 0, len(all))
	for _, incident := range all {
		if _, ok := wanted[strings.ToLower(string(incident.Category))]; ok {
			matched = append(matched, incident)
		}
	}
	r.resolver.ResolveAll(ctx, matched)
	return matched, nil
}
