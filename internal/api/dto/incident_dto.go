package dto

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// ReferenceRequest points at a user by identifier.
type ReferenceRequest struct {
	ID string `json:"id"`
}

// IncidentRequest is the create and update payload. Any creationDate sent
// by the client is ignored.
type IncidentRequest struct {
	Title              string            `json:"title" validate:"max=512"`
	Description        string            `json:"description"`
	CreationDate       *time.Time        `json:"creationDate"`
	Status             string            `json:"status"`
	Priority           int               `json:"priority" validate:"min=0"`
	Category           string            `json:"category"`
	Reporter           *ReferenceRequest `json:"reporter"`
	AssignedTechnician *ReferenceRequest `json:"assignedTechnician"`
}

// ToDomain converts the payload, parsing status and category variants.
func (r IncidentRequest) ToDomain() *domain.Incident {
	incident := &domain.Incident{
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.ParseStatus(r.Status),
		Priority:    r.Priority,
	}
	if r.Category != "" {
		incident.Category = domain.ParseCategory(r.Category)
	}
	if r.Reporter != nil && r.Reporter.ID != "" {
		incident.Reporter = domain.Ref(r.Reporter.ID)
	}
	if r.AssignedTechnician != nil && r.AssignedTechnician.ID != "" {
		incident.AssignedTechnician = domain.Ref(r.AssignedTechnician.ID)
	}
	return incident
}

// SpecializationRequest carries the specializations to route on.
type SpecializationRequest struct {
	Specializations []string `json:"specializations"`
}

// ReferenceResponse is an unresolved user reference.
type ReferenceResponse struct {
	ID string `json:"id"`
}

// IncidentResponse is the wire form of an incident. Reporter and
// assignedTechnician are a UserResponse when resolved and a
// ReferenceResponse otherwise.
type IncidentResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	CreationDate       time.Time `json:"creationDate"`
	Status             string    `json:"status"`
	Priority           int       `json:"priority"`
	Category           string    `json:"category"`
	Reporter           any       `json:"reporter"`
	AssignedTechnician any       `json:"assignedTechnician"`
}

// NewIncidentResponse renders an incident.
func NewIncidentResponse(incident *domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:                 incident.ID,
		Title:              incident.Title,
		Description:        incident.Description,
		CreationDate:       incident.CreationDate,
		Status:             string(incident.Status),
		Priority:           incident.Priority,
		Category:           string(incident.Category),
		Reporter:           userRef(incident.Reporter),
		AssignedTechnician: userRef(incident.AssignedTechnician),
	}
}

// NewIncidentResponses renders a list, never nil.
func NewIncidentResponses(incidents []domain.Incident) []IncidentResponse {
	out := make([]IncidentResponse, 0, len(incidents))
	for i := range incidents {
		out = append(out, NewIncidentResponse(&incidents[i]))
	}
	return out
}

func userRef(user *domain.User) any {
	if user == nil {
		return nil
	}
	if user.Username == "" {
		return ReferenceResponse{ID: user.ID}
	}
	return NewUserResponse(user)
}
