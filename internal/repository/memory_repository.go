package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/spec-kit/incident-service/internal/domain"
)

// NewMemoryStore builds in-process repositories. Records are copied on the
// way in and out so callers never alias stored state.
func NewMemoryStore() *Store {
	return &Store{
		Users:     NewMemoryUserRepository(),
		Incidents: NewMemoryIncidentRepository(),
	}
}

// MemoryUserRepository keeps users in insertion order.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.User
}

// NewMemoryUserRepository creates an empty repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byID: make(map[string]domain.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usernameTaken(user.Username, "") {
		return ErrDuplicate
	}
	user.ID = uuid.NewString()
	r.byID[user.ID] = copyUser(user)
	r.order = append(r.order, user.ID)
	return nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return ErrNotFound
	}
	if r.usernameTaken(user.Username, user.ID) {
		return ErrDuplicate
	}
	r.byID[strings.Clone(user.ID)] = copyUser(user)
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	r.order = removeID(r.order, id)
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyUser(&user)
	return &out, nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findFirst(func(u *domain.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findFirst(func(u *domain.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.User, 0, len(r.order))
	for _, id := range r.order {
		user, ok := r.byID[id]
		if !ok {
			continue
		}
		result = append(result, copyUser(&user))
	}
	return result, nil
}

func (r *MemoryUserRepository) findFirst(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		user := r.byID[id]
		if match(&user) {
			out := copyUser(&user)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) usernameTaken(username, exceptID string) bool {
	for id, user := range r.byID {
		if id != exceptID && user.Username == username {
			return true
		}
	}
	return false
}

// MemoryIncidentRepository keeps incidents in insertion order.
type MemoryIncidentRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Incident
}

// NewMemoryIncidentRepository creates an empty repository.
func NewMemoryIncidentRepository() *MemoryIncidentRepository {
	return &MemoryIncidentRepository{byID: make(map[string]domain.Incident)}
}

func (r *MemoryIncidentRepository) Create(_ context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	incident.ID = uuid.NewString()
	r.byID[incident.ID] = storedIncident(incident)
	r.order = append(r.order, incident.ID)
	return nil
}

func (r *MemoryIncidentRepository) Save(_ context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[incident.ID]; !ok {
		return ErrNotFound
	}
	r.byID[strings.Clone(incident.ID)] = storedIncident(incident)
	return nil
}

func (r *MemoryIncidentRepository) Exists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok, nil
}

func (r *MemoryIncidentRepository) GetByID(_ context.Context, id string) (*domain.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	incident, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := storedIncident(&incident)
	return &out, nil
}

func (r *MemoryIncidentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; ok {
		delete(r.byID, id)
		r.order = removeID(r.order, id)
	}
	return nil
}

func (r *MemoryIncidentRepository) List(_ context.Context, filter IncidentFilter) ([]domain.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.Incident{}
	for _, id := range r.order {
		incident, ok := r.byID[id]
		if !ok || !matchesFilter(&incident, filter) {
			continue
		}
		result = append(result, storedIncident(&incident))
	}
	return result, nil
}

func matchesFilter(incident *domain.Incident, filter IncidentFilter) bool {
	if filter.Status != nil && incident.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && incident.Priority != *filter.Priority {
		return false
	}
	if filter.Category != nil && !strings.EqualFold(string(incident.Category), string(*filter.Category)) {
		return false
	}
	if filter.TechnicianID != nil && incident.TechnicianID() != *filter.TechnicianID {
		return false
	}
	if filter.ReporterID != nil && incident.ReporterID() != *filter.ReporterID {
		return false
	}
	return true
}

func copyUser(user *domain.User) domain.User {
	out := *user
	out.ID = strings.Clone(user.ID)
	if user.Specializations != nil {
		out.Specializations = append([]domain.Specialization{}, user.Specializations...)
	}
	return out
}

// storedIncident reduces references to identifiers, matching what the
// database backends persist.
func storedIncident(incident *domain.Incident) domain.Incident {
	out := *incident
	out.ID = strings.Clone(incident.ID)
	out.Reporter = refFromID(refID(incident.Reporter))
	out.AssignedTechnician = refFromID(refID(incident.AssignedTechnician))
	return out
}

func removeID(ids []string, id string) []string {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
