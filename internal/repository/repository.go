package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository is the directory store for users and technicians.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// IncidentFilter narrows an incident listing. Nil fields do not filter; an
// empty filter is a full scan in the store's natural order. Category matches
// without regard to case.
type IncidentFilter struct {
	Status       *domain.IncidentStatus
	Priority     *int
	Category     *domain.Category
	TechnicianID *string
	ReporterID   *string
}

// IncidentRepository is the incident store. Reporter and technician are
// persisted as identifiers only.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Save(ctx context.Context, incident *domain.Incident) error
	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Incident, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
}

// Store bundles both repositories of a backend.
type Store struct {
	Users     UserRepository
	Incidents IncidentRepository
	ping      func(ctx context.Context) error
	close     func()
}

// Ping verifies backend connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases backend resources.
func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

func refID(user *domain.User) *string {
	if user == nil || user.ID == "" {
		return nil
	}
	id := user.ID
	return &id
}

func refFromID(id *string) *domain.User {
	if id == nil || *id == "" {
		return nil
	}
	return domain.Ref(*id)
}

func specializationStrings(specs []domain.Specialization) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, string(s))
	}
	return out
}

func specializationsFromStrings(raw []string) []domain.Specialization {
	if raw == nil {
		return nil
	}
	out := make([]domain.Specialization, 0, len(raw))
	for _, s := range raw {
		out = append(out, domain.Specialization(s))
	}
	return out
}

// NewPostgresStore builds repositories over a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Users:     NewUserRepository(pool),
		Incidents: NewIncidentRepository(pool),
		ping:      pool.Ping,
	}
}
