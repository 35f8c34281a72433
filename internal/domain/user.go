package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRole is returned for roles other than user or technician.
	ErrInvalidRole = errors.New("invalid role")
	// ErrUsernameRequired is returned when a user is built without a username.
	ErrUsernameRequired = errors.New("username required")
	// ErrSpecializationsForUser is returned when a plain user carries specializations.
	ErrSpecializationsForUser = errors.New("specializations are only allowed for technicians")
)

// Role tags a directory record.
type Role string

const (
	RoleUser       Role = "user"
	RoleTechnician Role = "technician"
)

// ParseRole accepts a role in any letter case. An empty role means user.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(RoleUser):
		return RoleUser, nil
	case string(RoleTechnician):
		return RoleTechnician, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

// User is a directory record. Only technicians carry specializations.
type User struct {
	ID              string
	Username        string
	Password        string
	Email           string
	Role            Role
	Specializations []Specialization
}

// NewUser builds a validated user or technician.
func NewUser(username, password, email, role string, specializations []string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	parsedRole, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	user := &User{
		Username: username,
		Password: password,
		Email:    strings.TrimSpace(email),
		Role:     parsedRole,
	}
	if err := user.SetSpecializations(specializations); err != nil {
		return nil, err
	}
	return user, nil
}

// Ref returns an identifier-only reference to a user.
func Ref(id string) *User {
	return &User{ID: id}
}

// IsTechnician reports whether the record is role-tagged as technician.
func (u *User) IsTechnician() bool {
	return u != nil && u.Role == RoleTechnician
}

// SetSpecializations replaces the specialization set after validating it
// against the user's role.
func (u *User) SetSpecializations(raw []string) error {
	if len(raw) == 0 {
		u.Specializations = nil
		if u.Role == RoleTechnician {
			u.Specializations = []Specialization{}
		}
		return nil
	}
	if u.Role != RoleTechnician {
		return ErrSpecializationsForUser
	}
	specs, err := ParseSpecializations(raw)
	if err != nil {
		return err
	}
	u.Specializations = specs
	return nil
}

// HasSpecialization reports whether the technician covers spec.
func (u *User) HasSpecialization(spec Specialization) bool {
	if u == nil {
		return false
	}
	for _, s := range u.Specializations {
		if s == spec {
			return true
		}
	}
	return false
}
