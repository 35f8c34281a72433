package dto

import "github.com/spec-kit/incident-service/internal/domain"

// CreateUserRequest payload for new users and technicians.
type CreateUserRequest struct {
	Username        string   `json:"username" validate:"required"`
	Password        string   `json:"password" validate:"required"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Role            string   `json:"role" validate:"omitempty,role"`
	Specializations []string `json:"specializations" validate:"omitempty,dive,specialization"`
}

// UpdateUserRequest is a partial update; omitted fields are kept.
type UpdateUserRequest struct {
	Username        *string  `json:"username" validate:"omitempty,min=1"`
	Password        *string  `json:"password"`
	Email           *string  `json:"email" validate:"omitempty,email"`
	Role            *string  `json:"role" validate:"omitempty,role"`
	Specializations []string `json:"specializations" validate:"omitempty,dive,specialization"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Message  string `json:"message"`
	Token    string `json:"token"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// MessageResponse carries a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the wire form of a user. The password is never included.
type UserResponse struct {
	ID              string   `json:"id"`
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	Specializations []string `json:"specializations,omitempty"`
}

// NewUserResponse renders a user.
func NewUserResponse(user *domain.User) UserResponse {
	resp := UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}
	if user.IsTechnician() {
		resp.Specializations = SpecializationWire(user.Specializations)
	}
	return resp
}

// NewUserResponses renders a list, never nil.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// SpecializationWire renders specializations in lower case.
func SpecializationWire(specs []domain.Specialization) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.Wire())
	}
	return out
}
