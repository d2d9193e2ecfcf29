package dto

import (
	"time"

	"github.com/resolvease/complaint-service/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	Department string `json:"department" validate:"max=120"`
	Role       string `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest payload for PUT /api/auth/profile. Empty fields keep their current value.
type UpdateProfileRequest struct {
	Name       string `json:"name" validate:"omitempty,max=120"`
	Email      string `json:"email" validate:"omitempty,email"`
	Department string `json:"department" validate:"omitempty,max=120"`
	Password   string `json:"password" validate:"omitempty,min=6,max=72"`
}

// AdminUpdateUserRequest payload for PUT /api/admin/users/:id. Empty fields keep their current value.
type AdminUpdateUserRequest struct {
	Name       string `json:"name" validate:"omitempty,max=120"`
	Email      string `json:"email" validate:"omitempty,email"`
	Role       string `json:"role"`
	Department string `json:"department" validate:"omitempty,max=120"`
}

// UserResponse is the credential-free user representation.
type UserResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	Department string      `json:"department"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// NewUserResponse strips credentials from a user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.Department,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

// NewUserResponses maps a user list.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// NewAuthResponse pairs a user with their freshly issued credential.
func NewAuthResponse(user *domain.User, token domain.Token) AuthResponse {
	return AuthResponse{
		User:      NewUserResponse(user),
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
	}
}
