// File: internal/auth/model.go
package auth

import (
	"estatehub_backend/internal/user"
)

// RegisterRequest creates a new seller or tenant account. Admin and agent
// accounts are provisioned by an admin through the user-management API.
type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email,max=255"`
	Password  string  `json:"password" binding:"required,min=8,max=72"`
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=100"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Role      string  `json:"role" binding:"required,oneof=SELLER TENANT"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse returns the issued token alongside the user profile.
type AuthResponse struct {
	Token string            `json:"token"`
	User  user.UserResponse `json:"user"`
}
