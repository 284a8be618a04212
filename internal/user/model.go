// File: internal/user/model.go
package user

import (
	"time"

	"estatehub_backend/internal/common"

	"github.com/google/uuid"
)

// User represents a marketplace account. The role column is one of the
// closed common.Role values; every other table hangs off this one.
type User struct {
	common.BaseModel
	Email        string      `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string      `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    *string     `gorm:"type:varchar(100)"`
	LastName     *string     `gorm:"type:varchar(100)"`
	Phone        *string     `gorm:"type:varchar(20)"`
	Role         common.Role `gorm:"type:varchar(10);not null;default:'TENANT';index"`
	LastLoginAt  *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// --- DTOs ---

// AdminCreateUserRequest defines the structure for an admin creating a user
// with an explicit role.
type AdminCreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email,max=255"`
	Password  string  `json:"password" binding:"required,min=8,max=72"`
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,max=100"`
	Phone     *string `json:"phone,omitempty" binding:"omitempty,max=20"`
	Role      string  `json:"role" binding:"required,oneof=ADMIN SELLER TENANT AGENT"`
}

// UserListQuery filters the admin user listing.
type UserListQuery struct {
	common.PaginationQuery
	Role *string `form:"role" binding:"omitempty,oneof=ADMIN SELLER TENANT AGENT"`
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	FirstName   *string     `json:"first_name,omitempty"`
	LastName    *string     `json:"last_name,omitempty"`
	Phone       *string     `json:"phone,omitempty"`
	Role        common.Role `json:"role"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
