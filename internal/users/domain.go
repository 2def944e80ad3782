package users

import (
	"time"

	"github.com/credisphere/credisphere/internal/rbac"
)

// User represents a user account for management.
type User struct {
	ID        int64         `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Role      rbac.RoleName `json:"role"`
	IsActive  bool          `json:"is_active"`
	ClubID    *int64        `json:"club_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CreateRequest is the payload of POST /users.
type CreateRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required"`
	ClubID   *int64 `json:"club_id" validate:"omitempty,gt=0"`
}

// UpdateRequest is the payload of PUT /users/{id}. Nil fields are unchanged.
type UpdateRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	ClubID   *int64  `json:"club_id" validate:"omitempty,gt=0"`
}

// record is the persisted form including the password hash.
type record struct {
	User
	PasswordHash string
}
