package auth

import (
	"time"

	"github.com/credisphere/credisphere/internal/rbac"
)

// User represents an account able to authenticate.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         rbac.RoleName
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal converts the account into the request principal.
func (u *User) Principal() *rbac.Principal {
	return &rbac.Principal{ID: u.ID, Email: u.Email, Role: u.Role, Active: u.IsActive}
}

// UserView is the public projection returned to clients.
type UserView struct {
	ID     int64         `json:"id"`
	Email  string        `json:"email"`
	Name   string        `json:"name"`
	Role   rbac.RoleName `json:"role"`
	Active bool          `json:"is_active"`
}

// View returns the public projection of u.
func (u *User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Active: u.IsActive}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}
