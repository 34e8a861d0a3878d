// Package auth implements local user accounts, password hashing, token
// issuance, and the authentication middleware guarding the API.
package auth

import (
	"slices"
	"time"
)

// Role grants a user's privileges.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return slices.Contains([]Role{RoleAdmin, RoleAnalyst}, r)
}

// ProtectedUserID identifies the bootstrap admin, which can never be deleted,
// demoted, or deactivated.
const ProtectedUserID int64 = 1

// User is an account without its password hash.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// RegisterCommand carries the fields for a new account.
// Role is honored only when the caller is an admin.
type RegisterCommand struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

// LoginCommand accepts either a username or an email in Username.
type LoginCommand struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is a signed token and the user it identifies.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// RoleCommand changes a user's role.
type RoleCommand struct {
	Role Role `json:"role"`
}

// StatusCommand activates or deactivates a user.
type StatusCommand struct {
	IsActive *bool `json:"is_active"`
}
