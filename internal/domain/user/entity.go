package user

import "time"

// Roles
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// User represents the users table
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
