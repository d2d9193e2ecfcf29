package domain

import (
	"strings"
	"time"
)

// Role enumerates account roles.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// ParseRole normalizes a role string. Empty input yields RoleEmployee.
func ParseRole(raw string) (Role, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return RoleEmployee, true
	}
	role := Role(raw)
	return role, role.Valid()
}

// User is an employee or administrator account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Summary strips the user down to the identity fields attached to complaints.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Department: u.Department}
}

// UserSummary is the credential-free identity attached to complaint views.
type UserSummary struct {
	ID         string
	Name       string
	Email      string
	Department string
}
