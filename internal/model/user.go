package model

import (
	"strconv"
	"time"
)

// Role is an authorization level carried in issued tokens.
type Role string

const (
	RoleUser    Role = "User"
	RoleTrainer Role = "Trainer"
	RoleAdmin   Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTrainer, RoleAdmin:
		return true
	default:
		return false
	}
}

// User is an account of the auth module. PasswordHash never leaves the auth service.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	IsActive     bool       `json:"is_active"`
}

// Public returns a copy stripped of the password hash.
func (u User) Public() User {
	out := u
	out.PasswordHash = ""
	if u.LastLoginAt != nil {
		ts := *u.LastLoginAt
		out.LastLoginAt = &ts
	}
	return out
}

// Subject is the user id as carried in token claims.
func (u User) Subject() string { return strconv.FormatInt(u.ID, 10) }

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}
