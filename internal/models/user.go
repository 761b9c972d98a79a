package models

import (
	"time"
)

// User represents a site member account
type User struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"`
	Active       bool       `json:"active" db:"active"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// ValidRoles defines allowed user roles
var ValidRoles = map[string]bool{
	"admin":  true,
	"editor": true,
	"viewer": true,
}

// SeedUser is a first-run bootstrap account
type SeedUser struct {
	Name     string
	Username string
	Password string
	Role     string
}

// SeedUsers are created on startup when their usernames are absent
var SeedUsers = []SeedUser{
	{Name: "Almir", Username: "almir", Password: "1515", Role: "admin"},
	{Name: "Secretaria", Username: "secretaria", Password: "ipb2024", Role: "editor"},
}

// LoginRequest is the credentials payload for POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CreateUserRequest is the admin payload for POST /users
type CreateUserRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest is the admin payload for PUT /users/:id.
// Pointer fields are left unchanged when omitted.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
	Password *string `json:"password,omitempty"` // optional reset
}
