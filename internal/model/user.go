package model

import "time"

// User represents a registered account in the database.
type User struct {
	ID        int64
	Username  string
	AuthHash  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignupRequest represents an account registration request.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupResponse is the body returned on successful registration.
type SignupResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// TokenResponse is the body returned on successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserResponse represents user data safe for API responses (no credential hash).
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
