// Package domain holds account types for register, login and verification
package domain

import "time"

// User is a registered account
type User struct {
	ID           string
	Name         string
	Email        string // stored case-folded
	PasswordHash string
	CreatedAt    time.Time
}

// MinPasswordLen is the minimum accepted password length
const MinPasswordLen = 8

// RegisterInput is the request body for registration
// bind-level tags catch shape errors; the passwords-match rule lives in
// the service so it lands in the same enumerated error list
type RegisterInput struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// LoginInput is the request body for login
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Summary is the public user shape
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthOutput is the response for register and login
type AuthOutput struct {
	Token string  `json:"token"`
	User  Summary `json:"user"`
}
