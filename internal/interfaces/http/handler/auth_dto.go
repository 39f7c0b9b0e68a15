package handler

import (
	"time"

	"github.com/google/uuid"
)

// Credentials shared by signup and login. Email length follows the
// RFC 5321 address limit; password bounds match what the identity
// domain accepts.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=320"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=320"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse is the bearer pair embedded in auth responses.
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthUserResponse is the public slice of an account: no password
// material ever leaves the identity layer.
type AuthUserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LoginResponse is returned by both login and signup.
type LoginResponse struct {
	Token TokenResponse    `json:"token"`
	User  AuthUserResponse `json:"user"`
}

type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}

type CurrentUserResponse struct {
	User AuthUserResponse `json:"user"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
