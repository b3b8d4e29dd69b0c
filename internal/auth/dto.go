// AngelaMos | 2026
// dto.go

package auth

import (
	"time"
)

type RegisterRequest struct {
	Name     string  `json:"name"             validate:"required,min=1,max=100"`
	Email    string  `json:"email"            validate:"required,email,max=255"`
	Phone    *string `json:"phone,omitempty"  validate:"omitempty,e164"`
	Gender   string  `json:"gender,omitempty" validate:"omitempty,oneof=m f o"`
	Password string  `json:"password"         validate:"required,min=8,max=128"`
}

// LoginRequest accepts either an email or a phone number as the login
// identifier. Exactly one must be set.
type LoginRequest struct {
	Email    string `json:"email,omitempty" validate:"required_without=Phone,excluded_with=Phone,omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"required_without=Email,omitempty,e164"`
	Password string `json:"password"        validate:"required"`
}

type VerifyLoginRequest struct {
	Code string `json:"code" validate:"required,numeric,min=4,max=10"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UserSummary struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Tier       int    `json:"tier"`
	Verified   bool   `json:"verified"`
	MFAEnabled bool   `json:"mfa_enabled"`
}

// AuthResponse is returned by login, verify-login and the OAuth callback.
// When the account has a second factor enabled, Tokens is nil and MFAPending
// is set; the client finishes with POST /auth/verify-login.
type AuthResponse struct {
	User       UserSummary    `json:"user"`
	Tokens     *TokenResponse `json:"tokens,omitempty"`
	MFAPending bool           `json:"mfa_pending,omitempty"`
	Message    string         `json:"message,omitempty"`
}

type RegisterResponse struct {
	User    UserSummary `json:"user"`
	Message string      `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
