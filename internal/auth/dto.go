package auth

import "github.com/angelmondragon/storefront-backend/internal/users"

// SignupRequest is the registration payload.
type SignupRequest struct {
	Email           string `json:"email" validate:"required,email,max=100"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Password        string `json:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" validate:"required,min=6"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// LogoutRequest optionally names the refresh token to revoke.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// SignupResponse is returned with 201 after registration.
type SignupResponse struct {
	Access  string            `json:"access"`
	Refresh string            `json:"refresh"`
	User    *users.ProfileDTO `json:"user"`
}

// LoginResponse contains the tokens and user snapshot produced by a successful login.
type LoginResponse struct {
	Access  string            `json:"access"`
	Refresh string            `json:"refresh"`
	User    *users.SummaryDTO `json:"user"`
}

// RefreshResponse carries the newly minted access token.
type RefreshResponse struct {
	Access string `json:"access"`
}
