// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// RegisterRequest represents the request body for account registration.
type RegisterRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Reason         string `json:"reason"`
	RecaptchaToken string `json:"recaptcha_token"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents a successful login response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MessageResponse is a generic acknowledgment response.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
