package identity

import "time"

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a freshly minted bearer token.
type AuthResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// RegisterRequest is the request body for POST /api/auth/register. The email
// doubles as the username.
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,max=256"`
	LastName  string `json:"lastName" binding:"omitempty,max=256"`
	Email     string `json:"email" binding:"required,email,max=256"`
	Password  string `json:"password" binding:"required"`
}

// ResetPasswordRequest is the request body for POST /api/auth/resetpassword.
type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordResponse carries the single-use password reset token.
type ResetPasswordResponse struct {
	Token string `json:"token"`
}

// UpdatePasswordRequest is the request body for POST /api/auth/updatepassword.
type UpdatePasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// User is the profile returned by GET /api/me.
type User struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
}
