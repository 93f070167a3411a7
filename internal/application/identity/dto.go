package identity

import (
	"time"

	"github.com/doorsets/backend/internal/domain/identity"
)

// LoginRequest is the body of /Account/authenticate. Username also accepts an email address.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required,max=72"`
}

// RefreshTokenRequest is the body of /Account/refresh-token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest optionally names the refresh token to revoke with the access token
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RegisterRequest creates a user
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=100"`
	Email       string `json:"email" binding:"omitempty,email,max=255"`
	DisplayName string `json:"displayName" binding:"max=100"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	Role        string `json:"role" binding:"omitempty,oneof=admin staff"`
}

// ChangePasswordRequest changes the caller's own password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}

// BootstrapAdmin describes the account created on an empty database
type BootstrapAdmin struct {
	Username string
	Email    string
	Password string
}

// UserResponse is a user in API responses
type UserResponse struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayNameOrUsername(),
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// TokenResponse is an issued token pair
type TokenResponse struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType"`
}

// LoginResponse is a token pair with the signed-in user
type LoginResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}
