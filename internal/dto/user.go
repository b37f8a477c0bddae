package dto

import "time"

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email,max=255"`
	Password string  `json:"password" binding:"required,min=1"`
	Name     *string `json:"name" binding:"omitempty,max=255"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserProfile is returned by /auth/me and after registration.
type UserProfile struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        *string    `json:"name"`
	PublicSlug  *string    `json:"public_slug"`
	ShareMode   string     `json:"share_mode"`
	EditToken   *string    `json:"edit_token"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at"`
}
