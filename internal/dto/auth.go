package dto

import "github.com/lessonforge/planner-api/internal/models"

// LoginRequest authenticates a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserInfo is the user summary returned with issued tokens.
type UserInfo struct {
	ID       int64           `json:"id"`
	Email    string          `json:"email"`
	FullName string          `json:"full_name"`
	Role     models.UserRole `json:"role"`
}

// LoginResponse carries an issued access token.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}
