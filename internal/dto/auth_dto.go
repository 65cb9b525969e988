package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/cashcollect-backend/internal/models"
	"github.com/google/uuid"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	FirstLogin   bool         `json:"first_login"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID         uuid.UUID   `json:"id"`
	Username   string      `json:"username"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	Gender     string      `json:"gender,omitempty"`
	Telephone  string      `json:"telephone,omitempty"`
	Active     bool        `json:"active"`
	FirstLogin bool        `json:"first_login"`
	Bootstrap  bool        `json:"bootstrap,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		Gender:     u.Gender,
		Telephone:  u.Telephone,
		Active:     u.Active,
		FirstLogin: u.FirstLogin,
		Bootstrap:  u.Bootstrap,
		CreatedAt:  u.CreatedAt,
	}
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Driver    string `json:"driver"`
}
