package handler

import (
	"time"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
)

type registerRequest struct {
	Name     string `json:"name"     validate:"required,notblank"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// userSummary is the reduced user view returned with a token.
type userSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	User  userSummary `json:"user"`
	Token string      `json:"token"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserSummary(u *domain.User) userSummary {
	return userSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func toProfileResponse(u *domain.User) profileResponse {
	return profileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
