package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User models a staff account allowed to operate the admin API.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ValidRole reports whether role is one the API knows about.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Principal is the identity proven by a verified bearer token.
type Principal struct {
	UserID string
	Email  string
	Role   string
}
