package ports

import (
	"context"
	"time"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// TokenVerifier is the gate every protected operation passes through.
type TokenVerifier interface {
	Verify(token string) (*domain.Principal, error)
}

type AuthService interface {
	TokenVerifier
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
}
