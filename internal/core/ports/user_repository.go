package ports

import (
	"context"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
)

// UserRepository persists staff accounts.
type UserRepository interface {
	// Create stores user and returns it with its assigned ID.
	// Returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// LoginThrottle counts failed logins per email.
type LoginThrottle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
