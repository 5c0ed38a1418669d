// Package seed resets the users and dealers collections to a known fixture
// set for local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

type UserStore interface {
	ports.UserRepository
	DeleteAll(ctx context.Context) error
}

type DealerStore interface {
	ports.DealerRepository
	DeleteAll(ctx context.Context) error
}

type seedUser struct {
	name, email, password, role string
}

var users = []seedUser{
	{"Admin User", "admin@example.com", "admin123", domain.RoleAdmin},
	{"Regular User", "user@example.com", "user123", domain.RoleUser},
}

var dealers = []domain.Dealer{
	{
		Name:           "ABC Motors",
		Email:          "abc@motors.com",
		Phone:          "+1-555-0101",
		Address:        "123 Main St, New York, NY 10001",
		OperatingHours: "9:00 AM - 6:00 PM",
		Status:         domain.DealerActive,
		Region:         "North",
	},
	{
		Name:           "XYZ Auto Sales",
		Email:          "xyz@autosales.com",
		Phone:          "+1-555-0102",
		Address:        "456 Oak Ave, Los Angeles, CA 90001",
		OperatingHours: "8:00 AM - 7:00 PM",
		Status:         domain.DealerActive,
		Region:         "West",
	},
	{
		Name:           "Premium Autos",
		Email:          "premium@autos.com",
		Phone:          "+1-555-0103",
		Address:        "789 Elm St, Chicago, IL 60601",
		OperatingHours: "10:00 AM - 5:00 PM",
		Status:         domain.DealerInactive,
		Region:         "Central",
	},
}

// Run wipes both stores and inserts the fixture users and dealers.
func Run(ctx context.Context, us UserStore, ds DealerStore, log zerolog.Logger) error {
	if err := us.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}
	if err := ds.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear dealers: %w", err)
	}

	now := time.Now().UTC()
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.email, err)
		}
		created, err := us.Create(ctx, &domain.User{
			Name:         u.name,
			Email:        u.email,
			PasswordHash: string(hash),
			Role:         u.role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		log.Info().Str("email", created.Email).Str("role", created.Role).Msg("seeded user")
	}

	for i := range dealers {
		d := dealers[i]
		d.CreatedAt = now
		d.UpdatedAt = now
		if err := ds.Create(ctx, &d); err != nil {
			return fmt.Errorf("create dealer %s: %w", d.Email, err)
		}
		log.Info().Str("id", d.ID).Str("name", d.Name).Msg("seeded dealer")
	}

	log.Info().Int("users", len(users)).Int("dealers", len(dealers)).Msg("seed complete")
	return nil
}
