package ports

import (
	"context"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
)

type CreateDealerInput struct {
	Name           string
	Email          string
	Phone          string
	Address        string
	OperatingHours string
	Status         string // optional, defaults to ACTIVE
	Region         string
}

// ListDealersInput carries raw listing parameters as received.
type ListDealersInput struct {
	Search    string
	Status    string
	Region    string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type ListDealersResult struct {
	Dealers []*domain.Dealer
	Total   int64
	Page    int
	Limit   int
	Pages   int
}

type DealerService interface {
	Create(ctx context.Context, in CreateDealerInput) (*domain.Dealer, error)
	FindAll(ctx context.Context, in ListDealersInput) (*ListDealersResult, error)
	FindOne(ctx context.Context, id string) (*domain.Dealer, error)
	Update(ctx context.Context, id string, patch domain.DealerPatch) (*domain.Dealer, error)
	Remove(ctx context.Context, id string) error
}

type StatsService interface {
	DealerStats(ctx context.Context) (*domain.DealerStats, error)
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}
