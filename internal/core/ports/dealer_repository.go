package ports

import (
	"context"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
)

// SortOrder is the direction of a dealer listing.
type SortOrder int

const (
	SortDesc SortOrder = -1
	SortAsc  SortOrder = 1
)

// ListDealersFilter is a fully normalised listing query.
// Deleted dealers are always excluded by the repository.
type ListDealersFilter struct {
	Search    string // substring of name, email or phone, case-insensitive
	Status    domain.DealerStatus
	Region    string
	SortBy    string // storage field name, already whitelisted
	SortOrder SortOrder
	Page      int // 1-based
	Limit     int
}

// DealerRepository persists dealers. Every read ignores soft-deleted records.
type DealerRepository interface {
	Create(ctx context.Context, d *domain.Dealer) error
	FindByID(ctx context.Context, id string) (*domain.Dealer, error)
	FindActiveByEmail(ctx context.Context, email string) (*domain.Dealer, error)
	// List returns one page of matches and the total match count.
	List(ctx context.Context, filter ListDealersFilter) ([]*domain.Dealer, int64, error)
	Update(ctx context.Context, id string, patch domain.DealerPatch) (*domain.Dealer, error)
	SoftDelete(ctx context.Context, id string) error
}

// DealerStatsReader is the read-only view used for aggregates.
type DealerStatsReader interface {
	// Count counts non-deleted dealers; an empty status counts all of them.
	Count(ctx context.Context, status domain.DealerStatus) (int64, error)
	CountByRegion(ctx context.Context) ([]domain.RegionCount, error)
	Recent(ctx context.Context, limit int) ([]domain.DealerSummary, error)
}

// AuditRepository appends dealer change records.
type AuditRepository interface {
	Record(ctx context.Context, entry domain.AuditEntry) error
}
