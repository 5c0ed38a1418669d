package domain

import (
	"strings"
	"time"
)

type DealerStatus string

const (
	DealerActive   DealerStatus = "ACTIVE"
	DealerInactive DealerStatus = "INACTIVE"
)

func (s DealerStatus) Valid() bool {
	return s == DealerActive || s == DealerInactive
}

// Dealer is a dealership record. Removal only flips IsDeleted.
type Dealer struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	Address        string       `json:"address"`
	OperatingHours string       `json:"operatingHours"`
	Status         DealerStatus `json:"status"`
	Region         string       `json:"region"`
	IsDeleted      bool         `json:"isDeleted"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// DealerPatch carries a partial update; nil fields are left untouched.
type DealerPatch struct {
	Name           *string
	Email          *string
	Phone          *string
	Address        *string
	OperatingHours *string
	Status         *DealerStatus
	Region         *string
}

func (p DealerPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Address == nil &&
		p.OperatingHours == nil && p.Status == nil && p.Region == nil
}

// NormalizeEmail is the canonical form used for storage and uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegionCount is one row of the per-region breakdown.
type RegionCount struct {
	Region string `json:"_id" bson:"_id"`
	Count  int64  `json:"count" bson:"count"`
}

type DealerStats struct {
	Total    int64         `json:"total"`
	Active   int64         `json:"active"`
	Inactive int64         `json:"inactive"`
	ByRegion []RegionCount `json:"byRegion"`
}

// DealerSummary is the reduced projection shown on the dashboard.
type DealerSummary struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Region    string       `json:"region"`
	Status    DealerStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
}

type DashboardStats struct {
	DealerStats
	RecentDealers []DealerSummary `json:"recentDealers"`
}
