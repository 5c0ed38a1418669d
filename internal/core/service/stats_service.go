package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

const recentDealersLimit = 5

// StatsService computes dealer aggregates. The underlying queries run
// concurrently and are not a single snapshot.
type StatsService struct {
	repo   ports.DealerStatsReader
	logger zerolog.Logger
}

func NewStatsService(repo ports.DealerStatsReader, logger zerolog.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger}
}

func (s *StatsService) DealerStats(ctx context.Context) (*domain.DealerStats, error) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	var stats domain.DealerStats
	s.collect(gctx, g, &stats)

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dealer stats: %w", err)
	}

	s.logger.Debug().Dur("took", time.Since(start)).Msg("dealer stats computed")
	return &stats, nil
}

func (s *StatsService) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	var dash domain.DashboardStats
	s.collect(gctx, g, &dash.DealerStats)
	g.Go(func() error {
		recent, err := s.repo.Recent(gctx, recentDealersLimit)
		if err != nil {
			return fmt.Errorf("recent dealers: %w", err)
		}
		dash.RecentDealers = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	if dash.RecentDealers == nil {
		dash.RecentDealers = []domain.DealerSummary{}
	}

	s.logger.Debug().Dur("took", time.Since(start)).Msg("dashboard stats computed")
	return &dash, nil
}

// collect schedules the four independent aggregate queries on g.
func (s *StatsService) collect(ctx context.Context, g *errgroup.Group, stats *domain.DealerStats) {
	g.Go(func() error {
		n, err := s.repo.Count(ctx, "")
		stats.Total = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.Count(ctx, domain.DealerActive)
		stats.Active = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.Count(ctx, domain.DealerInactive)
		stats.Inactive = n
		return err
	})
	g.Go(func() error {
		regions, err := s.repo.CountByRegion(ctx)
		if regions == nil {
			regions = []domain.RegionCount{}
		}
		stats.ByRegion = regions
		return err
	})
}
