package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/stats"
	accessservice "github.com/cmlabs-hris/assetverse-backend-go/internal/service/access"
	"golang.org/x/sync/errgroup"
)

// Options tunes the dashboards
type Options struct {
	LowStockThreshold int
	PendingPreview    int
	Location          *time.Location
}

type StatsServiceImpl struct {
	assets   asset.AssetRepository
	requests assetrequest.RequestRepository
	policy   accessservice.Policy
	opts     Options
	now      func() time.Time
}

func NewStatsService(assetRepository asset.AssetRepository, requestRepository assetrequest.RequestRepository, policy accessservice.Policy, opts Options) stats.StatsService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &StatsServiceImpl{
		assets:   assetRepository,
		requests: requestRepository,
		policy:   policy,
		opts:     opts,
		now:      time.Now,
	}
}

// HR implements stats.StatsService.
// The three reads run in parallel and are not a single snapshot.
func (s *StatsServiceImpl) HR(ctx context.Context, p *auth.Principal) (stats.HRStatsResponse, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionStatsHR)
	if err != nil {
		return stats.HRStatsResponse{}, err
	}

	var (
		pending []assetrequest.Request
		limited []asset.Asset
		byType  map[asset.ProductType]int64
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Newest pending requests, capped to the preview size
	g.Go(func() error {
		status := assetrequest.StatusPending
		result, err := s.requests.List(gCtx, assetrequest.Filter{
			HREmail: caller.Email,
			Status:  &status,
			Limit:   s.opts.PendingPreview,
		})
		if err != nil {
			return fmt.Errorf("failed to list pending requests: %w", err)
		}
		pending = result
		return nil
	})

	// 2. Assets running low
	g.Go(func() error {
		threshold := s.opts.LowStockThreshold
		result, err := s.assets.List(gCtx, asset.Filter{
			HREmail:       caller.Email,
			BelowQuantity: &threshold,
		})
		if err != nil {
			return fmt.Errorf("failed to list limited stock: %w", err)
		}
		limited = result
		return nil
	})

	// 3. Asset count per product type
	g.Go(func() error {
		result, err := s.assets.CountByType(gCtx, caller.Email)
		if err != nil {
			return fmt.Errorf("failed to count assets by type: %w", err)
		}
		byType = result
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats.HRStatsResponse{}, err
	}

	chart := make([]stats.ChartPoint, 0, len(asset.ProductTypes))
	for _, t := range asset.ProductTypes {
		chart = append(chart, stats.ChartPoint{Name: string(t), Value: byType[t]})
	}

	return stats.HRStatsResponse{
		PendingRequests: pending,
		LimitedStock:    limited,
		ChartData:       chart,
	}, nil
}

// Employee implements stats.StatsService.
// The month is compared by year and month in the configured time zone.
func (s *StatsServiceImpl) Employee(ctx context.Context, p *auth.Principal) (stats.EmployeeStatsResponse, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionStatsEmployee)
	if err != nil {
		return stats.EmployeeStatsResponse{}, err
	}

	now := s.now().In(s.opts.Location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.opts.Location)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var (
		pending []assetrequest.Request
		monthly int64
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		status := assetrequest.StatusPending
		result, err := s.requests.List(gCtx, assetrequest.Filter{
			UserEmail: caller.Email,
			Status:    &status,
		})
		if err != nil {
			return fmt.Errorf("failed to list pending requests: %w", err)
		}
		pending = result
		return nil
	})

	g.Go(func() error {
		count, err := s.requests.Count(gCtx, assetrequest.Filter{
			UserEmail:     caller.Email,
			RequestedFrom: &monthStart,
			RequestedTo:   &nextMonth,
		})
		if err != nil {
			return fmt.Errorf("failed to count monthly requests: %w", err)
		}
		monthly = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats.EmployeeStatsResponse{}, err
	}

	return stats.EmployeeStatsResponse{
		PendingRequests: pending,
		MonthlyCount:    monthly,
		Month:           monthStart.Format("2006-01"),
	}, nil
}
