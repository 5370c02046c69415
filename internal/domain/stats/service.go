package stats

import (
	"context"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
)

type StatsService interface {
	HR(ctx context.Context, p *auth.Principal) (HRStatsResponse, error)
	Employee(ctx context.Context, p *auth.Principal) (EmployeeStatsResponse, error)
}
