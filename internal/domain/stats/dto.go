package stats

import (
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
)

// ChartPoint is one slice of the asset type pie chart
type ChartPoint struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// HRStatsResponse is the HR dashboard
type HRStatsResponse struct {
	PendingRequests []assetrequest.Request `json:"pendingRequests"`
	LimitedStock    []asset.Asset          `json:"limitedStock"`
	ChartData       []ChartPoint           `json:"chartData"`
}

// EmployeeStatsResponse is the employee dashboard
type EmployeeStatsResponse struct {
	PendingRequests []assetrequest.Request `json:"pendingRequests"`
	MonthlyCount    int64                  `json:"monthlyCount"` // requests made in the current calendar month
	Month           string                 `json:"month"`        // Format: "YYYY-MM"
}
