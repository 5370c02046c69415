package asset

import (
	"context"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
)

type AssetService interface {
	Create(ctx context.Context, p *auth.Principal, req CreateAssetRequest) (Asset, error)
	Update(ctx context.Context, p *auth.Principal, req UpdateAssetRequest) (Asset, error)
	Delete(ctx context.Context, p *auth.Principal, id string) error
	Get(ctx context.Context, p *auth.Principal, id string) (Asset, error)
	List(ctx context.Context, p *auth.Principal, query ListAssetsQuery) ([]Asset, error)
	ListAvailable(ctx context.Context, p *auth.Principal, hrEmail string, query ListAssetsQuery) ([]Asset, error)
}

// InventoryManager is the only writer of ProductQuantity outside admin edits
type InventoryManager interface {
	AdjustQuantity(ctx context.Context, adj Adjustment) (Asset, error)
	ReleaseAdjustment(ctx context.Context, assetID string, key string) error
}
