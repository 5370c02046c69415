package asset

import (
	"context"
)

type AssetRepository interface {
	Create(ctx context.Context, newAsset Asset) (Asset, error)
	GetByID(ctx context.Context, id string) (Asset, error)
	List(ctx context.Context, filter Filter) ([]Asset, error)
	CountByType(ctx context.Context, hrEmail string) (map[ProductType]int64, error)
	Update(ctx context.Context, id string, patch Patch) (Asset, error)
	Delete(ctx context.Context, id string) error
	// AdjustQuantity adds adj.Delta to the stored quantity in one atomic
	// guarded step. It fails with ErrInventoryExhausted instead of going below
	// zero and with ErrAssetNotFound when the asset no longer exists. A keyed
	// adjustment that was already applied fails with ErrAdjustmentApplied and
	// changes nothing; the key check comes before the others.
	AdjustQuantity(ctx context.Context, adj Adjustment) (Asset, error)
	// ReleaseAdjustment forgets key. Releasing an unknown key is not an error.
	ReleaseAdjustment(ctx context.Context, assetID string, key string) error
}
