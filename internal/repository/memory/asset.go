package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
)

type AssetRepository struct {
	s *Store
}

var _ asset.AssetRepository = (*AssetRepository)(nil)

func (r *AssetRepository) Create(ctx context.Context, newAsset asset.Asset) (asset.Asset, error) {
	if newAsset.ProductQuantity < 0 {
		return asset.Asset{}, asset.ErrNegativeQuantity
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	newAsset.ID = r.s.newID()
	newAsset.AddedDate = now
	newAsset.UpdatedAt = now
	r.s.assets[newAsset.ID] = newAsset
	return newAsset, nil
}

func (r *AssetRepository) GetByID(ctx context.Context, id string) (asset.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.assets[id]
	if !ok {
		return asset.Asset{}, asset.ErrAssetNotFound
	}
	return a, nil
}

func (r *AssetRepository) List(ctx context.Context, filter asset.Filter) ([]asset.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]asset.Asset, 0)
	for _, a := range r.s.assets {
		if matchAsset(a, filter) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if filter.SortBy == asset.SortByQuantity && result[i].ProductQuantity != result[j].ProductQuantity {
			return result[i].ProductQuantity > result[j].ProductQuantity
		}
		return r.s.order[result[i].ID] < r.s.order[result[j].ID]
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *AssetRepository) CountByType(ctx context.Context, hrEmail string) (map[asset.ProductType]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[asset.ProductType]int64)
	for _, a := range r.s.assets {
		if strings.EqualFold(a.HREmail, hrEmail) {
			counts[a.ProductType]++
		}
	}
	return counts, nil
}

func (r *AssetRepository) Update(ctx context.Context, id string, patch asset.Patch) (asset.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.assets[id]
	if !ok {
		return asset.Asset{}, asset.ErrAssetNotFound
	}
	if patch.ProductQuantity != nil && *patch.ProductQuantity < 0 {
		return asset.Asset{}, asset.ErrNegativeQuantity
	}
	if patch.ProductName != nil {
		a.ProductName = *patch.ProductName
	}
	if patch.ProductType != nil {
		a.ProductType = *patch.ProductType
	}
	if patch.ProductQuantity != nil {
		a.ProductQuantity = *patch.ProductQuantity
	}
	a.UpdatedAt = r.s.now()
	r.s.assets[id] = a
	return a, nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.assets[id]; !ok {
		return asset.ErrAssetNotFound
	}
	delete(r.s.assets, id)
	return nil
}

func (r *AssetRepository) AdjustQuantity(ctx context.Context, adj asset.Adjustment) (asset.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if adj.Key != "" {
		if _, done := r.s.applied[adj.Key]; done {
			return asset.Asset{}, asset.ErrAdjustmentApplied
		}
	}
	a, ok := r.s.assets[adj.AssetID]
	if !ok {
		return asset.Asset{}, asset.ErrAssetNotFound
	}
	if a.ProductQuantity+adj.Delta < 0 {
		return asset.Asset{}, asset.ErrInventoryExhausted
	}
	a.ProductQuantity += adj.Delta
	a.UpdatedAt = r.s.now()
	r.s.assets[adj.AssetID] = a
	if adj.Key != "" {
		r.s.applied[adj.Key] = adj.AssetID
	}
	return a, nil
}

func (r *AssetRepository) ReleaseAdjustment(ctx context.Context, assetID string, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.applied[key] == assetID {
		delete(r.s.applied, key)
	}
	return nil
}

func matchAsset(a asset.Asset, f asset.Filter) bool {
	if f.HREmail != "" && !strings.EqualFold(a.HREmail, f.HREmail) {
		return false
	}
	if f.Search != "" && !containsFold(a.ProductName, f.Search) {
		return false
	}
	if f.ProductType != nil && a.ProductType != *f.ProductType {
		return false
	}
	if f.OnlyAvailable && a.ProductQuantity <= 0 {
		return false
	}
	if f.BelowQuantity != nil && a.ProductQuantity >= *f.BelowQuantity {
		return false
	}
	return true
}
