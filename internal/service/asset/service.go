package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/obs"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/validator"
	accessservice "github.com/cmlabs-hris/assetverse-backend-go/internal/service/access"
)

type AssetServiceImpl struct {
	asset.AssetRepository
	requests assetrequest.RequestRepository
	policy   accessservice.Policy
}

func NewAssetService(assetRepository asset.AssetRepository, requestRepository assetrequest.RequestRepository, policy accessservice.Policy) *AssetServiceImpl {
	return &AssetServiceImpl{
		AssetRepository: assetRepository,
		requests:        requestRepository,
		policy:          policy,
	}
}

var (
	_ asset.AssetService     = (*AssetServiceImpl)(nil)
	_ asset.InventoryManager = (*AssetServiceImpl)(nil)
)

// Create implements asset.AssetService.
// Subtle: this method shadows the method (AssetRepository).Create of AssetServiceImpl.AssetRepository.
func (s *AssetServiceImpl) Create(ctx context.Context, p *auth.Principal, req asset.CreateAssetRequest) (asset.Asset, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionAssetManage)
	if err != nil {
		return asset.Asset{}, err
	}
	if err := req.Validate(); err != nil {
		return asset.Asset{}, err
	}

	created, err := s.AssetRepository.Create(ctx, asset.Asset{
		HREmail:         caller.Email,
		ProductName:     req.ProductName,
		ProductType:     req.ProductType,
		ProductQuantity: req.ProductQuantity.Value,
	})
	if err != nil {
		return asset.Asset{}, fmt.Errorf("failed to create asset: %w", err)
	}

	slog.Info("asset created", "asset_id", created.ID, "hr_email", caller.Email, "quantity", created.ProductQuantity)
	return created, nil
}

// Update implements asset.AssetService.
// Subtle: this method shadows the method (AssetRepository).Update of AssetServiceImpl.AssetRepository.
func (s *AssetServiceImpl) Update(ctx context.Context, p *auth.Principal, req asset.UpdateAssetRequest) (asset.Asset, error) {
	if _, err := s.ownedAsset(ctx, p, req.ID); err != nil {
		return asset.Asset{}, err
	}
	if err := req.Validate(); err != nil {
		return asset.Asset{}, err
	}

	updated, err := s.AssetRepository.Update(ctx, req.ID, req.ToPatch())
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) || errors.Is(err, asset.ErrNegativeQuantity) {
			return asset.Asset{}, err
		}
		return asset.Asset{}, fmt.Errorf("failed to update asset: %w", err)
	}
	return updated, nil
}

// Delete implements asset.AssetService.
// An asset is kept while any request still holds or awaits one of its units.
// Subtle: this method shadows the method (AssetRepository).Delete of AssetServiceImpl.AssetRepository.
func (s *AssetServiceImpl) Delete(ctx context.Context, p *auth.Principal, id string) error {
	if _, err := s.ownedAsset(ctx, p, id); err != nil {
		return err
	}

	outstanding, err := s.requests.CountOutstanding(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count outstanding requests: %w", err)
	}
	if outstanding > 0 {
		return asset.ErrAssetInUse
	}

	if err := s.AssetRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	slog.Info("asset deleted", "asset_id", id, "hr_email", p.Email)
	return nil
}

// Get implements asset.AssetService.
func (s *AssetServiceImpl) Get(ctx context.Context, p *auth.Principal, id string) (asset.Asset, error) {
	return s.ownedAsset(ctx, p, id)
}

// List implements asset.AssetService.
// Subtle: this method shadows the method (AssetRepository).List of AssetServiceImpl.AssetRepository.
func (s *AssetServiceImpl) List(ctx context.Context, p *auth.Principal, query asset.ListAssetsQuery) ([]asset.Asset, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionAssetManage)
	if err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	assets, err := s.AssetRepository.List(ctx, query.ToFilter(caller.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// ListAvailable implements asset.AssetService.
func (s *AssetServiceImpl) ListAvailable(ctx context.Context, p *auth.Principal, hrEmail string, query asset.ListAssetsQuery) ([]asset.Asset, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionAssetBrowse)
	if err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	hrEmail = validator.NormalizeEmail(hrEmail)
	var scope string
	switch {
	case caller.IsHR():
		scope = caller.Email
	case caller.IsAffiliated():
		scope = *caller.HREmail
	}
	if scope == "" || !strings.EqualFold(scope, hrEmail) {
		return nil, access.ErrForbidden
	}

	filter := query.ToFilter(scope)
	filter.OnlyAvailable = true
	assets, err := s.AssetRepository.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list available assets: %w", err)
	}
	return assets, nil
}

// AdjustQuantity implements asset.InventoryManager.
// Subtle: this method shadows the method (AssetRepository).AdjustQuantity of AssetServiceImpl.AssetRepository.
func (s *AssetServiceImpl) AdjustQuantity(ctx context.Context, adj asset.Adjustment) (asset.Asset, error) {
	if adj.Delta == 0 {
		return asset.Asset{}, asset.ErrInvalidAdjustment
	}

	adjusted, err := s.AssetRepository.AdjustQuantity(ctx, adj)
	switch {
	case err == nil:
		obs.RecordInventoryAdjustment(obs.OutcomeApplied)
		return adjusted, nil
	case errors.Is(err, asset.ErrAdjustmentApplied):
		obs.RecordInventoryAdjustment(obs.OutcomeNoop)
		slog.Info("inventory adjustment already applied", "asset_id", adj.AssetID, "key", adj.Key)
		return asset.Asset{}, err
	case errors.Is(err, asset.ErrInventoryExhausted):
		obs.RecordInventoryAdjustment(obs.OutcomeExhausted)
		slog.Warn("inventory exhausted", "asset_id", adj.AssetID, "delta", adj.Delta)
		return asset.Asset{}, err
	case errors.Is(err, asset.ErrAssetNotFound):
		obs.RecordInventoryAdjustment(obs.OutcomeNotFound)
		return asset.Asset{}, err
	default:
		obs.RecordInventoryAdjustment(obs.OutcomeError)
		return asset.Asset{}, fmt.Errorf("failed to adjust asset quantity: %w", err)
	}
}

// ReleaseAdjustment implements asset.InventoryManager.
// Subtle: this method shadows the method (AssetRepository).ReleaseAdjustment of AssetServiceImpl.AssetRepository.
func (s *AssetServiceImpl) ReleaseAdjustment(ctx context.Context, assetID string, key string) error {
	if err := s.AssetRepository.ReleaseAdjustment(ctx, assetID, key); err != nil {
		return fmt.Errorf("failed to release inventory adjustment: %w", err)
	}
	return nil
}

// ownedAsset authorizes p for asset management and loads id, reporting an
// asset of another HR as not found.
func (s *AssetServiceImpl) ownedAsset(ctx context.Context, p *auth.Principal, id string) (asset.Asset, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionAssetManage)
	if err != nil {
		return asset.Asset{}, err
	}
	if strings.TrimSpace(id) == "" {
		return asset.Asset{}, asset.ErrAssetNotFound
	}

	a, err := s.AssetRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			return asset.Asset{}, err
		}
		return asset.Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}

	err = access.Authorize(p, caller.Role, access.ActionAssetManage, access.Resource{OwnerEmail: a.HREmail})
	if err != nil {
		return asset.Asset{}, access.Conceal(err, asset.ErrAssetNotFound)
	}
	return a, nil
}
