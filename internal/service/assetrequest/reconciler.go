package assetrequest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/obs"
)

// ReconcilerImpl applies inventory adjustments that a lifecycle call stored
// on a request but could not write to the asset.
type ReconcilerImpl struct {
	requests  assetrequest.RequestRepository
	inventory asset.InventoryManager
	// settleAfter skips markers younger than this so in-flight calls can
	// clear their own.
	settleAfter time.Duration
	now         func() time.Time
}

func NewReconciler(requestRepository assetrequest.RequestRepository, inventory asset.InventoryManager, settleAfter time.Duration) *ReconcilerImpl {
	return &ReconcilerImpl{
		requests:    requestRepository,
		inventory:   inventory,
		settleAfter: settleAfter,
		now:         time.Now,
	}
}

var _ assetrequest.Reconciler = (*ReconcilerImpl)(nil)

// ReconcilePending implements assetrequest.Reconciler.
func (r *ReconcilerImpl) ReconcilePending(ctx context.Context, limit int) (int, error) {
	pending, err := r.requests.ListPendingAdjustments(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending adjustments: %w", err)
	}

	cutoff := r.now().Add(-r.settleAfter)
	settled := 0
	var errs []error
	for _, req := range pending {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if req.UpdatedAt.After(cutoff) {
			continue
		}

		ok, err := r.reconcile(ctx, req)
		if err != nil {
			slog.Error("failed to reconcile request",
				"request_id", req.ID,
				"asset_id", req.AssetID,
				"delta", req.PendingAdjustment,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("request %s: %w", req.ID, err))
			continue
		}
		if ok {
			settled++
		}
	}

	if settled > 0 {
		obs.RecordReconciled(settled)
		slog.Info("pending inventory adjustments reconciled", "settled", settled, "scanned", len(pending))
	}
	return settled, errors.Join(errs...)
}

func (r *ReconcilerImpl) reconcile(ctx context.Context, req assetrequest.Request) (bool, error) {
	delta := req.PendingAdjustment
	adj := adjustmentOf(req, delta)

	_, err := r.inventory.AdjustQuantity(ctx, adj)
	switch {
	case err == nil || errors.Is(err, asset.ErrAdjustmentApplied):
		return settleAdjustment(ctx, r.requests, r.inventory, req, adj)

	case delta < 0 && (errors.Is(err, asset.ErrInventoryExhausted) || errors.Is(err, asset.ErrAssetNotFound)):
		// the approval cannot be honoured any more; hand it back to review
		_, changed, err := r.requests.Transition(ctx, assetrequest.Transition{
			ID:                req.ID,
			From:              req.Status,
			To:                assetrequest.StatusPending,
			ResetApprovalDate: true,
			MatchAdjustment:   &delta,
		})
		if err != nil {
			return false, err
		}
		if changed {
			slog.Warn("approval reverted during reconciliation", "request_id", req.ID, "asset_id", req.AssetID)
		}
		return changed, nil

	case delta > 0 && errors.Is(err, asset.ErrAssetNotFound):
		slog.Warn("returned asset no longer exists, restock skipped", "request_id", req.ID, "asset_id", req.AssetID)
		return r.requests.ClearPendingAdjustment(ctx, req.ID, delta)

	default:
		return false, err
	}
}
