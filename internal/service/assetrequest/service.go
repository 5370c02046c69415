package assetrequest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/obs"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/sse"
	accessservice "github.com/cmlabs-hris/assetverse-backend-go/internal/service/access"
)

// Transition names used in metrics and logs
const (
	transitionCreate  = "create"
	transitionApprove = "approve"
	transitionReject  = "reject"
	transitionReturn  = "return"
	transitionCancel  = "cancel"
)

// EventPublisher delivers request events to connected users
type EventPublisher interface {
	PublishToMany(emails []string, event sse.Event)
}

type RequestServiceImpl struct {
	requests  assetrequest.RequestRepository
	assets    asset.AssetRepository
	inventory asset.InventoryManager
	policy    accessservice.Policy
	events    EventPublisher
	now       func() time.Time
}

func NewRequestService(
	requestRepository assetrequest.RequestRepository,
	assetRepository asset.AssetRepository,
	inventory asset.InventoryManager,
	policy accessservice.Policy,
	events EventPublisher,
) assetrequest.RequestService {
	return &RequestServiceImpl{
		requests:  requestRepository,
		assets:    assetRepository,
		inventory: inventory,
		policy:    policy,
		events:    events,
		now:       time.Now,
	}
}

// Create implements assetrequest.RequestService.
// The quantity check is advisory; stock is only taken on approval.
func (s *RequestServiceImpl) Create(ctx context.Context, p *auth.Principal, req assetrequest.CreateRequestRequest) (assetrequest.Request, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionRequestCreate)
	if err != nil {
		return assetrequest.Request{}, err
	}
	if err := req.Validate(); err != nil {
		return assetrequest.Request{}, err
	}
	if !caller.IsAffiliated() {
		return assetrequest.Request{}, asset.ErrAssetNotFound
	}

	requested, err := s.assets.GetByID(ctx, req.AssetID)
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			return assetrequest.Request{}, err
		}
		return assetrequest.Request{}, fmt.Errorf("failed to get asset: %w", err)
	}
	if !strings.EqualFold(requested.HREmail, *caller.HREmail) {
		return assetrequest.Request{}, asset.ErrAssetNotFound
	}
	if !requested.IsAvailable() {
		obs.RecordTransition(transitionCreate, obs.OutcomeExhausted)
		return assetrequest.Request{}, asset.ErrInventoryExhausted
	}

	created, err := s.requests.Create(ctx, assetrequest.Request{
		AssetID:     requested.ID,
		HREmail:     requested.HREmail,
		UserEmail:   caller.Email,
		UserName:    caller.Name,
		ProductName: requested.ProductName,
		ProductType: requested.ProductType,
		Status:      assetrequest.StatusPending,
		Note:        req.Note,
		RequestDate: s.now(),
	})
	if err != nil {
		obs.RecordTransition(transitionCreate, obs.OutcomeError)
		return assetrequest.Request{}, fmt.Errorf("failed to create request: %w", err)
	}

	obs.RecordTransition(transitionCreate, obs.OutcomeApplied)
	slog.Info("asset requested", "request_id", created.ID, "asset_id", created.AssetID, "user_email", created.UserEmail)
	s.publish("request.created", created, created.HREmail)
	return created, nil
}

// ListAll implements assetrequest.RequestService.
func (s *RequestServiceImpl) ListAll(ctx context.Context, p *auth.Principal, query assetrequest.ListAllQuery) ([]assetrequest.Request, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionRequestViewAll)
	if err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	requests, err := s.requests.List(ctx, query.ToFilter(caller.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

// ListMine implements assetrequest.RequestService.
func (s *RequestServiceImpl) ListMine(ctx context.Context, p *auth.Principal, query assetrequest.ListMineQuery) ([]assetrequest.Request, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionRequestViewOwn)
	if err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	requests, err := s.requests.List(ctx, query.ToFilter(caller.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, nil
}

// Approve implements assetrequest.RequestService.
func (s *RequestServiceImpl) Approve(ctx context.Context, p *auth.Principal, id string) (assetrequest.TransitionResult, error) {
	if _, err := s.load(ctx, p, id, access.ActionRequestReview); err != nil {
		return assetrequest.TransitionResult{}, err
	}

	now := s.now()
	approved, changed, err := s.requests.Transition(ctx, assetrequest.Transition{
		ID:           id,
		From:         assetrequest.StatusPending,
		To:           assetrequest.StatusApproved,
		ApprovalDate: &now,
		Adjustment:   -1,
	})
	if err != nil {
		obs.RecordTransition(transitionApprove, obs.OutcomeError)
		return assetrequest.TransitionResult{}, fmt.Errorf("failed to approve request: %w", err)
	}
	if !changed {
		obs.RecordTransition(transitionApprove, obs.OutcomeNoop)
		return assetrequest.TransitionResult{Request: approved}, nil
	}

	adj := adjustmentOf(approved, -1)
	if _, err := s.inventory.AdjustQuantity(ctx, adj); err != nil && !errors.Is(err, asset.ErrAdjustmentApplied) {
		if errors.Is(err, asset.ErrInventoryExhausted) || errors.Is(err, asset.ErrAssetNotFound) {
			s.revertApproval(ctx, approved)
			obs.RecordTransition(transitionApprove, outcomeOf(err))
			return assetrequest.TransitionResult{}, err
		}
		obs.RecordTransition(transitionApprove, obs.OutcomeError)
		slog.Error("approval stored without inventory adjustment",
			"request_id", approved.ID,
			"asset_id", approved.AssetID,
			"error", err,
		)
		return assetrequest.TransitionResult{}, &assetrequest.InventorySyncError{
			RequestID: approved.ID,
			AssetID:   approved.AssetID,
			Delta:     -1,
			Err:       err,
		}
	}

	approved = s.settle(ctx, approved, adj)
	obs.RecordTransition(transitionApprove, obs.OutcomeApplied)
	slog.Info("request approved", "request_id", approved.ID, "asset_id", approved.AssetID, "hr_email", p.Email)
	s.publish("request.approved", approved, approved.UserEmail, approved.HREmail)
	return assetrequest.TransitionResult{Request: approved, Changed: true}, nil
}

// Reject implements assetrequest.RequestService.
func (s *RequestServiceImpl) Reject(ctx context.Context, p *auth.Principal, id string) (assetrequest.TransitionResult, error) {
	if _, err := s.load(ctx, p, id, access.ActionRequestReview); err != nil {
		return assetrequest.TransitionResult{}, err
	}

	now := s.now()
	rejected, changed, err := s.requests.Transition(ctx, assetrequest.Transition{
		ID:           id,
		From:         assetrequest.StatusPending,
		To:           assetrequest.StatusRejected,
		ApprovalDate: &now,
	})
	if err != nil {
		obs.RecordTransition(transitionReject, obs.OutcomeError)
		return assetrequest.TransitionResult{}, fmt.Errorf("failed to reject request: %w", err)
	}
	if !changed {
		obs.RecordTransition(transitionReject, obs.OutcomeNoop)
		return assetrequest.TransitionResult{Request: rejected}, nil
	}

	obs.RecordTransition(transitionReject, obs.OutcomeApplied)
	s.publish("request.rejected", rejected, rejected.UserEmail, rejected.HREmail)
	return assetrequest.TransitionResult{Request: rejected, Changed: true}, nil
}

// Return implements assetrequest.RequestService.
func (s *RequestServiceImpl) Return(ctx context.Context, p *auth.Principal, id string) (assetrequest.TransitionResult, error) {
	current, err := s.load(ctx, p, id, access.ActionRequestReturn)
	if err != nil {
		return assetrequest.TransitionResult{}, err
	}
	if !current.IsReturnable() {
		return assetrequest.TransitionResult{}, assetrequest.ErrNotReturnable
	}

	now := s.now()
	noneOwed := 0
	returned, changed, err := s.requests.Transition(ctx, assetrequest.Transition{
		ID:              id,
		From:            assetrequest.StatusApproved,
		To:              assetrequest.StatusReturned,
		ReturnDate:      &now,
		Adjustment:      1,
		MatchAdjustment: &noneOwed,
	})
	if err != nil {
		obs.RecordTransition(transitionReturn, obs.OutcomeError)
		return assetrequest.TransitionResult{}, fmt.Errorf("failed to return request: %w", err)
	}
	if !changed {
		obs.RecordTransition(transitionReturn, obs.OutcomeNoop)
		return assetrequest.TransitionResult{Request: returned}, nil
	}

	adj := adjustmentOf(returned, 1)
	if _, err := s.inventory.AdjustQuantity(ctx, adj); err != nil && !errors.Is(err, asset.ErrAdjustmentApplied) {
		if !errors.Is(err, asset.ErrAssetNotFound) {
			obs.RecordTransition(transitionReturn, obs.OutcomeError)
			slog.Error("return stored without inventory adjustment",
				"request_id", returned.ID,
				"asset_id", returned.AssetID,
				"error", err,
			)
			return assetrequest.TransitionResult{}, &assetrequest.InventorySyncError{
				RequestID: returned.ID,
				AssetID:   returned.AssetID,
				Delta:     1,
				Err:       err,
			}
		}
		slog.Warn("returned asset no longer exists, restock skipped", "request_id", returned.ID, "asset_id", returned.AssetID)
	}

	returned = s.settle(ctx, returned, adj)
	obs.RecordTransition(transitionReturn, obs.OutcomeApplied)
	s.publish("request.returned", returned, returned.UserEmail, returned.HREmail)
	return assetrequest.TransitionResult{Request: returned, Changed: true}, nil
}

// Cancel implements assetrequest.RequestService.
func (s *RequestServiceImpl) Cancel(ctx context.Context, p *auth.Principal, id string) (assetrequest.TransitionResult, error) {
	current, err := s.load(ctx, p, id, access.ActionRequestCancel)
	if err != nil {
		return assetrequest.TransitionResult{}, err
	}

	deleted, err := s.requests.DeletePending(ctx, id, current.UserEmail)
	if err != nil {
		obs.RecordTransition(transitionCancel, obs.OutcomeError)
		return assetrequest.TransitionResult{}, fmt.Errorf("failed to cancel request: %w", err)
	}
	if !deleted {
		obs.RecordTransition(transitionCancel, obs.OutcomeNoop)
		if stored, err := s.requests.GetByID(ctx, id); err == nil {
			current = stored
		}
		return assetrequest.TransitionResult{Request: current}, nil
	}

	obs.RecordTransition(transitionCancel, obs.OutcomeApplied)
	s.publish("request.cancelled", current, current.UserEmail, current.HREmail)
	return assetrequest.TransitionResult{Request: current, Changed: true}, nil
}

// load authorizes action and returns request id when it is in the caller's
// scope. Reviews are scoped to the owning HR, everything else to the requester.
func (s *RequestServiceImpl) load(ctx context.Context, p *auth.Principal, id string, action access.Action) (assetrequest.Request, error) {
	caller, err := s.policy.Authorize(ctx, p, action)
	if err != nil {
		return assetrequest.Request{}, err
	}
	if strings.TrimSpace(id) == "" {
		return assetrequest.Request{}, assetrequest.ErrRequestNotFound
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, assetrequest.ErrRequestNotFound) {
			return assetrequest.Request{}, err
		}
		return assetrequest.Request{}, fmt.Errorf("failed to get request: %w", err)
	}

	owner := req.UserEmail
	if action == access.ActionRequestReview {
		owner = req.HREmail
	}
	err = access.Authorize(p, caller.Role, action, access.Resource{OwnerEmail: owner})
	if err != nil {
		return assetrequest.Request{}, access.Conceal(err, assetrequest.ErrRequestNotFound)
	}
	return req, nil
}

// revertApproval undoes an approval whose stock could not be taken. It only
// applies while the request still carries the approval's pending adjustment.
func (s *RequestServiceImpl) revertApproval(ctx context.Context, approved assetrequest.Request) {
	owed := -1
	_, changed, err := s.requests.Transition(ctx, assetrequest.Transition{
		ID:                approved.ID,
		From:              assetrequest.StatusApproved,
		To:                assetrequest.StatusPending,
		ResetApprovalDate: true,
		MatchAdjustment:   &owed,
	})
	if err != nil {
		slog.Error("failed to revert approval, left for reconciliation", "request_id", approved.ID, "error", err)
		return
	}
	slog.Warn("approval reverted", "request_id", approved.ID, "asset_id", approved.AssetID, "reverted", changed)
}

// settle clears the adjustment marker once the inventory write is done. A
// failed clear is logged; the reconciler finds the key applied and only
// clears the marker.
func (s *RequestServiceImpl) settle(ctx context.Context, req assetrequest.Request, adj asset.Adjustment) assetrequest.Request {
	cleared, err := settleAdjustment(ctx, s.requests, s.inventory, req, adj)
	if err != nil {
		slog.Error("failed to clear pending adjustment", "request_id", req.ID, "delta", adj.Delta, "error", err)
		return req
	}
	if cleared {
		req.PendingAdjustment = 0
	}
	return req
}

// adjustmentOf keys the inventory change of one lifecycle step of req, so
// the store applies it once however often it is retried.
func adjustmentOf(req assetrequest.Request, delta int) asset.Adjustment {
	return asset.Adjustment{
		AssetID: req.AssetID,
		Delta:   delta,
		Key:     fmt.Sprintf("%s:%+d", req.ID, delta),
	}
}

// settleAdjustment clears the marker adj left on req and then releases its
// key. The key is kept while the marker is set so a replay stays a no-op.
func settleAdjustment(ctx context.Context, requests assetrequest.RequestRepository, inventory asset.InventoryManager, req assetrequest.Request, adj asset.Adjustment) (bool, error) {
	cleared, err := requests.ClearPendingAdjustment(ctx, req.ID, adj.Delta)
	if err != nil {
		return false, err
	}
	if err := inventory.ReleaseAdjustment(ctx, adj.AssetID, adj.Key); err != nil {
		slog.Warn("failed to release adjustment key", "request_id", req.ID, "key", adj.Key, "error", err)
	}
	return cleared, nil
}

func (s *RequestServiceImpl) publish(event string, req assetrequest.Request, recipients ...string) {
	if s.events == nil {
		return
	}
	s.events.PublishToMany(recipients, sse.Event{Event: event, Data: req})
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, asset.ErrInventoryExhausted):
		return obs.OutcomeExhausted
	case errors.Is(err, asset.ErrAssetNotFound):
		return obs.OutcomeNotFound
	default:
		return obs.OutcomeError
	}
}
