package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
)

type RequestRepository struct {
	s *Store
}

var _ assetrequest.RequestRepository = (*RequestRepository)(nil)

func (r *RequestRepository) Create(ctx context.Context, newRequest assetrequest.Request) (assetrequest.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	newRequest.ID = r.s.newID()
	if newRequest.RequestDate.IsZero() {
		newRequest.RequestDate = now
	}
	newRequest.UpdatedAt = now
	r.s.requests[newRequest.ID] = newRequest
	return newRequest, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id string) (assetrequest.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.requests[id]
	if !ok {
		return assetrequest.Request{}, assetrequest.ErrRequestNotFound
	}
	return req, nil
}

func (r *RequestRepository) List(ctx context.Context, filter assetrequest.Filter) ([]assetrequest.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]assetrequest.Request, 0)
	for _, req := range r.s.requests {
		if matchRequest(req, filter) {
			result = append(result, req)
		}
	}
	// newest first
	sort.Slice(result, func(i, j int) bool {
		return r.s.order[result[i].ID] > r.s.order[result[j].ID]
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *RequestRepository) Count(ctx context.Context, filter assetrequest.Filter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, req := range r.s.requests {
		if matchRequest(req, filter) {
			n++
		}
	}
	return n, nil
}

func (r *RequestRepository) Transition(ctx context.Context, t assetrequest.Transition) (assetrequest.Request, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[t.ID]
	if !ok {
		return assetrequest.Request{}, false, assetrequest.ErrRequestNotFound
	}
	if req.Status != t.From {
		return req, false, nil
	}
	if t.MatchAdjustment != nil && req.PendingAdjustment != *t.MatchAdjustment {
		return req, false, nil
	}

	req.Status = t.To
	if t.ApprovalDate != nil {
		req.ApprovalDate = t.ApprovalDate
	}
	if t.ResetApprovalDate {
		req.ApprovalDate = nil
	}
	if t.ReturnDate != nil {
		req.ReturnDate = t.ReturnDate
	}
	req.PendingAdjustment = t.Adjustment
	req.UpdatedAt = r.s.now()
	r.s.requests[t.ID] = req
	return req, true, nil
}

func (r *RequestRepository) DeletePending(ctx context.Context, id string, userEmail string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[id]
	if !ok || req.Status != assetrequest.StatusPending || !strings.EqualFold(req.UserEmail, userEmail) {
		return false, nil
	}
	delete(r.s.requests, id)
	return true, nil
}

func (r *RequestRepository) ClearPendingAdjustment(ctx context.Context, id string, expected int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[id]
	if !ok || req.PendingAdjustment != expected {
		return false, nil
	}
	req.PendingAdjustment = 0
	req.UpdatedAt = r.s.now()
	r.s.requests[id] = req
	return true, nil
}

func (r *RequestRepository) ListPendingAdjustments(ctx context.Context, limit int) ([]assetrequest.Request, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]assetrequest.Request, 0)
	for _, req := range r.s.requests {
		if req.PendingAdjustment != 0 {
			result = append(result, req)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.Before(result[j].UpdatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *RequestRepository) CountOutstanding(ctx context.Context, assetID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, req := range r.s.requests {
		if req.AssetID == assetID && isOutstanding(req) {
			n++
		}
	}
	return n, nil
}

func isOutstanding(req assetrequest.Request) bool {
	switch req.Status {
	case assetrequest.StatusPending:
		return true
	case assetrequest.StatusApproved:
		return req.ProductType == asset.ProductTypeReturnable
	}
	return req.PendingAdjustment != 0
}

func matchRequest(req assetrequest.Request, f assetrequest.Filter) bool {
	if f.HREmail != "" && !strings.EqualFold(req.HREmail, f.HREmail) {
		return false
	}
	if f.UserEmail != "" && !strings.EqualFold(req.UserEmail, f.UserEmail) {
		return false
	}
	if f.RequesterSearch != "" && !containsFold(req.UserEmail, f.RequesterSearch) && !containsFold(req.UserName, f.RequesterSearch) {
		return false
	}
	if f.ProductSearch != "" && !containsFold(req.ProductName, f.ProductSearch) {
		return false
	}
	if f.Status != nil && req.Status != *f.Status {
		return false
	}
	if f.ProductType != nil && req.ProductType != *f.ProductType {
		return false
	}
	if f.RequestedFrom != nil && req.RequestDate.Before(*f.RequestedFrom) {
		return false
	}
	if f.RequestedTo != nil && !req.RequestDate.Before(*f.RequestedTo) {
		return false
	}
	return true
}
