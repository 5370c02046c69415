package assetrequest

import (
	"context"
)

type RequestRepository interface {
	Create(ctx context.Context, newRequest Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, filter Filter) ([]Request, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// Transition applies t atomically. changed is false when the stored
	// request no longer matches t's preconditions; the request is then
	// returned as stored.
	Transition(ctx context.Context, t Transition) (req Request, changed bool, err error)
	// DeletePending removes the request only while it is Pending and owned by userEmail.
	DeletePending(ctx context.Context, id string, userEmail string) (bool, error)
	// ClearPendingAdjustment zeroes the marker only if it still equals expected.
	ClearPendingAdjustment(ctx context.Context, id string, expected int) (bool, error)
	ListPendingAdjustments(ctx context.Context, limit int) ([]Request, error)
	// CountOutstanding counts requests that still hold or await units of the asset.
	CountOutstanding(ctx context.Context, assetID string) (int64, error)
}
