package assetrequest

import (
	"context"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
)

type RequestService interface {
	Create(ctx context.Context, p *auth.Principal, req CreateRequestRequest) (Request, error)
	ListAll(ctx context.Context, p *auth.Principal, query ListAllQuery) ([]Request, error)
	ListMine(ctx context.Context, p *auth.Principal, query ListMineQuery) ([]Request, error)
	Approve(ctx context.Context, p *auth.Principal, id string) (TransitionResult, error)
	Reject(ctx context.Context, p *auth.Principal, id string) (TransitionResult, error)
	Return(ctx context.Context, p *auth.Principal, id string) (TransitionResult, error)
	Cancel(ctx context.Context, p *auth.Principal, id string) (TransitionResult, error)
}

// Reconciler settles adjustments left behind by failed inventory writes
type Reconciler interface {
	ReconcilePending(ctx context.Context, limit int) (settled int, err error)
}
