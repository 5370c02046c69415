package assetrequest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/repository/memory"
	accessservice "github.com/cmlabs-hris/assetverse-backend-go/internal/service/access"
	assetservice "github.com/cmlabs-hris/assetverse-backend-go/internal/service/asset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hr      = &auth.Principal{Email: "hr@acme.test"}
	otherHR = &auth.Principal{Email: "hr@globex.test"}
	alice   = &auth.Principal{Email: "alice@acme.test"}
	bob     = &auth.Principal{Email: "bob@acme.test"}
)

// flakyInventory fails adjustments with err while failing is set.
type flakyInventory struct {
	asset.InventoryManager
	mu      sync.Mutex
	failing bool
	err     error
}

func (f *flakyInventory) AdjustQuantity(ctx context.Context, adj asset.Adjustment) (asset.Asset, error) {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return asset.Asset{}, f.err
	}
	return f.InventoryManager.AdjustQuantity(ctx, adj)
}

func (f *flakyInventory) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

// failingClear fails the next failures marker clears with a store error.
type failingClear struct {
	assetrequest.RequestRepository
	mu       sync.Mutex
	failures int
}

func (r *failingClear) ClearPendingAdjustment(ctx context.Context, id string, expected int) (bool, error) {
	r.mu.Lock()
	fail := r.failures > 0
	if fail {
		r.failures--
	}
	r.mu.Unlock()
	if fail {
		return false, database.Unavailable("clear pending adjustment", errors.New("connection reset"))
	}
	return r.RequestRepository.ClearPendingAdjustment(ctx, id, expected)
}

type fixture struct {
	store     *memory.Store
	inventory *flakyInventory
	policy    accessservice.Policy
	svc       assetrequest.RequestService
	hub       *sse.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	users := store.Users()

	var employeeIDs []string
	for _, u := range []user.User{
		{Email: hr.Email, Role: user.RoleHR, Name: "HR"},
		{Email: otherHR.Email, Role: user.RoleHR, Name: "Other HR"},
		{Email: alice.Email, Role: user.RoleEmployee, Name: "Alice"},
		{Email: bob.Email, Role: user.RoleEmployee, Name: "Bob"},
	} {
		stored, _, err := users.Create(ctx, u)
		require.NoError(t, err)
		if u.Role == user.RoleEmployee {
			employeeIDs = append(employeeIDs, stored.ID)
		}
	}
	_, err := users.Affiliate(ctx, employeeIDs, user.Affiliation{HREmail: hr.Email, CompanyName: "Acme", JoinedDate: time.Now()})
	require.NoError(t, err)

	policy := accessservice.NewPolicy(users)
	inventory := &flakyInventory{
		InventoryManager: assetservice.NewAssetService(store.Assets(), store.Requests(), policy),
		err:              database.Unavailable("adjust quantity", errors.New("connection reset")),
	}
	hub := sse.NewHub()

	return &fixture{
		store:     store,
		inventory: inventory,
		policy:    policy,
		svc:       NewRequestService(store.Requests(), store.Assets(), inventory, policy, hub),
		hub:       hub,
	}
}

func (f *fixture) newAsset(t *testing.T, name string, typ asset.ProductType, qty int) asset.Asset {
	t.Helper()
	a, err := f.store.Assets().Create(context.Background(), asset.Asset{
		HREmail:         hr.Email,
		ProductName:     name,
		ProductType:     typ,
		ProductQuantity: qty,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	a, err := f.store.Assets().GetByID(context.Background(), id)
	require.NoError(t, err)
	return a.ProductQuantity
}

func (f *fixture) request(t *testing.T, p *auth.Principal, assetID string) assetrequest.Request {
	t.Helper()
	req, err := f.svc.Create(context.Background(), p, assetrequest.CreateRequestRequest{AssetID: assetID})
	require.NoError(t, err)
	return req
}

func TestReturnableLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 3)

	req := f.request(t, alice, laptop.ID)
	assert.Equal(t, assetrequest.StatusPending, req.Status)
	assert.Equal(t, hr.Email, req.HREmail)
	assert.Equal(t, "Alice", req.UserName)
	assert.Equal(t, "Laptop", req.ProductName)
	assert.Equal(t, 3, f.quantity(t, laptop.ID))

	res, err := f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, assetrequest.StatusApproved, res.Request.Status)
	assert.NotNil(t, res.Request.ApprovalDate)
	assert.Zero(t, res.Request.PendingAdjustment)
	assert.Equal(t, 2, f.quantity(t, laptop.ID))

	res, err = f.svc.Return(ctx, alice, req.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, assetrequest.StatusReturned, res.Request.Status)
	assert.NotNil(t, res.Request.ReturnDate)
	assert.Equal(t, 3, f.quantity(t, laptop.ID))
}

func TestNonReturnableLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pens := f.newAsset(t, "Pen", asset.ProductTypeNonReturnable, 1)

	req := f.request(t, alice, pens.ID)
	_, err := f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.quantity(t, pens.ID))

	_, err = f.svc.Return(ctx, alice, req.ID)
	assert.ErrorIs(t, err, assetrequest.ErrNotReturnable)
	assert.Equal(t, 0, f.quantity(t, pens.ID))

	_, err = f.svc.Create(ctx, bob, assetrequest.CreateRequestRequest{AssetID: pens.ID})
	assert.ErrorIs(t, err, asset.ErrInventoryExhausted)
}

func TestApproveTwice_SingleDecrement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 5)
	req := f.request(t, alice, laptop.ID)

	first, err := f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)
	assert.True(t, first.Changed)

	second, err := f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, assetrequest.StatusApproved, second.Request.Status)

	assert.Equal(t, 4, f.quantity(t, laptop.ID))
}

func TestReturnTwice_SingleIncrement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 1)
	req := f.request(t, alice, laptop.ID)
	_, err := f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]assetrequest.TransitionResult, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Return(ctx, alice, req.ID)
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	assert.NotEqual(t, results[0].Changed, results[1].Changed)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))
}

func TestReturn_PendingRequestIsNoop(t *testing.T) {
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 1)
	req := f.request(t, alice, laptop.ID)

	res, err := f.svc.Return(context.Background(), alice, req.ID)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))
}

func TestConcurrentApprovals_QuantityNeverNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 1)

	const n = 10
	ids := make([]string, n)
	for i := range ids {
		requester := alice
		if i%2 == 1 {
			requester = bob
		}
		ids[i] = f.request(t, requester, laptop.ID).ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		approved  int
		exhausted int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			res, err := f.svc.Approve(ctx, hr, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && res.Changed:
				approved++
			case errors.Is(err, asset.ErrInventoryExhausted):
				exhausted++
			default:
				t.Errorf("unexpected approve outcome: changed=%v err=%v", res.Changed, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, approved)
	assert.Equal(t, n-1, exhausted)
	assert.Equal(t, 0, f.quantity(t, laptop.ID))

	pendingStatus := assetrequest.StatusPending
	pending, err := f.store.Requests().List(ctx, assetrequest.Filter{HREmail: hr.Email, Status: &pendingStatus})
	require.NoError(t, err)
	assert.Len(t, pending, n-1)
	for _, req := range pending {
		assert.Nil(t, req.ApprovalDate)
		assert.Zero(t, req.PendingAdjustment)
	}
}

func TestCancelVersusApprove_LeavesApproved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 2)
	req := f.request(t, alice, laptop.ID)

	_, err := f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)

	res, err := f.svc.Cancel(ctx, alice, req.ID)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, assetrequest.StatusApproved, res.Request.Status)

	stored, err := f.store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, assetrequest.StatusApproved, stored.Status)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))
}

func TestCancelVersusApprove_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const rounds = 20
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, rounds)

	approvedCount := 0
	for i := 0; i < rounds; i++ {
		req := f.request(t, alice, laptop.ID)

		var (
			wg                    sync.WaitGroup
			approved, cancelled   assetrequest.TransitionResult
			approveErr, cancelErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			approved, approveErr = f.svc.Approve(ctx, hr, req.ID)
		}()
		go func() {
			defer wg.Done()
			cancelled, cancelErr = f.svc.Cancel(ctx, alice, req.ID)
		}()
		wg.Wait()

		require.NoError(t, cancelErr)
		stored, err := f.store.Requests().GetByID(ctx, req.ID)
		if approveErr == nil && approved.Changed {
			approvedCount++
			require.NoError(t, err, "an approved request must never be deleted")
			assert.Equal(t, assetrequest.StatusApproved, stored.Status)
			assert.False(t, cancelled.Changed)
			continue
		}

		assert.True(t, cancelled.Changed)
		assert.ErrorIs(t, err, assetrequest.ErrRequestNotFound)
		if approveErr != nil {
			assert.ErrorIs(t, approveErr, assetrequest.ErrRequestNotFound)
		}
	}

	assert.Equal(t, rounds-approvedCount, f.quantity(t, laptop.ID))
}

func TestCancelPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 2)
	req := f.request(t, alice, laptop.ID)

	_, err := f.svc.Cancel(ctx, bob, req.ID)
	assert.ErrorIs(t, err, assetrequest.ErrRequestNotFound)

	res, err := f.svc.Cancel(ctx, alice, req.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	_, err = f.store.Requests().GetByID(ctx, req.ID)
	assert.ErrorIs(t, err, assetrequest.ErrRequestNotFound)
	assert.Equal(t, 2, f.quantity(t, laptop.ID))
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 2)
	req := f.request(t, alice, laptop.ID)

	res, err := f.svc.Reject(ctx, hr, req.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, assetrequest.StatusRejected, res.Request.Status)

	res, err = f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, 2, f.quantity(t, laptop.ID))
}

func TestHROnlyOperations_ForbiddenRegardlessOfExistence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 2)
	req := f.request(t, alice, laptop.ID)

	for _, id := range []string{req.ID, "does-not-exist"} {
		_, err := f.svc.Approve(ctx, alice, id)
		assert.ErrorIs(t, err, access.ErrForbidden)
		_, err = f.svc.Reject(ctx, bob, id)
		assert.ErrorIs(t, err, access.ErrForbidden)
	}
	_, err := f.svc.ListAll(ctx, alice, assetrequest.ListAllQuery{})
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = f.svc.Approve(ctx, nil, req.ID)
	assert.ErrorIs(t, err, access.ErrUnauthenticated)
}

func TestApprove_OtherHRSeesNotFound(t *testing.T) {
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 2)
	req := f.request(t, alice, laptop.ID)

	_, err := f.svc.Approve(context.Background(), otherHR, req.ID)
	assert.ErrorIs(t, err, assetrequest.ErrRequestNotFound)
	assert.Equal(t, 2, f.quantity(t, laptop.ID))
}

func TestApprove_InventoryFailureLeavesMarker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 2)
	req := f.request(t, alice, laptop.ID)

	f.inventory.setFailing(true)
	_, err := f.svc.Approve(ctx, hr, req.ID)

	var syncErr *assetrequest.InventorySyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, req.ID, syncErr.RequestID)
	assert.Equal(t, -1, syncErr.Delta)
	assert.ErrorIs(t, err, database.ErrStoreUnavailable)

	stored, err := f.store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, assetrequest.StatusApproved, stored.Status)
	assert.Equal(t, -1, stored.PendingAdjustment)
	assert.Equal(t, 2, f.quantity(t, laptop.ID))

	// a return must wait until the approval's adjustment is settled
	res, err := f.svc.Return(ctx, alice, req.ID)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	f.inventory.setFailing(false)
	reconciler := NewReconciler(f.store.Requests(), f.inventory, 0)
	settled, err := reconciler.ReconcilePending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))

	stored, err = f.store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.PendingAdjustment)

	settled, err = reconciler.ReconcilePending(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, settled)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))
}

func TestReturn_InventoryFailureLeavesMarker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 1)
	req := f.request(t, alice, laptop.ID)
	_, err := f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)

	f.inventory.setFailing(true)
	_, err = f.svc.Return(ctx, alice, req.ID)
	var syncErr *assetrequest.InventorySyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, 1, syncErr.Delta)
	assert.Equal(t, 0, f.quantity(t, laptop.ID))

	f.inventory.setFailing(false)
	settled, err := NewReconciler(f.store.Requests(), f.inventory, 0).ReconcilePending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))
}

func TestApprove_MarkerClearFailureTakesStockOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 2)
	req := f.request(t, alice, laptop.ID)

	requests := &failingClear{RequestRepository: f.store.Requests(), failures: 1}
	svc := NewRequestService(requests, f.store.Assets(), f.inventory, f.policy, f.hub)

	res, err := svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, -1, res.Request.PendingAdjustment)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))

	settled, err := NewReconciler(requests, f.inventory, 0).ReconcilePending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))

	stored, err := f.store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, assetrequest.StatusApproved, stored.Status)
	assert.Zero(t, stored.PendingAdjustment)

	// the return that follows restocks exactly once
	res, err = svc.Return(ctx, alice, req.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 2, f.quantity(t, laptop.ID))
}

func TestReturn_MarkerClearFailureRestocksOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 1)
	req := f.request(t, alice, laptop.ID)
	_, err := f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)

	requests := &failingClear{RequestRepository: f.store.Requests(), failures: 1}
	svc := NewRequestService(requests, f.store.Assets(), f.inventory, f.policy, f.hub)

	res, err := svc.Return(ctx, alice, req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Request.PendingAdjustment)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))

	reconciler := NewReconciler(requests, f.inventory, 0)
	settled, err := reconciler.ReconcilePending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))

	settled, err = reconciler.ReconcilePending(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, settled)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))
}

func TestReconcile_ExhaustedApprovalRevertsToPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 1)
	first := f.request(t, alice, laptop.ID)
	second := f.request(t, bob, laptop.ID)

	f.inventory.setFailing(true)
	_, err := f.svc.Approve(ctx, hr, first.ID)
	require.Error(t, err)
	f.inventory.setFailing(false)

	_, err = f.svc.Approve(ctx, hr, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.quantity(t, laptop.ID))

	settled, err := NewReconciler(f.store.Requests(), f.inventory, 0).ReconcilePending(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, settled)

	stored, err := f.store.Requests().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, assetrequest.StatusPending, stored.Status)
	assert.Nil(t, stored.ApprovalDate)
	assert.Zero(t, stored.PendingAdjustment)
	assert.Equal(t, 0, f.quantity(t, laptop.ID))
}

func TestReconcile_SkipsFreshMarkers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 1)
	req := f.request(t, alice, laptop.ID)

	f.inventory.setFailing(true)
	_, err := f.svc.Approve(ctx, hr, req.ID)
	require.Error(t, err)
	f.inventory.setFailing(false)

	settled, err := NewReconciler(f.store.Requests(), f.inventory, time.Hour).ReconcilePending(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, settled)
	assert.Equal(t, 1, f.quantity(t, laptop.ID))
}

func TestReturn_VanishedAssetStillReturns(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 1)
	req := f.request(t, alice, laptop.ID)
	_, err := f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)

	require.NoError(t, f.store.Assets().Delete(ctx, laptop.ID))

	res, err := f.svc.Return(ctx, alice, req.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, assetrequest.StatusReturned, res.Request.Status)
	assert.Zero(t, res.Request.PendingAdjustment)
}

func TestCreate_Scope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	foreign, err := f.store.Assets().Create(ctx, asset.Asset{
		HREmail:         otherHR.Email,
		ProductName:     "Phone",
		ProductType:     asset.ProductTypeReturnable,
		ProductQuantity: 4,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, alice, assetrequest.CreateRequestRequest{AssetID: foreign.ID})
	assert.ErrorIs(t, err, asset.ErrAssetNotFound)

	_, err = f.svc.Create(ctx, alice, assetrequest.CreateRequestRequest{AssetID: "missing"})
	assert.ErrorIs(t, err, asset.ErrAssetNotFound)

	_, err = f.svc.Create(ctx, hr, assetrequest.CreateRequestRequest{AssetID: foreign.ID})
	assert.ErrorIs(t, err, access.ErrForbidden)
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 5)
	pen := f.newAsset(t, "Pen", asset.ProductTypeNonReturnable, 5)
	f.request(t, alice, laptop.ID)
	f.request(t, alice, pen.ID)
	f.request(t, bob, laptop.ID)

	all, err := f.svc.ListAll(ctx, hr, assetrequest.ListAllQuery{Search: "ALICE"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.ListMine(ctx, alice, assetrequest.ListMineQuery{Type: string(asset.ProductTypeNonReturnable)})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Pen", mine[0].ProductName)

	_, err = f.svc.ListMine(ctx, alice, assetrequest.ListMineQuery{Status: "Lost"})
	assert.Error(t, err)

	others, err := f.svc.ListAll(ctx, otherHR, assetrequest.ListAllQuery{})
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestEventsPublished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	laptop := f.newAsset(t, "Laptop", asset.ProductTypeReturnable, 1)

	hrEvents, cancelHR := f.hub.Subscribe(hr.Email)
	defer cancelHR()
	aliceEvents, cancelAlice := f.hub.Subscribe(alice.Email)
	defer cancelAlice()

	req := f.request(t, alice, laptop.ID)
	select {
	case ev := <-hrEvents:
		assert.Equal(t, "request.created", ev.Event)
	case <-time.After(time.Second):
		t.Fatal("no request.created event for HR")
	}

	_, err := f.svc.Approve(ctx, hr, req.ID)
	require.NoError(t, err)
	select {
	case ev := <-aliceEvents:
		assert.Equal(t, "request.approved", ev.Event)
	case <-time.After(time.Second):
		t.Fatal("no request.approved event for requester")
	}
}
