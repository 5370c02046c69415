package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Postgres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(db)

	emp, created, err := repo.Create(ctx, user.User{Email: "emp@acme.test", Name: "Emp", Role: user.RoleEmployee})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := repo.Create(ctx, user.User{Email: "emp@acme.test", Name: "Someone", Role: user.RoleHR})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, emp.ID, again.ID)
	assert.Equal(t, user.RoleEmployee, again.Role)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	n, err := repo.Affiliate(ctx, []string{emp.ID, "garbage"}, user.Affiliation{HREmail: "hr@acme.test", CompanyName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	unaffiliated, err := repo.List(ctx, user.Filter{Unaffiliated: true})
	require.NoError(t, err)
	assert.Empty(t, unaffiliated)

	require.NoError(t, repo.Unaffiliate(ctx, emp.ID, "hr@acme.test"))
	assert.ErrorIs(t, repo.Unaffiliate(ctx, emp.ID, "hr@acme.test"), user.ErrUserNotFound)
}

func TestAssetRepository_AdjustQuantity_Postgres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAssetRepository(db)

	a, err := repo.Create(ctx, asset.Asset{HREmail: "hr@acme.test", ProductName: "Laptop", ProductType: asset.ProductTypeReturnable, ProductQuantity: 3})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AdjustQuantity(ctx, asset.Adjustment{AssetID: a.ID, Delta: -1})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, asset.ErrInventoryExhausted), "unexpected error: %v", err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, succeeded)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ProductQuantity)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.AdjustQuantity(ctx, asset.Adjustment{AssetID: a.ID, Delta: 1})
	assert.ErrorIs(t, err, asset.ErrAssetNotFound)
}

func TestAssetRepository_KeyedAdjustment_Postgres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewAssetRepository(db)

	a, err := repo.Create(ctx, asset.Asset{HREmail: "hr@acme.test", ProductName: "Laptop", ProductType: asset.ProductTypeReturnable, ProductQuantity: 2})
	require.NoError(t, err)
	adj := asset.Adjustment{AssetID: a.ID, Delta: -1, Key: "request-1:-1"}

	adjusted, err := repo.AdjustQuantity(ctx, adj)
	require.NoError(t, err)
	assert.Equal(t, 1, adjusted.ProductQuantity)

	_, err = repo.AdjustQuantity(ctx, adj)
	assert.ErrorIs(t, err, asset.ErrAdjustmentApplied)

	_, err = repo.AdjustQuantity(ctx, asset.Adjustment{AssetID: a.ID, Delta: -2, Key: "request-2:-1"})
	assert.ErrorIs(t, err, asset.ErrInventoryExhausted)

	require.NoError(t, repo.ReleaseAdjustment(ctx, a.ID, adj.Key))
	adjusted, err = repo.AdjustQuantity(ctx, adj)
	require.NoError(t, err)
	assert.Equal(t, 0, adjusted.ProductQuantity)
}

func TestRequestRepository_Transition_Postgres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := postgresql.NewRequestRepository(db)

	req, err := repo.Create(ctx, assetrequest.Request{
		AssetID:     "0190c3a4-0000-7000-8000-000000000001",
		HREmail:     "hr@acme.test",
		UserEmail:   "emp@acme.test",
		UserName:    "Emp",
		ProductName: "Laptop",
		ProductType: asset.ProductTypeReturnable,
		Status:      assetrequest.StatusPending,
	})
	require.NoError(t, err)

	approved, changed, err := repo.Transition(ctx, assetrequest.Transition{ID: req.ID, From: assetrequest.StatusPending, To: assetrequest.StatusApproved, Adjustment: -1})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, -1, approved.PendingAdjustment)

	stale, changed, err := repo.Transition(ctx, assetrequest.Transition{ID: req.ID, From: assetrequest.StatusPending, To: assetrequest.StatusRejected})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, assetrequest.StatusApproved, stale.Status)

	pending, err := repo.ListPendingAdjustments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	ok, err := repo.ClearPendingAdjustment(ctx, req.ID, -1)
	require.NoError(t, err)
	assert.True(t, ok)

	deleted, err := repo.DeletePending(ctx, req.ID, "emp@acme.test")
	require.NoError(t, err)
	assert.False(t, deleted)

	n, err := repo.CountOutstanding(ctx, req.AssetID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
