package mongodb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMongo(t *testing.T) *database.MongoDB {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx := context.Background()
	name := fmt.Sprintf("assetverse_test_%d", time.Now().UnixNano())
	db, err := database.NewMongoDB(ctx, uri, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Database.Drop(context.Background())
		db.Close(context.Background())
	})

	require.NoError(t, EnsureIndexes(ctx, db))
	return db
}

func TestContainsRegexIsLiteral(t *testing.T) {
	re := containsRegex("a.b(c")
	assert.Equal(t, `a\.b\(c`, re.Pattern)
	assert.Equal(t, "i", re.Options)

	_, ok := objectID("not-hex")
	assert.False(t, ok)
}

func TestUserRepository_Mongo(t *testing.T) {
	db := newTestMongo(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	emp, created, err := repo.Create(ctx, user.User{Email: "emp@acme.test", Name: "Emp", Role: user.RoleEmployee})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := repo.Create(ctx, user.User{Email: "emp@acme.test", Name: "Other", Role: user.RoleHR})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, emp.ID, again.ID)

	n, err := repo.Affiliate(ctx, []string{emp.ID}, user.Affiliation{HREmail: "hr@acme.test", CompanyName: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	count, err := repo.Count(ctx, user.Filter{Unaffiliated: true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.Unaffiliate(ctx, emp.ID, "hr@acme.test"))
	got, err := repo.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Nil(t, got.HREmail)
}

func TestAssetRepository_AdjustQuantity_Mongo(t *testing.T) {
	db := newTestMongo(t)
	ctx := context.Background()
	repo := NewAssetRepository(db)

	a, err := repo.Create(ctx, asset.Asset{HREmail: "hr@acme.test", ProductName: "Laptop", ProductType: asset.ProductTypeReturnable, ProductQuantity: 2})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustQuantity(ctx, asset.Adjustment{AssetID: a.ID, Delta: -1}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, succeeded)

	_, err = repo.AdjustQuantity(ctx, asset.Adjustment{AssetID: a.ID, Delta: -1})
	assert.ErrorIs(t, err, asset.ErrInventoryExhausted)

	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.AdjustQuantity(ctx, asset.Adjustment{AssetID: a.ID, Delta: 1})
	assert.ErrorIs(t, err, asset.ErrAssetNotFound)
}

func TestAssetRepository_KeyedAdjustment_Mongo(t *testing.T) {
	db := newTestMongo(t)
	ctx := context.Background()
	repo := NewAssetRepository(db)

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

func TestRequestRepository_Transition_Mongo(t *testing.T) {
	db := newTestMongo(t)
	ctx := context.Background()
	repo := NewRequestRepository(db)

	req, err := repo.Create(ctx, assetrequest.Request{AssetID: "a1", HREmail: "hr@acme.test", UserEmail: "emp@acme.test", ProductType: asset.ProductTypeReturnable, Status: assetrequest.StatusPending})
	require.NoError(t, err)

	now := time.Now().UTC()
	_, changed, err := repo.Transition(ctx, assetrequest.Transition{ID: req.ID, From: assetrequest.StatusPending, To: assetrequest.StatusApproved, ApprovalDate: &now, Adjustment: -1})
	require.NoError(t, err)
	assert.True(t, changed)

	minusOne := -1
	reverted, changed, err := repo.Transition(ctx, assetrequest.Transition{ID: req.ID, From: assetrequest.StatusApproved, To: assetrequest.StatusPending, ResetApprovalDate: true, MatchAdjustment: &minusOne})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, reverted.ApprovalDate)
	assert.Equal(t, 0, reverted.PendingAdjustment)

	deleted, err := repo.DeletePending(ctx, req.ID, "emp@acme.test")
	require.NoError(t, err)
	assert.True(t, deleted)
}
