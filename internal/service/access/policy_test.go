package access

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_ReadsRoleFromStore(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()
	policy := NewPolicy(users)

	_, _, err := users.Create(ctx, user.User{Email: "hr@acme.test", Role: user.RoleHR, Name: "HR"})
	require.NoError(t, err)
	_, _, err = users.Create(ctx, user.User{Email: "emp@acme.test", Role: user.RoleEmployee, Name: "Emp"})
	require.NoError(t, err)

	caller, err := policy.Authorize(ctx, &auth.Principal{Email: "hr@acme.test"}, access.ActionAssetManage)
	require.NoError(t, err)
	assert.Equal(t, user.RoleHR, caller.Role)

	_, err = policy.Authorize(ctx, &auth.Principal{Email: "emp@acme.test"}, access.ActionAssetManage)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = policy.Authorize(ctx, &auth.Principal{Email: "ghost@acme.test"}, access.ActionRequestCreate)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = policy.Authorize(ctx, nil, access.ActionRequestCreate)
	assert.ErrorIs(t, err, access.ErrUnauthenticated)
}
