package auth

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessExp = "1h"
	testSecret    = "test-secret-key-for-jwt"
)

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()
	_, _, err := users.Create(ctx, user.User{Email: "emp@acme.test", Role: user.RoleEmployee, Name: "Emp"})
	require.NoError(t, err)

	jwtService := jwt.NewJWTService(testSecret, testAccessExp)
	svc := NewAuthService(users, jwtService)

	t.Run("registered email", func(t *testing.T) {
		res, err := svc.IssueToken(ctx, auth.TokenRequest{Email: " EMP@acme.test"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", res.TokenType)
		assert.NotEmpty(t, res.AccessToken)

		email, err := jwtService.ParseAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "emp@acme.test", email)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.IssueToken(ctx, auth.TokenRequest{Email: "ghost@acme.test"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.IssueToken(ctx, auth.TokenRequest{Email: "not-an-email"})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}
