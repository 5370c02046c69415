package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
)

// Policy resolves the caller's current role from the user store and applies
// the role check. Ownership checks happen after the resource is loaded.
type Policy interface {
	Authorize(ctx context.Context, p *auth.Principal, action access.Action) (user.User, error)
}

type PolicyImpl struct {
	users user.UserRepository
}

func NewPolicy(users user.UserRepository) Policy {
	return &PolicyImpl{users: users}
}

// Authorize implements Policy.
func (s *PolicyImpl) Authorize(ctx context.Context, p *auth.Principal, action access.Action) (user.User, error) {
	if p == nil || strings.TrimSpace(p.Email) == "" {
		return user.User{}, access.ErrUnauthenticated
	}

	caller, err := s.users.GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// a valid token for an unregistered email carries no role
			return user.User{}, access.ErrForbidden
		}
		return user.User{}, fmt.Errorf("load caller: %w", err)
	}

	if err := access.Authorize(p, caller.Role, action, access.Resource{}); err != nil {
		return user.User{}, err
	}
	return caller, nil
}
