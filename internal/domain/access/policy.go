package access

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrNotOwner        = fmt.Errorf("%w: resource belongs to another user", ErrForbidden)
)

// Resource describes what an action targets. An empty OwnerEmail means the
// action is not ownership-scoped.
type Resource struct {
	OwnerEmail string
}

// Authorize decides whether p, currently holding role, may perform action on res.
// It performs no I/O; role must come from the user store, not from the token.
func Authorize(p *auth.Principal, role user.Role, action Action, res Resource) error {
	if p == nil || strings.TrimSpace(p.Email) == "" {
		return ErrUnauthenticated
	}
	if !HasPermission(role, action) {
		return ErrForbidden
	}
	if res.OwnerEmail != "" && !strings.EqualFold(res.OwnerEmail, p.Email) {
		return ErrNotOwner
	}
	return nil
}

// Conceal reports an ownership failure as notFound so a resource outside the
// caller's scope looks the same as a missing one. Other errors pass through.
func Conceal(err, notFound error) error {
	if errors.Is(err, ErrNotOwner) {
		return notFound
	}
	return err
}
