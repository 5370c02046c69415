package user

import (
	"context"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
)

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
	GetMe(ctx context.Context, p *auth.Principal) (User, error)
	GetMyRole(ctx context.Context, p *auth.Principal) (RoleResponse, error)
	UpdateMe(ctx context.Context, p *auth.Principal, req UpdateProfileRequest) (User, error)

	// Team
	ListUnaffiliated(ctx context.Context, p *auth.Principal) ([]User, error)
	TeamCount(ctx context.Context, p *auth.Principal) (TeamCountResponse, error)
	ListMyEmployees(ctx context.Context, p *auth.Principal) ([]User, error)
	AddToTeam(ctx context.Context, p *auth.Principal, req AddTeamMembersRequest) (AddTeamMembersResponse, error)
	RemoveFromTeam(ctx context.Context, p *auth.Principal, employeeID string) error
	MyTeam(ctx context.Context, p *auth.Principal) (TeamResponse, error)
}
