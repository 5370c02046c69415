package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	accessservice "github.com/cmlabs-hris/assetverse-backend-go/internal/service/access"
)

type UserServiceImpl struct {
	user.UserRepository
	policy accessservice.Policy
	now    func() time.Time
}

func NewUserService(userRepository user.UserRepository, policy accessservice.Policy) user.UserService {
	return &UserServiceImpl{
		UserRepository: userRepository,
		policy:         policy,
		now:            time.Now,
	}
}

// Register implements user.UserService.
// Registering an email that already exists returns the stored record untouched.
func (s *UserServiceImpl) Register(ctx context.Context, req user.RegisterRequest) (user.RegisterResponse, error) {
	if err := req.Validate(); err != nil {
		return user.RegisterResponse{}, err
	}

	newUser := user.User{
		Email: req.Email,
		Role:  req.Role,
		Name:  strings.TrimSpace(req.Name),
		Photo: req.Photo,
	}
	if req.Role == user.RoleHR {
		companyName := strings.TrimSpace(req.CompanyName)
		newUser.CompanyName = &companyName
		if req.CompanyLogo != "" {
			newUser.CompanyLogo = &req.CompanyLogo
		}
	}

	stored, created, err := s.UserRepository.Create(ctx, newUser)
	if err != nil {
		return user.RegisterResponse{}, fmt.Errorf("failed to register user: %w", err)
	}
	if !created {
		slog.Info("register called for existing user", "email", stored.Email)
	}

	return user.RegisterResponse{User: stored, Created: created}, nil
}

// GetMe implements user.UserService.
func (s *UserServiceImpl) GetMe(ctx context.Context, p *auth.Principal) (user.User, error) {
	return s.policy.Authorize(ctx, p, access.ActionViewOwnProfile)
}

// GetMyRole implements user.UserService.
func (s *UserServiceImpl) GetMyRole(ctx context.Context, p *auth.Principal) (user.RoleResponse, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionViewOwnProfile)
	if err != nil {
		return user.RoleResponse{}, err
	}
	return user.RoleResponse{Email: caller.Email, Role: caller.Role}, nil
}

// UpdateMe implements user.UserService.
func (s *UserServiceImpl) UpdateMe(ctx context.Context, p *auth.Principal, req user.UpdateProfileRequest) (user.User, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionEditOwnProfile)
	if err != nil {
		return user.User{}, err
	}
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}

	updated, err := s.UserRepository.UpdateProfile(ctx, caller.Email, req)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return updated, nil
}

// ListUnaffiliated implements user.UserService.
func (s *UserServiceImpl) ListUnaffiliated(ctx context.Context, p *auth.Principal) ([]user.User, error) {
	if _, err := s.policy.Authorize(ctx, p, access.ActionTeamManage); err != nil {
		return nil, err
	}
	role := user.RoleEmployee
	users, err := s.UserRepository.List(ctx, user.Filter{Unaffiliated: true, Role: &role})
	if err != nil {
		return nil, fmt.Errorf("failed to list unaffiliated employees: %w", err)
	}
	return users, nil
}

// TeamCount implements user.UserService.
func (s *UserServiceImpl) TeamCount(ctx context.Context, p *auth.Principal) (user.TeamCountResponse, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionTeamManage)
	if err != nil {
		return user.TeamCountResponse{}, err
	}
	count, err := s.UserRepository.Count(ctx, user.Filter{HREmail: &caller.Email})
	if err != nil {
		return user.TeamCountResponse{}, fmt.Errorf("failed to count team members: %w", err)
	}
	return user.TeamCountResponse{Count: count}, nil
}

// ListMyEmployees implements user.UserService.
func (s *UserServiceImpl) ListMyEmployees(ctx context.Context, p *auth.Principal) ([]user.User, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionTeamManage)
	if err != nil {
		return nil, err
	}
	users, err := s.UserRepository.List(ctx, user.Filter{HREmail: &caller.Email})
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return users, nil
}

// AddToTeam implements user.UserService.
// Company name and logo default to the HR's own profile.
func (s *UserServiceImpl) AddToTeam(ctx context.Context, p *auth.Principal, req user.AddTeamMembersRequest) (user.AddTeamMembersResponse, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionTeamManage)
	if err != nil {
		return user.AddTeamMembersResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.AddTeamMembersResponse{}, err
	}

	aff := user.Affiliation{
		HREmail:    caller.Email,
		JoinedDate: s.now(),
	}
	if caller.CompanyName != nil {
		aff.CompanyName = *caller.CompanyName
	}
	if caller.CompanyLogo != nil {
		aff.CompanyLogo = *caller.CompanyLogo
	}
	if req.CompanyName != nil && strings.TrimSpace(*req.CompanyName) != "" {
		aff.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.CompanyLogo != nil && *req.CompanyLogo != "" {
		aff.CompanyLogo = *req.CompanyLogo
	}
	if aff.CompanyName == "" {
		return user.AddTeamMembersResponse{}, user.ErrCompanyNameRequired
	}

	added, err := s.UserRepository.Affiliate(ctx, req.EmployeeIDs, aff)
	if err != nil {
		return user.AddTeamMembersResponse{}, fmt.Errorf("failed to add team members: %w", err)
	}
	if added < int64(len(req.EmployeeIDs)) {
		slog.Info("some employees were not added to team",
			"hr_email", caller.Email,
			"requested", len(req.EmployeeIDs),
			"added", added,
		)
	}

	return user.AddTeamMembersResponse{Requested: len(req.EmployeeIDs), Added: added}, nil
}

// RemoveFromTeam implements user.UserService.
func (s *UserServiceImpl) RemoveFromTeam(ctx context.Context, p *auth.Principal, employeeID string) error {
	caller, err := s.policy.Authorize(ctx, p, access.ActionTeamManage)
	if err != nil {
		return err
	}
	if strings.TrimSpace(employeeID) == "" {
		return user.ErrUserNotFound
	}
	if err := s.UserRepository.Unaffiliate(ctx, employeeID, caller.Email); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	return nil
}

// MyTeam implements user.UserService.
func (s *UserServiceImpl) MyTeam(ctx context.Context, p *auth.Principal) (user.TeamResponse, error) {
	caller, err := s.policy.Authorize(ctx, p, access.ActionTeamViewOwn)
	if err != nil {
		return user.TeamResponse{}, err
	}

	var hrEmail string
	switch {
	case caller.IsHR():
		hrEmail = caller.Email
	case caller.IsAffiliated():
		hrEmail = *caller.HREmail
	default:
		return user.TeamResponse{Members: []user.User{}}, nil
	}

	team := user.TeamResponse{HREmail: hrEmail}
	if caller.CompanyName != nil {
		team.CompanyName = *caller.CompanyName
	}
	if caller.CompanyLogo != nil {
		team.CompanyLogo = *caller.CompanyLogo
	}

	members, err := s.UserRepository.List(ctx, user.Filter{HREmail: &hrEmail})
	if err != nil {
		return user.TeamResponse{}, fmt.Errorf("failed to list team: %w", err)
	}
	team.Members = members
	return team, nil
}
