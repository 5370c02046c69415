package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
)

type UserRepository struct {
	s *Store
}

var _ user.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, newUser user.User) (user.User, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, newUser.Email) {
			return u, false, nil
		}
	}

	now := r.s.now()
	newUser.ID = r.s.newID()
	newUser.CreatedAt = now
	newUser.UpdatedAt = now
	r.s.users[newUser.ID] = newUser
	return newUser, true, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, email string, req user.UpdateProfileRequest) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, u := range r.s.users {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.Photo != nil {
			u.Photo = *req.Photo
		}
		u.UpdatedAt = r.s.now()
		r.s.users[id] = u
		return u, nil
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) List(ctx context.Context, filter user.Filter) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]user.User, 0)
	for _, u := range r.s.users {
		if matchUser(u, filter) {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return r.s.order[result[i].ID] < r.s.order[result[j].ID]
	})
	return result, nil
}

func (r *UserRepository) Count(ctx context.Context, filter user.Filter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, u := range r.s.users {
		if matchUser(u, filter) {
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) Affiliate(ctx context.Context, ids []string, aff user.Affiliation) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var changed int64
	for _, id := range ids {
		u, ok := r.s.users[id]
		if !ok || u.Role != user.RoleEmployee || u.IsAffiliated() {
			continue
		}
		u.HREmail = ptr(aff.HREmail)
		u.CompanyName = ptr(aff.CompanyName)
		u.CompanyLogo = ptr(aff.CompanyLogo)
		u.JoinedDate = ptr(aff.JoinedDate)
		u.UpdatedAt = r.s.now()
		r.s.users[id] = u
		changed++
	}
	return changed, nil
}

func (r *UserRepository) Unaffiliate(ctx context.Context, id string, hrEmail string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok || u.HREmail == nil || !strings.EqualFold(*u.HREmail, hrEmail) {
		return user.ErrUserNotFound
	}
	u.HREmail = nil
	u.CompanyName = nil
	u.CompanyLogo = nil
	u.JoinedDate = nil
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

func matchUser(u user.User, f user.Filter) bool {
	if f.HREmail != nil && (u.HREmail == nil || !strings.EqualFold(*u.HREmail, *f.HREmail)) {
		return false
	}
	if f.Unaffiliated && u.IsAffiliated() {
		return false
	}
	if f.Role != nil && u.Role != *f.Role {
		return false
	}
	return true
}
