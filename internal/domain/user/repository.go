package user

import (
	"context"
)

type UserRepository interface {
	// Create inserts newUser unless the email is taken, in which case it
	// returns the stored record and created=false.
	Create(ctx context.Context, newUser User) (stored User, created bool, err error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	UpdateProfile(ctx context.Context, email string, req UpdateProfileRequest) (User, error)
	List(ctx context.Context, filter Filter) ([]User, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// Affiliate joins the given employees to a team. Only employees without a
	// team are affected; the number changed is returned.
	Affiliate(ctx context.Context, ids []string, aff Affiliation) (int64, error)
	// Unaffiliate clears the team fields of user id when it belongs to hrEmail.
	Unaffiliate(ctx context.Context, id string, hrEmail string) error
}
