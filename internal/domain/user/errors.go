package user

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserEmailExists     = errors.New("email already registered")
	ErrCompanyNameRequired = errors.New("company name is required")
)
