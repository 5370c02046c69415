package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("email is not registered")
	ErrInvalidToken       = errors.New("invalid or expired token")
)
