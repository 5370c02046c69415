package database

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable marks a transport-level failure talking to the store.
var ErrStoreUnavailable = errors.New("store unavailable")

// StoreError wraps a driver error with the operation that produced it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStoreUnavailable) hold for every StoreError.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// Unavailable wraps err as a StoreError. A nil err yields nil.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
