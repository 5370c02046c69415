package assetrequest

import (
	"errors"
	"fmt"
)

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrNotReturnable   = errors.New("only returnable assets can be returned")
)

// InventorySyncError means the status change was stored but the matching
// inventory adjustment was not. The request keeps its pending adjustment
// until the reconciler applies it.
type InventorySyncError struct {
	RequestID string
	AssetID   string
	Delta     int
	Err       error
}

func (e *InventorySyncError) Error() string {
	return fmt.Sprintf("request %s: inventory adjustment %+d on asset %s pending: %v", e.RequestID, e.Delta, e.AssetID, e.Err)
}

func (e *InventorySyncError) Unwrap() error {
	return e.Err
}
