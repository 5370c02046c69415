package asset

import (
	"errors"
	"fmt"
)

var (
	ErrAssetNotFound      = errors.New("asset not found")
	ErrInventoryExhausted = errors.New("asset is out of stock")
	ErrAssetInUse         = errors.New("asset has pending or outstanding requests")
	ErrNegativeQuantity   = errors.New("product quantity must not be negative")
	ErrQuantityTooLarge   = fmt.Errorf("product quantity must not exceed %d", MaxQuantity)
	ErrAdjustmentApplied  = errors.New("inventory adjustment already applied")
	ErrInvalidAdjustment  = errors.New("quantity adjustment must not be zero")
	ErrNothingToUpdate    = errors.New("no fields to update")
)
