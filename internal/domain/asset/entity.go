package asset

import (
	"math"
	"time"
)

type ProductType string

// MaxQuantity is the largest quantity an admin may enter
const MaxQuantity = math.MaxInt32

const (
	ProductTypeReturnable    ProductType = "Returnable"
	ProductTypeNonReturnable ProductType = "Non-returnable"
)

// ProductTypes lists the accepted product types in display order
var ProductTypes = []ProductType{ProductTypeReturnable, ProductTypeNonReturnable}

func (t ProductType) IsValid() bool {
	return t == ProductTypeReturnable || t == ProductTypeNonReturnable
}

type Asset struct {
	ID              string      `json:"id"`
	HREmail         string      `json:"hrEmail"`
	ProductName     string      `json:"productName"`
	ProductType     ProductType `json:"productType"`
	ProductQuantity int         `json:"productQuantity"`
	AddedDate       time.Time   `json:"addedDate"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// IsAvailable reports whether at least one unit can be requested
func (a *Asset) IsAvailable() bool {
	return a.ProductQuantity > 0
}

const SortByQuantity = "quantity"

// Filter narrows asset listings. Zero values do not filter.
type Filter struct {
	HREmail       string
	Search        string
	ProductType   *ProductType
	OnlyAvailable bool
	BelowQuantity *int
	SortBy        string
	Limit         int
}

// Patch carries a partial admin edit. Nil fields are left unchanged.
type Patch struct {
	ProductName     *string
	ProductType     *ProductType
	ProductQuantity *int
}

// Adjustment is one inventory change. A non-empty Key makes it idempotent:
// the store applies a key at most once until the key is released.
type Adjustment struct {
	AssetID string
	Delta   int
	Key     string
}
