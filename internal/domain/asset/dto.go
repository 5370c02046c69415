package asset

import (
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/validator"
)

type CreateAssetRequest struct {
	ProductName     string             `json:"productName"`
	ProductType     ProductType        `json:"productType"`
	ProductQuantity validator.IntField `json:"productQuantity"`
}

func (r *CreateAssetRequest) Validate() error {
	var errs validator.ValidationErrors

	r.ProductName = strings.TrimSpace(r.ProductName)
	if validator.IsEmpty(r.ProductName) {
		errs = append(errs, validator.ValidationError{
			Field:   "productName",
			Message: "productName is required",
		})
	}
	if len(r.ProductName) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "productName",
			Message: "productName must not exceed 255 characters",
		})
	}

	if !r.ProductType.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "productType",
			Message: "productType must be one of: Returnable, Non-returnable",
		})
	}

	errs = append(errs, validateQuantity(r.ProductQuantity, true)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateAssetRequest struct {
	ID              string             `json:"-"`
	ProductName     *string            `json:"productName,omitempty"`
	ProductType     *ProductType       `json:"productType,omitempty"`
	ProductQuantity validator.IntField `json:"productQuantity"`
}

func (r *UpdateAssetRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if r.ProductName != nil {
		name := strings.TrimSpace(*r.ProductName)
		r.ProductName = &name
		if name == "" {
			errs = append(errs, validator.ValidationError{
				Field:   "productName",
				Message: "productName must not be empty",
			})
		}
		if len(name) > 255 {
			errs = append(errs, validator.ValidationError{
				Field:   "productName",
				Message: "productName must not exceed 255 characters",
			})
		}
	}

	if r.ProductType != nil && !r.ProductType.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "productType",
			Message: "productType must be one of: Returnable, Non-returnable",
		})
	}

	errs = append(errs, validateQuantity(r.ProductQuantity, false)...)

	if r.ProductName == nil && r.ProductType == nil && !r.ProductQuantity.Set {
		errs = append(errs, validator.ValidationError{
			Field:   "productName",
			Message: ErrNothingToUpdate.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToPatch converts a validated request into a store patch
func (r *UpdateAssetRequest) ToPatch() Patch {
	patch := Patch{
		ProductName: r.ProductName,
		ProductType: r.ProductType,
	}
	if r.ProductQuantity.Set {
		q := r.ProductQuantity.Value
		patch.ProductQuantity = &q
	}
	return patch
}

func validateQuantity(q validator.IntField, required bool) validator.ValidationErrors {
	var errs validator.ValidationErrors
	switch {
	case !q.Set:
		if required {
			errs = append(errs, validator.ValidationError{
				Field:   "productQuantity",
				Message: "productQuantity is required",
			})
		}
	case !q.Valid:
		errs = append(errs, validator.ValidationError{
			Field:   "productQuantity",
			Message: "productQuantity must be a whole number",
		})
	case q.Value < 0:
		errs = append(errs, validator.ValidationError{
			Field:   "productQuantity",
			Message: ErrNegativeQuantity.Error(),
		})
	case q.Value > MaxQuantity:
		errs = append(errs, validator.ValidationError{
			Field:   "productQuantity",
			Message: ErrQuantityTooLarge.Error(),
		})
	}
	return errs
}

// ListAssetsQuery holds the query string of asset listings
type ListAssetsQuery struct {
	Search string
	Type   string
	Sort   string
}

func (q *ListAssetsQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.Type != "" && !ProductType(q.Type).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: Returnable, Non-returnable",
		})
	}
	if q.Sort != "" && q.Sort != SortByQuantity {
		errs = append(errs, validator.ValidationError{
			Field:   "sort",
			Message: "sort must be: quantity",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ToFilter builds a store filter scoped to hrEmail
func (q *ListAssetsQuery) ToFilter(hrEmail string) Filter {
	f := Filter{
		HREmail: hrEmail,
		Search:  strings.TrimSpace(q.Search),
		SortBy:  q.Sort,
	}
	if q.Type != "" {
		t := ProductType(q.Type)
		f.ProductType = &t
	}
	return f
}
