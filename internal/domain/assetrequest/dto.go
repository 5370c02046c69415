package assetrequest

import (
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/validator"
)

type CreateRequestRequest struct {
	AssetID string  `json:"assetId"`
	Note    *string `json:"note,omitempty"`
}

func (r *CreateRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	r.AssetID = strings.TrimSpace(r.AssetID)
	if validator.IsEmpty(r.AssetID) {
		errs = append(errs, validator.ValidationError{
			Field:   "assetId",
			Message: "assetId is required",
		})
	}

	if r.Note != nil {
		note := strings.TrimSpace(*r.Note)
		if len(note) > 1000 {
			errs = append(errs, validator.ValidationError{
				Field:   "note",
				Message: "note must not exceed 1000 characters",
			})
		}
		if note == "" {
			r.Note = nil
		} else {
			r.Note = &note
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ListAllQuery holds the query string of the HR request listing
type ListAllQuery struct {
	Search string
	Status string
}

func (q *ListAllQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.Status != "" && !Status(q.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Pending, Approved, Rejected, Returned",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (q *ListAllQuery) ToFilter(hrEmail string) Filter {
	f := Filter{
		HREmail:         hrEmail,
		RequesterSearch: strings.TrimSpace(q.Search),
	}
	if q.Status != "" {
		s := Status(q.Status)
		f.Status = &s
	}
	return f
}

// ListMineQuery holds the query string of the employee request listing
type ListMineQuery struct {
	Search string
	Status string
	Type   string
}

func (q *ListMineQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.Status != "" && !Status(q.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: Pending, Approved, Rejected, Returned",
		})
	}
	if q.Type != "" && !asset.ProductType(q.Type).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: Returnable, Non-returnable",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (q *ListMineQuery) ToFilter(userEmail string) Filter {
	f := Filter{
		UserEmail:     userEmail,
		ProductSearch: strings.TrimSpace(q.Search),
	}
	if q.Status != "" {
		s := Status(q.Status)
		f.Status = &s
	}
	if q.Type != "" {
		t := asset.ProductType(q.Type)
		f.ProductType = &t
	}
	return f
}
