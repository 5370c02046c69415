package assetrequest

import (
	"time"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
)

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
	StatusReturned Status = "Returned"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusReturned:
		return true
	}
	return false
}

type Request struct {
	ID           string            `json:"id"`
	AssetID      string            `json:"assetId"`
	HREmail      string            `json:"hrEmail"`
	UserEmail    string            `json:"userEmail"`
	UserName     string            `json:"userName"`
	ProductName  string            `json:"productName"`
	ProductType  asset.ProductType `json:"productType"`
	Status       Status            `json:"status"`
	Note         *string           `json:"note,omitempty"`
	RequestDate  time.Time         `json:"requestDate"`
	ApprovalDate *time.Time        `json:"approvalDate,omitempty"`
	ReturnDate   *time.Time        `json:"returnDate,omitempty"`
	// PendingAdjustment is the inventory delta a status change still owes the
	// asset. It is non-zero only between a transition and its adjustment.
	PendingAdjustment int       `json:"pendingAdjustment,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// IsReturnable reports whether the requested product is borrowed rather than consumed
func (r *Request) IsReturnable() bool {
	return r.ProductType == asset.ProductTypeReturnable
}

// Filter narrows request listings. Zero values do not filter.
type Filter struct {
	HREmail         string
	UserEmail       string
	RequesterSearch string // matches user email or user name
	ProductSearch   string // matches product name
	Status          *Status
	ProductType     *asset.ProductType
	RequestedFrom   *time.Time
	RequestedTo     *time.Time
	Limit           int
}

// Transition is a conditional status change. It applies only while the stored
// request has status From and, when MatchAdjustment is set, that pending
// adjustment.
type Transition struct {
	ID                string
	From              Status
	To                Status
	ApprovalDate      *time.Time
	ReturnDate        *time.Time
	ResetApprovalDate bool
	Adjustment        int
	MatchAdjustment   *int
}

// TransitionResult reports the request after a lifecycle call. Changed is
// false when another caller already moved the request; nothing was applied.
type TransitionResult struct {
	Request Request `json:"request"`
	Changed bool    `json:"changed"`
}
