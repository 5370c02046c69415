package assetrequest

import (
	"testing"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRequestRequest_Validate(t *testing.T) {
	assert.Error(t, (&CreateRequestRequest{AssetID: "  "}).Validate())

	blank := "   "
	req := CreateRequestRequest{AssetID: " a1 ", Note: &blank}
	require.NoError(t, req.Validate())
	assert.Equal(t, "a1", req.AssetID)
	assert.Nil(t, req.Note)
}

func TestListQueries(t *testing.T) {
	all := ListAllQuery{Search: " ann ", Status: "Pending"}
	require.NoError(t, all.Validate())
	f := all.ToFilter("hr@acme.test")
	assert.Equal(t, "hr@acme.test", f.HREmail)
	assert.Equal(t, "ann", f.RequesterSearch)
	if assert.NotNil(t, f.Status) {
		assert.Equal(t, StatusPending, *f.Status)
	}
	assert.Error(t, (&ListAllQuery{Status: "Done"}).Validate())

	mine := ListMineQuery{Search: "lap", Type: "Non-returnable"}
	require.NoError(t, mine.Validate())
	f = mine.ToFilter("emp@acme.test")
	assert.Equal(t, "emp@acme.test", f.UserEmail)
	assert.Equal(t, "lap", f.ProductSearch)
	assert.Nil(t, f.Status)
	if assert.NotNil(t, f.ProductType) {
		assert.Equal(t, asset.ProductTypeNonReturnable, *f.ProductType)
	}
	assert.Error(t, (&ListMineQuery{Type: "x"}).Validate())
}

func TestInventorySyncError(t *testing.T) {
	cause := assert.AnError
	err := &InventorySyncError{RequestID: "r1", AssetID: "a1", Delta: -1, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "-1")
	assert.Contains(t, err.Error(), "a1")
}
