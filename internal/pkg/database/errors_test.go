package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	assert.NoError(t, Unavailable("noop", nil))

	cause := errors.New("connection refused")
	err := fmt.Errorf("get asset: %w", Unavailable("query assets", cause))

	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "query assets: connection refused")

	var storeErr *StoreError
	assert.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "query assets", storeErr.Op)
}
