package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/access"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Status change stored, inventory write pending
	var syncErr *assetrequest.InventorySyncError
	if errors.As(err, &syncErr) {
		ServiceUnavailable(w, "INVENTORY_SYNC_PENDING", "Request updated but inventory adjustment is pending", map[string]string{
			"requestId":    syncErr.RequestID,
			"assetId":      syncErr.AssetID,
			"pendingDelta": strconv.Itoa(syncErr.Delta),
		})
		return
	}

	switch {
	// Access errors
	case errors.Is(err, access.ErrUnauthenticated):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Email is not registered")
	case errors.Is(err, access.ErrForbidden):
		Forbidden(w, "Insufficient permissions")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrCompanyNameRequired):
		ValidationError(w, map[string]string{"companyName": err.Error()})

	// Asset domain errors
	case errors.Is(err, asset.ErrAssetNotFound):
		NotFound(w, "Asset not found")
	case errors.Is(err, asset.ErrInventoryExhausted):
		InventoryExhausted(w, "Asset is out of stock")
	case errors.Is(err, asset.ErrAssetInUse):
		Conflict(w, "Asset has pending or outstanding requests")
	case errors.Is(err, asset.ErrNegativeQuantity), errors.Is(err, asset.ErrQuantityTooLarge):
		ValidationError(w, map[string]string{"productQuantity": err.Error()})
	case errors.Is(err, asset.ErrInvalidAdjustment), errors.Is(err, asset.ErrNothingToUpdate):
		BadRequest(w, err.Error(), nil)

	// Request domain errors
	case errors.Is(err, assetrequest.ErrRequestNotFound):
		NotFound(w, "Request not found")
	case errors.Is(err, assetrequest.ErrNotReturnable):
		BadRequest(w, "Only returnable assets can be returned", nil)

	// Store errors
	case errors.Is(err, database.ErrStoreUnavailable):
		slog.Error("store unavailable", "error", err)
		ServiceUnavailable(w, "STORE_UNAVAILABLE", "Storage is temporarily unavailable", nil)

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
