package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/asset"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AssetHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ListAvailable(w http.ResponseWriter, r *http.Request)
}

type assetHandlerImpl struct {
	assetService asset.AssetService
}

func NewAssetHandler(assetService asset.AssetService) AssetHandler {
	return &assetHandlerImpl{assetService: assetService}
}

// Create implements AssetHandler.
func (h *assetHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req asset.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateAsset decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.assetService.Create(r.Context(), principal(r), req)
	if err != nil {
		slog.Error("CreateAsset service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Asset created successfully", created)
}

// List implements AssetHandler.
func (h *assetHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assetService.List(r.Context(), principal(r), listAssetsQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, assets)
}

// Update implements AssetHandler.
func (h *assetHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req asset.UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateAsset decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := h.assetService.Update(r.Context(), principal(r), req)
	if err != nil {
		slog.Error("UpdateAsset service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Asset updated successfully", updated)
}

// Get implements AssetHandler.
func (h *assetHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.assetService.Get(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, found)
}

// Delete implements AssetHandler.
func (h *assetHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.assetService.Delete(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		slog.Error("DeleteAsset service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Asset deleted successfully", nil)
}

// ListAvailable implements AssetHandler.
func (h *assetHandlerImpl) ListAvailable(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assetService.ListAvailable(r.Context(), principal(r), chi.URLParam(r, "hrEmail"), listAssetsQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, assets)
}

func listAssetsQuery(r *http.Request) asset.ListAssetsQuery {
	q := r.URL.Query()
	return asset.ListAssetsQuery{
		Search: q.Get("search"),
		Type:   q.Get("type"),
		Sort:   q.Get("sort"),
	}
}
