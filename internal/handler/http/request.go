package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/assetrequest"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type RequestHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Return(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
}

type requestHandlerImpl struct {
	requestService assetrequest.RequestService
}

func NewRequestHandler(requestService assetrequest.RequestService) RequestHandler {
	return &requestHandlerImpl{requestService: requestService}
}

// transitionFunc is the shape of every lifecycle call
type transitionFunc func(ctx context.Context, p *auth.Principal, id string) (assetrequest.TransitionResult, error)

// Create implements RequestHandler.
func (h *requestHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req assetrequest.CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.requestService.Create(r.Context(), principal(r), req)
	if err != nil {
		slog.Error("CreateRequest service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Request submitted successfully", created)
}

// ListAll implements RequestHandler.
func (h *requestHandlerImpl) ListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requests, err := h.requestService.ListAll(r.Context(), principal(r), assetrequest.ListAllQuery{
		Search: q.Get("search"),
		Status: q.Get("status"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, requests)
}

// ListMine implements RequestHandler.
func (h *requestHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requests, err := h.requestService.ListMine(r.Context(), principal(r), assetrequest.ListMineQuery{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Type:   q.Get("type"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, requests)
}

// Approve implements RequestHandler.
func (h *requestHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Approve", h.requestService.Approve, "Request approved")
}

// Reject implements RequestHandler.
func (h *requestHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Reject", h.requestService.Reject, "Request rejected")
}

// Return implements RequestHandler.
func (h *requestHandlerImpl) Return(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Return", h.requestService.Return, "Asset returned")
}

// Cancel implements RequestHandler.
func (h *requestHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Cancel", h.requestService.Cancel, "Request cancelled")
}

// transition runs a lifecycle call. A result that changed nothing is still a
// success; the message tells the caller it was already handled.
func (h *requestHandlerImpl) transition(w http.ResponseWriter, r *http.Request, op string, fn transitionFunc, message string) {
	result, err := fn(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error(op+" service error", "error", err)
		response.HandleError(w, err)
		return
	}
	if !result.Changed {
		response.SuccessWithMessage(w, "Request was already processed", result)
		return
	}
	response.SuccessWithMessage(w, message, result)
}
