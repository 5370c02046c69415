package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type UserHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	GetMe(w http.ResponseWriter, r *http.Request)
	GetMyRole(w http.ResponseWriter, r *http.Request)
	UpdateMe(w http.ResponseWriter, r *http.Request)

	// Team
	ListUnaffiliated(w http.ResponseWriter, r *http.Request)
	TeamCount(w http.ResponseWriter, r *http.Request)
	ListMyEmployees(w http.ResponseWriter, r *http.Request)
	AddToTeam(w http.ResponseWriter, r *http.Request)
	RemoveFromTeam(w http.ResponseWriter, r *http.Request)
	MyTeam(w http.ResponseWriter, r *http.Request)
}

type userHandlerImpl struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) UserHandler {
	return &userHandlerImpl{userService: userService}
}

// Register implements UserHandler.
func (h *userHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Register decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.userService.Register(r.Context(), req)
	if err != nil {
		slog.Error("Register service error", "error", err)
		response.HandleError(w, err)
		return
	}

	if !result.Created {
		response.SuccessWithMessage(w, "User already exists", result)
		return
	}
	response.Created(w, "User registered successfully", result)
}

// GetMe implements UserHandler.
func (h *userHandlerImpl) GetMe(w http.ResponseWriter, r *http.Request) {
	me, err := h.userService.GetMe(r.Context(), principal(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, me)
}

// GetMyRole implements UserHandler.
func (h *userHandlerImpl) GetMyRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.userService.GetMyRole(r.Context(), principal(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, role)
}

// UpdateMe implements UserHandler.
func (h *userHandlerImpl) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateMe decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	updated, err := h.userService.UpdateMe(r.Context(), principal(r), req)
	if err != nil {
		slog.Error("UpdateMe service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Profile updated successfully", updated)
}

// ListUnaffiliated implements UserHandler.
func (h *userHandlerImpl) ListUnaffiliated(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUnaffiliated(r.Context(), principal(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, users)
}

// TeamCount implements UserHandler.
func (h *userHandlerImpl) TeamCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.userService.TeamCount(r.Context(), principal(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, count)
}

// ListMyEmployees implements UserHandler.
func (h *userHandlerImpl) ListMyEmployees(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListMyEmployees(r.Context(), principal(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, users)
}

// AddToTeam implements UserHandler.
func (h *userHandlerImpl) AddToTeam(w http.ResponseWriter, r *http.Request) {
	var req user.AddTeamMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AddToTeam decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.userService.AddToTeam(r.Context(), principal(r), req)
	if err != nil {
		slog.Error("AddToTeam service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team updated", result)
}

// RemoveFromTeam implements UserHandler.
func (h *userHandlerImpl) RemoveFromTeam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.userService.RemoveFromTeam(r.Context(), principal(r), id); err != nil {
		slog.Error("RemoveFromTeam service error", "error", err)
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Employee removed from team", nil)
}

// MyTeam implements UserHandler.
func (h *userHandlerImpl) MyTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.userService.MyTeam(r.Context(), principal(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, team)
}
