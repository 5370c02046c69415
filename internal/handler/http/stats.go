package http

import (
	"net/http"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/domain/stats"
	"github.com/cmlabs-hris/assetverse-backend-go/internal/handler/http/response"
)

type StatsHandler interface {
	HR(w http.ResponseWriter, r *http.Request)
	Employee(w http.ResponseWriter, r *http.Request)
}

type statsHandlerImpl struct {
	statsService stats.StatsService
}

func NewStatsHandler(statsService stats.StatsService) StatsHandler {
	return &statsHandlerImpl{statsService: statsService}
}

// HR implements StatsHandler.
func (h *statsHandlerImpl) HR(w http.ResponseWriter, r *http.Request) {
	result, err := h.statsService.HR(r.Context(), principal(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Employee implements StatsHandler.
func (h *statsHandlerImpl) Employee(w http.ResponseWriter, r *http.Request) {
	result, err := h.statsService.Employee(r.Context(), principal(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
