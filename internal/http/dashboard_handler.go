package http

import (
	"net/http"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type DashboardHandler struct {
	service domain.DashboardService
	gate    *middleware.SessionGate
	logger  logger.Logger
}

func NewDashboardHandler(service domain.DashboardService, gate *middleware.SessionGate, logger logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		gate:    gate,
		logger:  logger,
	}
}

func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/api/dashboard.summary", h.gate.RequireAPI(http.HandlerFunc(h.handleSummary)))
}

func (h *DashboardHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := h.service.Summary(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "build dashboard")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
