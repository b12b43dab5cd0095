package http

import (
	"net/http"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type TemplateHandler struct {
	service domain.TemplateService
	gate    *middleware.SessionGate
	logger  logger.Logger
}

func NewTemplateHandler(service domain.TemplateService, gate *middleware.SessionGate, logger logger.Logger) *TemplateHandler {
	return &TemplateHandler{
		service: service,
		gate:    gate,
		logger:  logger,
	}
}

func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/api/templates.list", h.gate.RequireAPI(http.HandlerFunc(h.handleList)))
}

func (h *TemplateHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var req domain.ListTemplatesRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	templates, err := h.service.ListTemplates(r.Context(), req.Type)
	if err != nil {
		writeServiceError(w, h.logger, err, "list templates")
		return
	}

	writeJSON(w, http.StatusOK, templates)
}
