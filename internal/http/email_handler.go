package http

import (
	"net/http"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type EmailHandler struct {
	service domain.EmailService
	gate    *middleware.SessionGate
	logger  logger.Logger
}

func NewEmailHandler(service domain.EmailService, gate *middleware.SessionGate, logger logger.Logger) *EmailHandler {
	return &EmailHandler{
		service: service,
		gate:    gate,
		logger:  logger,
	}
}

func (h *EmailHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.gate.RequireAPI

	mux.Handle("/api/emails.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/emails.preview", requireAuth(http.HandlerFunc(h.handlePreview)))
	mux.Handle("/api/emails.send", requireAuth(http.HandlerFunc(h.handleSend)))
}

func (h *EmailHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var req domain.ListEmailsRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	emails, err := h.service.ListHistory(r.Context(), req.ToFilter())
	if err != nil {
		writeServiceError(w, h.logger, err, "list emails")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"emails": emails,
	})
}

func (h *EmailHandler) handlePreview(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.PreviewEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	preview, err := h.service.Preview(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "preview email")
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

func (h *EmailHandler) handleSend(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.SendEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	email, err := h.service.Send(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "send email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"email": email,
	})
}
