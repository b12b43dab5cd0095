package http

import (
	"net/http"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type ProfileHandler struct {
	service domain.ProfileService
	gate    *middleware.SessionGate
	logger  logger.Logger
}

func NewProfileHandler(service domain.ProfileService, gate *middleware.SessionGate, logger logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		gate:    gate,
		logger:  logger,
	}
}

func (h *ProfileHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.gate.RequireAPI

	mux.Handle("/api/profile.get", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/profile.update", requireAuth(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("/api/profile.gmail.connect", requireAuth(http.HandlerFunc(h.handleConnectGmail)))
	mux.Handle("/api/profile.gmail.disconnect", requireAuth(http.HandlerFunc(h.handleDisconnectGmail)))
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	profile, err := h.service.GetProfile(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "get profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
	})
}

func (h *ProfileHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "update profile")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
	})
}

func (h *ProfileHandler) handleConnectGmail(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.ConnectGmailRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.service.ConnectGmail(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "connect Gmail")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
	})
}

func (h *ProfileHandler) handleDisconnectGmail(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	profile, err := h.service.DisconnectGmail(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "disconnect Gmail")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
	})
}
