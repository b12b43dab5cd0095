package http

import (
	"net/http"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

// idRequest is the body of the delete endpoints
type idRequest struct {
	ID string `json:"id"`
}

type ClientHandler struct {
	service domain.ClientService
	gate    *middleware.SessionGate
	logger  logger.Logger
}

func NewClientHandler(service domain.ClientService, gate *middleware.SessionGate, logger logger.Logger) *ClientHandler {
	return &ClientHandler{
		service: service,
		gate:    gate,
		logger:  logger,
	}
}

func (h *ClientHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.gate.RequireAPI

	mux.Handle("/api/clients.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/clients.get", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/clients.create", requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/clients.update", requireAuth(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("/api/clients.delete", requireAuth(http.HandlerFunc(h.handleDelete)))
}

func (h *ClientHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var req domain.ListClientsRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	clients, err := h.service.ListClients(r.Context(), req.ToFilter())
	if err != nil {
		writeServiceError(w, h.logger, err, "list clients")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"clients": clients,
	})
}

func (h *ClientHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	clientID := r.URL.Query().Get("id")
	if clientID == "" {
		WriteJSONError(w, "Missing client ID", http.StatusBadRequest)
		return
	}

	client, err := h.service.GetClient(r.Context(), clientID)
	if err != nil {
		writeServiceError(w, h.logger, err, "get client")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"client": client,
	})
}

func (h *ClientHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.CreateClientRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	client, err := h.service.CreateClient(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "create client")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"client": client,
	})
}

func (h *ClientHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.UpdateClientRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	client, err := h.service.UpdateClient(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "update client")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"client": client,
	})
}

func (h *ClientHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req idRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		WriteJSONError(w, "Missing client ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteClient(r.Context(), req.ID); err != nil {
		writeServiceError(w, h.logger, err, "delete client")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
