package http

import (
	"net/http"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

// ItemHandler serves checklist, disclosure and task items. Every route
// names the item kind.
type ItemHandler struct {
	service domain.ChecklistService
	gate    *middleware.SessionGate
	logger  logger.Logger
}

func NewItemHandler(service domain.ChecklistService, gate *middleware.SessionGate, logger logger.Logger) *ItemHandler {
	return &ItemHandler{
		service: service,
		gate:    gate,
		logger:  logger,
	}
}

func (h *ItemHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.gate.RequireAPI

	mux.Handle("/api/items.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/items.create", requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/items.update", requireAuth(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("/api/items.toggle", requireAuth(http.HandlerFunc(h.handleToggle)))
	mux.Handle("/api/items.delete", requireAuth(http.HandlerFunc(h.handleDelete)))
	mux.Handle("/api/items.progress", requireAuth(http.HandlerFunc(h.handleProgress)))
}

func (h *ItemHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var req domain.ListItemsRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := h.service.ListItems(r.Context(), req.Kind, req.TransactionID)
	if err != nil {
		writeServiceError(w, h.logger, err, "list items")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

func (h *ItemHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.CreateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.CreateItem(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "create item")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"item": item,
	})
}

func (h *ItemHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.UpdateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "update item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"item": item,
	})
}

func (h *ItemHandler) handleToggle(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.ItemRefRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, h.logger, err, "toggle item")
		return
	}

	item, err := h.service.ToggleItem(r.Context(), req.Kind, req.ID)
	if err != nil {
		writeServiceError(w, h.logger, err, "toggle item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"item": item,
	})
}

func (h *ItemHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.ItemRefRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, h.logger, err, "delete item")
		return
	}

	if err := h.service.DeleteItem(r.Context(), req.Kind, req.ID); err != nil {
		writeServiceError(w, h.logger, err, "delete item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (h *ItemHandler) handleProgress(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var req domain.ItemProgressRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	progress, err := h.service.Progress(r.Context(), req.TransactionID)
	if err != nil {
		writeServiceError(w, h.logger, err, "get item progress")
		return
	}

	writeJSON(w, http.StatusOK, progress)
}
