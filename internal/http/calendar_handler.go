package http

import (
	"net/http"
	"time"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type CalendarHandler struct {
	service domain.CalendarService
	gate    *middleware.SessionGate
	logger  logger.Logger
	now     func() time.Time
}

func NewCalendarHandler(service domain.CalendarService, gate *middleware.SessionGate, logger logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: service,
		gate:    gate,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *CalendarHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.gate.RequireAPI

	mux.Handle("/api/events.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/events.create", requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/events.update", requireAuth(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("/api/events.delete", requireAuth(http.HandlerFunc(h.handleDelete)))
	mux.Handle("/api/calendar.agenda", requireAuth(http.HandlerFunc(h.handleAgenda)))
}

func (h *CalendarHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var req domain.ListEventsRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	events, err := h.service.ListEvents(r.Context(), req.ToFilter())
	if err != nil {
		writeServiceError(w, h.logger, err, "list events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

func (h *CalendarHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "create event")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"event": event,
	})
}

func (h *CalendarHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.UpdateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "update event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"event": event,
	})
}

func (h *CalendarHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req idRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		WriteJSONError(w, "Missing event ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteEvent(r.Context(), req.ID); err != nil {
		writeServiceError(w, h.logger, err, "delete event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// handleAgenda defaults to the seven days starting today
func (h *CalendarHandler) handleAgenda(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var req domain.AgendaRequest
	if err := req.FromURLParams(r.URL.Query(), domain.DateOf(h.now())); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.service.Agenda(r.Context(), req.From, req.To)
	if err != nil {
		writeServiceError(w, h.logger, err, "build agenda")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"from":    req.From,
		"to":      req.To,
		"entries": entries,
	})
}
