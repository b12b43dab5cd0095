package http

import (
	"net/http"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type TransactionHandler struct {
	service domain.TransactionService
	gate    *middleware.SessionGate
	logger  logger.Logger
}

func NewTransactionHandler(service domain.TransactionService, gate *middleware.SessionGate, logger logger.Logger) *TransactionHandler {
	return &TransactionHandler{
		service: service,
		gate:    gate,
		logger:  logger,
	}
}

func (h *TransactionHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.gate.RequireAPI

	// form-post endpoint used by the transaction wizard
	mux.Handle("/api/transactions", h.gate.Optional(http.HandlerFunc(h.handleSubmit)))

	mux.Handle("/api/transactions.list", requireAuth(http.HandlerFunc(h.handleList)))
	mux.Handle("/api/transactions.get", requireAuth(http.HandlerFunc(h.handleGet)))
	mux.Handle("/api/transactions.create", requireAuth(http.HandlerFunc(h.handleCreate)))
	mux.Handle("/api/transactions.update", requireAuth(http.HandlerFunc(h.handleUpdate)))
	mux.Handle("/api/transactions.delete", requireAuth(http.HandlerFunc(h.handleDelete)))
}

// handleSubmit answers with a {success, transaction|error} envelope
func (h *TransactionHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeEnvelopeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if domain.PrincipalFromContext(r.Context()) == nil {
		writeEnvelopeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req domain.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeEnvelopeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	transaction, err := h.service.CreateTransaction(r.Context(), &req)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to create transaction")
		writeEnvelopeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"transaction": transaction,
	})
}

func (h *TransactionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var req domain.ListTransactionsRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.service.ListTransactions(r.Context(), req.ToFilter())
	if err != nil {
		writeServiceError(w, h.logger, err, "list transactions")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *TransactionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var req domain.GetTransactionRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), req.ID)
	if err != nil {
		writeServiceError(w, h.logger, err, "get transaction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transaction": transaction,
	})
}

func (h *TransactionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.CreateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := h.service.CreateTransaction(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "create transaction")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction": transaction,
	})
}

func (h *TransactionHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.UpdateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := h.service.UpdateTransaction(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "update transaction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transaction": transaction,
	})
}

func (h *TransactionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req domain.DeleteTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeServiceError(w, h.logger, err, "delete transaction")
		return
	}

	if err := h.service.DeleteTransaction(r.Context(), req.ID); err != nil {
		writeServiceError(w, h.logger, err, "delete transaction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
