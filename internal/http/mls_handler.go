package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
	"github.com/mysupertc/MySuperTC-sub001/pkg/ratelimiter"
)

// MLSRateLimitNamespace is the limiter namespace of MLS lookups, keyed by principal ID
const MLSRateLimitNamespace = "mls"

// MLSHandler proxies listing lookups. Responses use the
// {success, data|error} envelope the property wizard expects.
type MLSHandler struct {
	service     domain.MLSService
	gate        *middleware.SessionGate
	rateLimiter *ratelimiter.RateLimiter
	logger      logger.Logger
}

func NewMLSHandler(service domain.MLSService, gate *middleware.SessionGate, rateLimiter *ratelimiter.RateLimiter, logger logger.Logger) *MLSHandler {
	return &MLSHandler{
		service:     service,
		gate:        gate,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

func (h *MLSHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/api/mls/lookup", h.gate.Optional(http.HandlerFunc(h.handleLookup)))
}

func (h *MLSHandler) handleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeEnvelopeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	principal := domain.PrincipalFromContext(r.Context())
	if principal == nil {
		writeEnvelopeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if h.rateLimiter != nil && !h.rateLimiter.Allow(MLSRateLimitNamespace, principal.ID) {
		retryAfter := h.rateLimiter.GetRemainingWindow(MLSRateLimitNamespace, principal.ID)
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeEnvelopeError(w, http.StatusTooManyRequests, "Too many lookups, please try again shortly")
		return
	}

	var req domain.MLSLookupRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		writeEnvelopeError(w, http.StatusBadRequest, err.Error())
		return
	}

	listing, err := h.service.Lookup(r.Context(), req.MLSNumber)
	if err != nil {
		var validationErr domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeEnvelopeError(w, http.StatusBadRequest, validationErr.Message)
		case domain.IsNotFound(err):
			writeEnvelopeError(w, http.StatusNotFound, "No listing found for MLS number "+req.MLSNumber)
		default:
			h.logger.WithFields(map[string]interface{}{
				"mls_number": req.MLSNumber,
				"error":      err.Error(),
			}).Error("Failed to look up MLS listing")
			writeEnvelopeError(w, http.StatusBadGateway, "MLS lookup failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    listing,
	})
}

func writeEnvelopeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
