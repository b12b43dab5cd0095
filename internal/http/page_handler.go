package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFuncs = template.FuncMap{
	"money": formatMoney,
}

type pipelineStage struct {
	Status domain.TransactionStatus
	Label  string
	Count  int64
}

// PageHandler renders the server-side login and dashboard pages
type PageHandler struct {
	dashboard domain.DashboardService
	gate      *middleware.SessionGate
	logger    logger.Logger
	templates *template.Template
	now       func() time.Time
}

func NewPageHandler(dashboard domain.DashboardService, gate *middleware.SessionGate, logger logger.Logger) *PageHandler {
	templates := template.Must(template.New("pages").Funcs(pageFuncs).ParseFS(templateFS, "templates/*.html"))

	return &PageHandler{
		dashboard: dashboard,
		gate:      gate,
		logger:    logger,
		templates: templates,
		now:       time.Now,
	}
}

func (h *PageHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/login", h.gate.Optional(http.HandlerFunc(h.handleLogin)))
	mux.Handle("/dashboard", h.gate.RequirePage(http.HandlerFunc(h.handleDashboard)))
	mux.HandleFunc("/", h.handleRoot)
}

func (h *PageHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteJSONError(w, "Not found", http.StatusNotFound)
		return
	}
	http.Redirect(w, r, defaultLandingPath, http.StatusFound)
}

func (h *PageHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query()
	next := safeRedirect(query.Get("next"), "")
	if domain.PrincipalFromContext(r.Context()) != nil {
		http.Redirect(w, r, safeRedirect(next, defaultLandingPath), http.StatusSeeOther)
		return
	}

	h.render(w, "login.html", http.StatusOK, map[string]interface{}{
		"Error": query.Get("error"),
		"Next":  next,
	})
}

func (h *PageHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to build dashboard")
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	stages := make([]pipelineStage, 0, len(domain.TransactionStatuses))
	for _, status := range domain.TransactionStatuses {
		stages = append(stages, pipelineStage{
			Status: status,
			Label:  stageLabel(status),
			Count:  summary.StatusCounts[status],
		})
	}

	h.render(w, "dashboard.html", http.StatusOK, map[string]interface{}{
		"Principal": domain.PrincipalFromContext(r.Context()),
		"Summary":   summary,
		"Stages":    stages,
		"Now":       h.now(),
	})
}

// render buffers the page so a template error never yields half a document
func (h *PageHandler) render(w http.ResponseWriter, name string, status int, data interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.WithFields(map[string]interface{}{
			"template": name,
			"error":    err.Error(),
		}).Error("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func stageLabel(status domain.TransactionStatus) string {
	words := strings.Split(string(status), "-")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// formatMoney renders whole dollars with thousands separators
func formatMoney(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}
	digits := fmt.Sprintf("%.0f", amount)
	var out strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	if negative {
		return "-$" + out.String()
	}
	return "$" + out.String()
}
