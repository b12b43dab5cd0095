package middleware

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
	"github.com/mysupertc/MySuperTC-sub001/pkg/supabase"
)

// LoginPath is where protected pages send visitors without a session
const LoginPath = "/login"

// SessionGate resolves the principal of a request from its session cookies
type SessionGate struct {
	auth         domain.AuthService
	cookieSecure bool
	logger       logger.Logger
}

// NewSessionGate creates a gate over the given auth service
func NewSessionGate(auth domain.AuthService, cookieSecure bool, logger logger.Logger) *SessionGate {
	return &SessionGate{
		auth:         auth,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// resolve binds the principal to the request context, re-issuing cookies
// when the session had to be refreshed
func (g *SessionGate) resolve(w http.ResponseWriter, r *http.Request) (*http.Request, *domain.Principal) {
	if p := domain.PrincipalFromContext(r.Context()); p != nil {
		return r, p
	}

	accessToken, refreshToken := supabase.TokensFromRequest(r)
	if accessToken == "" && refreshToken == "" {
		return r, nil
	}

	principal, refreshed := g.auth.Authenticate(r.Context(), accessToken, refreshToken)
	if refreshed != nil {
		supabase.SetSessionCookies(w, &supabase.Session{
			AccessToken:  refreshed.AccessToken,
			RefreshToken: refreshed.RefreshToken,
			ExpiresIn:    refreshed.ExpiresIn,
		}, g.cookieSecure)
		g.logger.Debug("Session refreshed")
	}
	if principal == nil {
		return r, nil
	}

	return r.WithContext(domain.WithPrincipal(r.Context(), principal)), principal
}

// Optional binds the principal when there is one and never rejects
func (g *SessionGate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, _ = g.resolve(w, r)
		next.ServeHTTP(w, r)
	})
}

// RequireAPI answers 401 JSON when the request has no principal
func (g *SessionGate) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, principal := g.resolve(w, r)
		if principal == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePage redirects to the login page when the request has no principal
func (g *SessionGate) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, principal := g.resolve(w, r)
		if principal == nil {
			target := LoginPath + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
