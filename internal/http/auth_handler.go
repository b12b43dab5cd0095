package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/http/middleware"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
	"github.com/mysupertc/MySuperTC-sub001/pkg/supabase"
)

const (
	// CodeVerifierCookie holds the PKCE verifier between sign-in and callback
	CodeVerifierCookie = "sb-code-verifier"

	defaultLandingPath = "/dashboard"
)

type AuthHandler struct {
	service      domain.AuthService
	gate         *middleware.SessionGate
	cookieSecure bool
	logger       logger.Logger
}

func NewAuthHandler(service domain.AuthService, gate *middleware.SessionGate, cookieSecure bool, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		gate:         gate,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/callback", h.handleCallback)
	mux.HandleFunc("/auth/signout", h.handleSignOut)
	mux.Handle("/api/auth.me", h.gate.RequireAPI(http.HandlerFunc(h.handleMe)))
}

// handleLogin accepts a JSON body or a browser form
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	jsonRequest := wantsJSON(r)
	var req domain.SignInRequest
	next := ""
	if jsonRequest {
		if err := decodeJSON(r, &req); err != nil {
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
		if err := r.ParseForm(); err != nil {
			WriteJSONError(w, "Invalid form", http.StatusBadRequest)
			return
		}
		req.Email = r.PostForm.Get("email")
		req.Password = r.PostForm.Get("password")
		next = r.PostForm.Get("next")
	}

	session, err := h.service.SignIn(r.Context(), &req)
	if err != nil {
		if jsonRequest {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				WriteJSONError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			writeServiceError(w, h.logger, err, "sign in")
			return
		}
		h.redirectToLogin(w, r, loginErrorMessage(err), next)
		return
	}

	supabase.SetSessionCookies(w, toProviderSession(session), h.cookieSecure)
	if jsonRequest {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user": session.Principal,
		})
		return
	}
	http.Redirect(w, r, safeRedirect(next, defaultLandingPath), http.StatusSeeOther)
}

// handleCallback finishes a hosted sign-in (OAuth or magic link) by
// exchanging the code for a session
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query()
	next := query.Get("next")
	if desc := query.Get("error_description"); desc != "" {
		h.redirectToLogin(w, r, desc, next)
		return
	}
	code := query.Get("code")
	if code == "" {
		h.redirectToLogin(w, r, "Missing authorization code", next)
		return
	}

	verifier := ""
	if c, err := r.Cookie(CodeVerifierCookie); err == nil {
		verifier = c.Value
	}

	session, err := h.service.HandleCallback(r.Context(), code, verifier)
	if err != nil {
		h.redirectToLogin(w, r, loginErrorMessage(err), next)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CodeVerifierCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	supabase.SetSessionCookies(w, toProviderSession(session), h.cookieSecure)
	http.Redirect(w, r, safeRedirect(next, defaultLandingPath), http.StatusSeeOther)
}

func (h *AuthHandler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	accessToken, _ := supabase.TokensFromRequest(r)
	if err := h.service.SignOut(r.Context(), accessToken); err != nil {
		// the local session ends regardless
		h.logger.WithField("error", err.Error()).Warn("Sign-out at the auth provider failed")
	}
	supabase.ClearSessionCookies(w, h.cookieSecure)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
		return
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": domain.PrincipalFromContext(r.Context()),
	})
}

func (h *AuthHandler) redirectToLogin(w http.ResponseWriter, r *http.Request, message, next string) {
	values := url.Values{"error": {message}}
	if next != "" {
		values.Set("next", next)
	}
	http.Redirect(w, r, middleware.LoginPath+"?"+values.Encode(), http.StatusSeeOther)
}

func loginErrorMessage(err error) string {
	var validationErr domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.As(err, &validationErr):
		return validationErr.Message
	}
	return "Sign-in is unavailable, please try again"
}

func toProviderSession(session *domain.Session) *supabase.Session {
	return &supabase.Session{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
	}
}
