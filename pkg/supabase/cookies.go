package supabase

import (
	"net/http"
	"strings"
	"time"
)

const (
	AccessTokenCookie  = "sb-access-token"
	RefreshTokenCookie = "sb-refresh-token"

	accessTokenMaxAge  = time.Hour
	refreshTokenMaxAge = 7 * 24 * time.Hour
)

// SetSessionCookies stores the session tokens on the response
func SetSessionCookies(w http.ResponseWriter, session *Session, secure bool) {
	accessAge := accessTokenMaxAge
	if session.ExpiresIn > 0 {
		accessAge = time.Duration(session.ExpiresIn) * time.Second
	}
	http.SetCookie(w, sessionCookie(AccessTokenCookie, session.AccessToken, accessAge, secure))
	if session.RefreshToken != "" {
		http.SetCookie(w, sessionCookie(RefreshTokenCookie, session.RefreshToken, refreshTokenMaxAge, secure))
	}
}

// ClearSessionCookies expires both session cookies
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := sessionCookie(name, "", 0, secure)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

// TokensFromRequest reads the session tokens. The access token may also come
// from an Authorization: Bearer header, which wins over the cookie.
func TokensFromRequest(r *http.Request) (accessToken, refreshToken string) {
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		accessToken = c.Value
	}
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		refreshToken = c.Value
	}
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			accessToken = parts[1]
		}
	}
	return accessToken, refreshToken
}

func sessionCookie(name, value string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
