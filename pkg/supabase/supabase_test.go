package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthClient_SignInWithPassword(t *testing.T) {
	var gotPath, gotQuery, gotKey string
	var gotBody map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"bearer","expires_in":3600,"user":{"id":"u1","email":"agent@example.com","user_metadata":{"full_name":"Dana Agent"}}}`))
	}))
	defer ts.Close()

	client := NewAuthClient(ts.URL+"/", "anon", nil)
	session, err := client.SignInWithPassword(context.Background(), "agent@example.com", "pw")

	require.NoError(t, err)
	assert.Equal(t, "/auth/v1/token", gotPath)
	assert.Equal(t, "grant_type=password", gotQuery)
	assert.Equal(t, "anon", gotKey)
	assert.Equal(t, "agent@example.com", gotBody["email"])
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "rt", session.RefreshToken)
	assert.Equal(t, 3600, session.ExpiresIn)
	require.NotNil(t, session.User)
	assert.Equal(t, "u1", session.User.ID)
	assert.Equal(t, "Dana Agent", session.User.FullName())
}

func TestAuthClient_ExchangeAndRefresh(t *testing.T) {
	var queries []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"access_token":"new","refresh_token":"next","expires_in":60}`))
	}))
	defer ts.Close()

	client := NewAuthClient(ts.URL, "anon", nil)

	session, err := client.ExchangeCodeForSession(context.Background(), "code", "verifier")
	require.NoError(t, err)
	assert.Equal(t, "new", session.AccessToken)

	session, err = client.RefreshSession(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "next", session.RefreshToken)

	assert.Equal(t, []string{"grant_type=pkce", "grant_type=refresh_token"}, queries)
}

func TestAuthClient_GetUserAndSignOut(t *testing.T) {
	var authHeaders []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/auth/v1/user":
			_, _ = w.Write([]byte(`{"id":"u1","email":"agent@example.com"}`))
		case "/auth/v1/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	client := NewAuthClient(ts.URL, "anon", nil)

	user, err := client.GetUser(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "agent@example.com", user.Email)

	require.NoError(t, client.SignOut(context.Background(), "tok"))
	assert.Equal(t, []string{"Bearer tok", "Bearer tok"}, authHeaders)
}

func TestAuthClient_ErrorShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	}))
	defer ts.Close()

	_, err := NewAuthClient(ts.URL, "anon", nil).SignInWithPassword(context.Background(), "a@b.c", "bad")

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
	assert.Equal(t, "invalid_grant", authErr.Code)
	assert.Equal(t, "Invalid login credentials", authErr.Message)
	assert.True(t, authErr.IsUnauthorized())
}

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestTokenVerifier(t *testing.T) {
	assert.Nil(t, NewTokenVerifier(""))

	verifier := NewTokenVerifier("s3cret")
	require.NotNil(t, verifier)

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, "s3cret", &Claims{
			Email: "agent@example.com",
			Role:  "authenticated",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		claims, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.Subject)
		assert.Equal(t, "agent@example.com", claims.Email)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, "s3cret", &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})
		_, err := verifier.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other", &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		_, err := verifier.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing expiry", func(t *testing.T) {
		token := signToken(t, "s3cret", &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}})
		_, err := verifier.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing subject", func(t *testing.T) {
		token := signToken(t, "s3cret", &Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		})
		_, err := verifier.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestSessionCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookies(rec, &Session{AccessToken: "at", RefreshToken: "rt"}, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, AccessTokenCookie, cookies[0].Name)
	assert.Equal(t, "at", cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, RefreshTokenCookie, cookies[1].Name)
	assert.Equal(t, 7*24*3600, cookies[1].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	access, refresh := TokensFromRequest(req)
	assert.Equal(t, "at", access)
	assert.Equal(t, "rt", refresh)

	req.Header.Set("Authorization", "Bearer header-token")
	access, _ = TokensFromRequest(req)
	assert.Equal(t, "header-token", access)

	rec = httptest.NewRecorder()
	ClearSessionCookies(rec, false)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 2)
	for _, c := range cleared {
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	}
}

func TestTokensFromRequest_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	access, refresh := TokensFromRequest(req)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}
