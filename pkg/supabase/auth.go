// Package supabase talks to the hosted auth provider: credential exchange,
// session refresh, user lookup and sign-out over {base}/auth/v1, plus local
// verification of the access tokens it issues.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const authPath = "/auth/v1"

// HTTPDoer is the subset of *http.Client the auth client needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// User is the principal returned by the auth provider
type User struct {
	ID           string                 `json:"id"`
	Aud          string                 `json:"aud"`
	Role         string                 `json:"role"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	CreatedAt    string                 `json:"created_at"`
}

// FullName returns user_metadata.full_name (or name) when present
func (u *User) FullName() string {
	for _, key := range []string{"full_name", "name"} {
		if v, ok := u.UserMetadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Session is the token pair issued by the auth provider
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	User         *User  `json:"user"`
}

// AuthError is a non-2xx answer from the auth API
type AuthError struct {
	Status  int
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("auth error %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether the provider rejected the credentials
func (e *AuthError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden ||
		(e.Status == http.StatusBadRequest && (e.Code == "invalid_grant" || e.Code == "invalid_credentials"))
}

// AuthClient calls the auth API of one project
type AuthClient struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// NewAuthClient creates an auth client. httpClient may be nil.
func NewAuthClient(baseURL, apiKey string, httpClient HTTPDoer) *AuthClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &AuthClient{
		baseURL:    strings.TrimRight(baseURL, "/") + authPath,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// SignInWithPassword exchanges an email/password pair for a session
func (c *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.call(ctx, http.MethodPost, "/token?grant_type=password", "", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ExchangeCodeForSession completes the PKCE flow started by the browser
func (c *AuthClient) ExchangeCodeForSession(ctx context.Context, authCode, codeVerifier string) (*Session, error) {
	payload := map[string]string{"auth_code": authCode, "code_verifier": codeVerifier}
	var session Session
	if err := c.call(ctx, http.MethodPost, "/token?grant_type=pkce", "", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RefreshSession trades a refresh token for a new session
func (c *AuthClient) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	payload := map[string]string{"refresh_token": refreshToken}
	var session Session
	if err := c.call(ctx, http.MethodPost, "/token?grant_type=refresh_token", "", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetUser returns the user owning accessToken
func (c *AuthClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut revokes the session behind accessToken
func (c *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	return c.call(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *AuthClient) call(ctx context.Context, method, path, accessToken string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAuthError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func parseAuthError(status int, body []byte) *AuthError {
	e := &AuthError{Status: status}
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		e.Code = firstNonEmpty(parsed.Get("error_code").String(), parsed.Get("error").String(), parsed.Get("code").String())
		e.Message = firstNonEmpty(parsed.Get("msg").String(), parsed.Get("error_description").String(), parsed.Get("message").String())
	}
	if e.Message == "" {
		e.Message = firstNonEmpty(strings.TrimSpace(string(body)), http.StatusText(status))
	}
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
