package domain

import "context"

// Principal is the authenticated agent a request acts for.
// AccessToken is forwarded to the data API so row-level policies apply.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name,omitempty"`
	AccessToken string `json:"-"`
}

type principalKey struct{}

// WithPrincipal returns a context carrying p
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the bound principal, or nil
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// RequirePrincipal returns the bound principal or ErrUnauthenticated
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p := PrincipalFromContext(ctx)
	if p == nil || p.ID == "" {
		return nil, ErrUnauthenticated
	}
	return p, nil
}

// Session is a token pair issued at sign-in, callback or refresh
type Session struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
	Principal    *Principal `json:"user"`
}

//go:generate mockgen -destination mocks/mock_auth_service.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain AuthService

// AuthService resolves principals from session tokens and drives the
// sign-in flows of the hosted auth provider
type AuthService interface {
	// Authenticate never fails: absent or unusable credentials yield a nil
	// principal. When the access token had to be refreshed the new session
	// is returned so the caller can re-issue cookies.
	Authenticate(ctx context.Context, accessToken, refreshToken string) (*Principal, *Session)
	SignIn(ctx context.Context, req *SignInRequest) (*Session, error)
	HandleCallback(ctx context.Context, code, codeVerifier string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// SignInRequest is the email/password login form
type SignInRequest struct {
	Email    string `json:"email" valid:"required,email"`
	Password string `json:"password" valid:"required"`
}

// Validate checks the login form
func (r *SignInRequest) Validate() error {
	if r.Email == "" {
		return NewValidationError("email is required")
	}
	if !isEmail(r.Email) {
		return NewValidationError("invalid email format")
	}
	if r.Password == "" {
		return NewValidationError("password is required")
	}
	return nil
}
