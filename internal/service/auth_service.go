package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
	"github.com/mysupertc/MySuperTC-sub001/pkg/supabase"
)

// AuthProvider is the hosted auth API, implemented by *supabase.AuthClient
type AuthProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error)
	ExchangeCodeForSession(ctx context.Context, authCode, codeVerifier string) (*supabase.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*supabase.Session, error)
	GetUser(ctx context.Context, accessToken string) (*supabase.User, error)
	SignOut(ctx context.Context, accessToken string) error
}

type AuthService struct {
	provider AuthProvider
	// verifier is nil when no JWT secret is configured
	verifier *supabase.TokenVerifier
	logger   logger.Logger
}

func NewAuthService(provider AuthProvider, verifier *supabase.TokenVerifier, logger logger.Logger) *AuthService {
	return &AuthService{
		provider: provider,
		verifier: verifier,
		logger:   logger,
	}
}

// Authenticate resolves the principal of a request. An expired or rejected
// access token is refreshed with the refresh token when one is present.
func (s *AuthService) Authenticate(ctx context.Context, accessToken, refreshToken string) (*domain.Principal, *domain.Session) {
	if accessToken != "" {
		principal, refresh := s.principalFromAccessToken(ctx, accessToken)
		if principal != nil {
			return principal, nil
		}
		if !refresh {
			return nil, nil
		}
	}

	if refreshToken == "" {
		return nil, nil
	}

	session, err := s.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		s.logAuthFailure("Session refresh failed", err)
		return nil, nil
	}
	converted := toDomainSession(session)
	if converted.Principal == nil {
		return nil, nil
	}

	return converted.Principal, converted
}

// principalFromAccessToken returns the principal, or whether refreshing is
// worth trying
func (s *AuthService) principalFromAccessToken(ctx context.Context, accessToken string) (*domain.Principal, bool) {
	if s.verifier != nil {
		claims, err := s.verifier.Verify(accessToken)
		if err != nil {
			if errors.Is(err, supabase.ErrTokenExpired) {
				return nil, true
			}
			s.logger.Debug(fmt.Sprintf("Rejected access token: %v", err))
			return nil, false
		}
		return &domain.Principal{
			ID:          claims.Subject,
			Email:       claims.Email,
			AccessToken: accessToken,
		}, false
	}

	user, err := s.provider.GetUser(ctx, accessToken)
	if err != nil {
		var authErr *supabase.AuthError
		if errors.As(err, &authErr) && authErr.IsUnauthorized() {
			return nil, true
		}
		s.logAuthFailure("User lookup failed", err)
		return nil, false
	}

	return toPrincipal(user, accessToken), false
}

func (s *AuthService) SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		var authErr *supabase.AuthError
		if errors.As(err, &authErr) && authErr.IsUnauthorized() {
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.WithField("email", req.Email).Error(fmt.Sprintf("Sign-in failed: %v", err))
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	return toDomainSession(session), nil
}

// HandleCallback exchanges an auth code for a session
func (s *AuthService) HandleCallback(ctx context.Context, code, codeVerifier string) (*domain.Session, error) {
	if code == "" {
		return nil, domain.NewValidationError("code is required")
	}

	session, err := s.provider.ExchangeCodeForSession(ctx, code, codeVerifier)
	if err != nil {
		var authErr *supabase.AuthError
		if errors.As(err, &authErr) && authErr.IsUnauthorized() {
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error(fmt.Sprintf("Code exchange failed: %v", err))
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	return toDomainSession(session), nil
}

// SignOut revokes the session; an already invalid token is not an error
func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return nil
	}
	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		var authErr *supabase.AuthError
		if errors.As(err, &authErr) && authErr.IsUnauthorized() {
			return nil
		}
		s.logger.Warn(fmt.Sprintf("Sign-out failed: %v", err))
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (s *AuthService) logAuthFailure(msg string, err error) {
	var authErr *supabase.AuthError
	if errors.As(err, &authErr) && authErr.IsUnauthorized() {
		s.logger.Debug(fmt.Sprintf("%s: %v", msg, err))
		return
	}
	s.logger.Warn(fmt.Sprintf("%s: %v", msg, err))
}

func toPrincipal(user *supabase.User, accessToken string) *domain.Principal {
	if user == nil || user.ID == "" {
		return nil
	}
	return &domain.Principal{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName(),
		AccessToken: accessToken,
	}
}

func toDomainSession(session *supabase.Session) *domain.Session {
	return &domain.Session{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
		Principal:    toPrincipal(session.User, session.AccessToken),
	}
}
