package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/crypto"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

// GmailTokenPurpose is the key-derivation label of sealed Gmail tokens
const GmailTokenPurpose = "profile-gmail-tokens"

type ProfileService struct {
	repo   domain.ProfileRepository
	sealer *crypto.Sealer
	logger logger.Logger
}

func NewProfileService(repo domain.ProfileRepository, sealer *crypto.Sealer, logger logger.Logger) *ProfileService {
	return &ProfileService{
		repo:   repo,
		sealer: sealer,
		logger: logger,
	}
}

// GetProfile returns the principal's profile, creating the row on first access
func (s *ProfileService) GetProfile(ctx context.Context) (*domain.Profile, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.Get(ctx, principal.ID)
	if err == nil {
		return profile.Redacted(), nil
	}
	if !domain.IsNotFound(err) {
		s.logger.WithField("user_id", principal.ID).Error(fmt.Sprintf("Failed to get profile: %v", err))
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile, err = s.repo.Create(ctx, domain.NewProfileFor(principal))
	if err != nil {
		s.logger.WithField("user_id", principal.ID).Error(fmt.Sprintf("Failed to create profile: %v", err))
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	s.logger.WithField("user_id", principal.ID).Info("Profile created")

	return profile.Redacted(), nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	patch, err := req.Validate()
	if err != nil {
		return nil, err
	}

	return s.update(ctx, principal, patch)
}

// ConnectGmail stores the Gmail account and its sealed tokens
func (s *ProfileService) ConnectGmail(ctx context.Context, req *domain.ConnectGmailRequest) (*domain.Profile, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	accessToken, err := s.sealer.EncryptString(req.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to seal gmail access token: %w", err)
	}
	refreshToken := ""
	if req.RefreshToken != "" {
		if refreshToken, err = s.sealer.EncryptString(req.RefreshToken); err != nil {
			return nil, fmt.Errorf("failed to seal gmail refresh token: %w", err)
		}
	}

	patch := domain.Patch{
		"gmail_connected":     true,
		"gmail_email":         req.Email,
		"gmail_access_token":  accessToken,
		"gmail_refresh_token": refreshToken,
		"gmail_token_expiry":  nil,
		"updated_at":          time.Now().UTC(),
	}
	if req.ExpiresAt != nil {
		patch["gmail_token_expiry"] = req.ExpiresAt.UTC()
	}

	return s.update(ctx, principal, patch)
}

// DisconnectGmail clears the Gmail account and tokens
func (s *ProfileService) DisconnectGmail(ctx context.Context) (*domain.Profile, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	return s.update(ctx, principal, domain.Patch{
		"gmail_connected":     false,
		"gmail_email":         nil,
		"gmail_access_token":  nil,
		"gmail_refresh_token": nil,
		"gmail_token_expiry":  nil,
		"updated_at":          time.Now().UTC(),
	})
}

// GmailAccessToken opens the stored access token of the principal
func (s *ProfileService) GmailAccessToken(ctx context.Context) (string, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return "", err
	}
	profile, err := s.repo.Get(ctx, principal.ID)
	if err != nil {
		return "", err
	}
	if !profile.GmailConnected || profile.GmailAccessToken == "" {
		return "", domain.NewValidationError("gmail is not connected")
	}
	return s.sealer.DecryptFromHexString(profile.GmailAccessToken)
}

func (s *ProfileService) update(ctx context.Context, principal *domain.Principal, patch domain.Patch) (*domain.Profile, error) {
	// make sure the row exists before patching it
	if _, err := s.GetProfile(ctx); err != nil {
		return nil, err
	}

	profile, err := s.repo.Update(ctx, principal.ID, patch)
	if err != nil {
		s.logger.WithField("user_id", principal.ID).Error(fmt.Sprintf("Failed to update profile: %v", err))
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile.Redacted(), nil
}
