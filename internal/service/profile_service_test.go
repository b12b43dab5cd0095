package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/domain/mocks"
	"github.com/mysupertc/MySuperTC-sub001/pkg/crypto"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

func newProfileService(t *testing.T, ctrl *gomock.Controller) (*ProfileService, *mocks.MockProfileRepository, *crypto.Sealer) {
	sealer, err := crypto.NewSealer("test-secret-key", GmailTokenPurpose)
	require.NoError(t, err)
	repo := mocks.NewMockProfileRepository(ctrl)
	return NewProfileService(repo, sealer, logger.NewTestLogger(t)), repo, sealer
}

func TestProfileService_GetProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, repo, _ := newProfileService(t, ctrl)
	ctx := principalContext()

	t.Run("existing profile is redacted", func(t *testing.T) {
		repo.EXPECT().Get(ctx, "user-1").Return(&domain.Profile{
			ID:                "user-1",
			GmailConnected:    true,
			GmailAccessToken:  "sealed-access",
			GmailRefreshToken: "sealed-refresh",
		}, nil)

		profile, err := service.GetProfile(ctx)
		require.NoError(t, err)
		assert.True(t, profile.GmailConnected)
		assert.Empty(t, profile.GmailAccessToken)
		assert.Empty(t, profile.GmailRefreshToken)
	})

	t.Run("first access creates the row", func(t *testing.T) {
		repo.EXPECT().Get(ctx, "user-1").Return(nil, &domain.ErrNotFound{Entity: "profile", ID: "user-1"})
		repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, p *domain.Profile) (*domain.Profile, error) {
				assert.Equal(t, "user-1", p.ID)
				assert.Equal(t, "agent@example.com", p.Email)
				assert.Equal(t, "Alex Agent", p.FullName)
				assert.Equal(t, domain.ThemeSystem, p.Theme)
				return p, nil
			})

		profile, err := service.GetProfile(ctx)
		require.NoError(t, err)
		assert.Equal(t, "user-1", profile.ID)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo.EXPECT().Get(ctx, "user-1").Return(nil, errors.New("db down"))

		_, err := service.GetProfile(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get profile")
	})
}

func TestProfileService_UpdateProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, repo, _ := newProfileService(t, ctrl)
	ctx := principalContext()
	theme := "dark"

	repo.EXPECT().Get(ctx, "user-1").Return(&domain.Profile{ID: "user-1"}, nil)
	repo.EXPECT().Update(ctx, "user-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, patch domain.Patch) (*domain.Profile, error) {
			assert.Equal(t, "dark", patch["theme"])
			return &domain.Profile{ID: "user-1", Theme: domain.ThemeDark}, nil
		})

	profile, err := service.UpdateProfile(ctx, &domain.UpdateProfileRequest{Theme: &theme})
	require.NoError(t, err)
	assert.Equal(t, domain.ThemeDark, profile.Theme)

	bad := "neon"
	_, err = service.UpdateProfile(ctx, &domain.UpdateProfileRequest{Theme: &bad})
	assert.True(t, domain.IsValidationError(err))
}

func TestProfileService_Gmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, repo, sealer := newProfileService(t, ctrl)
	ctx := principalContext()
	expiry := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	var stored domain.Patch

	t.Run("connect seals the tokens", func(t *testing.T) {
		repo.EXPECT().Get(ctx, "user-1").Return(&domain.Profile{ID: "user-1"}, nil)
		repo.EXPECT().Update(ctx, "user-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, patch domain.Patch) (*domain.Profile, error) {
				stored = patch
				return &domain.Profile{
					ID:               "user-1",
					GmailConnected:   true,
					GmailEmail:       "agent@gmail.com",
					GmailAccessToken: patch["gmail_access_token"].(string),
				}, nil
			})

		profile, err := service.ConnectGmail(ctx, &domain.ConnectGmailRequest{
			Email:        "agent@gmail.com",
			AccessToken:  "ya29.access",
			RefreshToken: "1//refresh",
			ExpiresAt:    &expiry,
		})
		require.NoError(t, err)
		assert.True(t, profile.GmailConnected)
		assert.Empty(t, profile.GmailAccessToken)

		assert.Equal(t, true, stored["gmail_connected"])
		assert.Equal(t, expiry, stored["gmail_token_expiry"])
		sealedAccess := stored["gmail_access_token"].(string)
		assert.NotEqual(t, "ya29.access", sealedAccess)
		plain, err := sealer.DecryptFromHexString(sealedAccess)
		require.NoError(t, err)
		assert.Equal(t, "ya29.access", plain)
	})

	t.Run("access token is opened on demand", func(t *testing.T) {
		repo.EXPECT().Get(ctx, "user-1").Return(&domain.Profile{
			ID:               "user-1",
			GmailConnected:   true,
			GmailAccessToken: stored["gmail_access_token"].(string),
		}, nil)

		token, err := service.GmailAccessToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ya29.access", token)
	})

	t.Run("disconnect clears the tokens", func(t *testing.T) {
		repo.EXPECT().Get(ctx, "user-1").Return(&domain.Profile{ID: "user-1"}, nil)
		repo.EXPECT().Update(ctx, "user-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, patch domain.Patch) (*domain.Profile, error) {
				assert.Equal(t, false, patch["gmail_connected"])
				assert.Nil(t, patch["gmail_access_token"])
				assert.Nil(t, patch["gmail_refresh_token"])
				return &domain.Profile{ID: "user-1"}, nil
			})

		profile, err := service.DisconnectGmail(ctx)
		require.NoError(t, err)
		assert.False(t, profile.GmailConnected)
	})

	t.Run("not connected", func(t *testing.T) {
		repo.EXPECT().Get(ctx, "user-1").Return(&domain.Profile{ID: "user-1"}, nil)

		_, err := service.GmailAccessToken(ctx)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("connect validates the email", func(t *testing.T) {
		_, err := service.ConnectGmail(ctx, &domain.ConnectGmailRequest{Email: "nope", AccessToken: "x"})
		assert.True(t, domain.IsValidationError(err))
	})
}
