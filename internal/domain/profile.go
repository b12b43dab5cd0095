package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_profile_service.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain ProfileService
//go:generate mockgen -destination mocks/mock_profile_repository.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain ProfileRepository

// Theme is the UI colour preference
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// IsValid reports whether t is a known theme
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// Profile is the agent's account row; ID equals the auth user id.
// Gmail tokens are stored sealed.
type Profile struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	FullName          string     `json:"full_name,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Theme             Theme      `json:"theme"`
	BrokerageName     string     `json:"brokerage_name,omitempty"`
	BrokerageAddress  string     `json:"brokerage_address,omitempty"`
	LicenseNumber     string     `json:"license_number,omitempty"`
	GmailConnected    bool       `json:"gmail_connected"`
	GmailEmail        string     `json:"gmail_email,omitempty"`
	GmailAccessToken  string     `json:"gmail_access_token,omitempty"`
	GmailRefreshToken string     `json:"gmail_refresh_token,omitempty"`
	GmailTokenExpiry  *time.Time `json:"gmail_token_expiry,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Redacted returns a copy without the sealed Gmail tokens
func (p *Profile) Redacted() *Profile {
	clone := *p
	clone.GmailAccessToken = ""
	clone.GmailRefreshToken = ""
	return &clone
}

// NewProfileFor builds the first profile row of a principal
func NewProfileFor(principal *Principal) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:        principal.ID,
		Email:     principal.Email,
		FullName:  principal.FullName,
		Theme:     ThemeSystem,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProfileRepository persists profiles
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*Profile, error)
	Create(ctx context.Context, profile *Profile) (*Profile, error)
	Update(ctx context.Context, id string, patch Patch) (*Profile, error)
}

// ProfileService manages the principal's own profile. Returned profiles are redacted.
type ProfileService interface {
	GetProfile(ctx context.Context) (*Profile, error)
	UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*Profile, error)
	ConnectGmail(ctx context.Context, req *ConnectGmailRequest) (*Profile, error)
	DisconnectGmail(ctx context.Context) (*Profile, error)
}

// UpdateProfileRequest changes the fields that are set
type UpdateProfileRequest struct {
	FullName         *string `json:"full_name,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Theme            *string `json:"theme,omitempty"`
	BrokerageName    *string `json:"brokerage_name,omitempty"`
	BrokerageAddress *string `json:"brokerage_address,omitempty"`
	LicenseNumber    *string `json:"license_number,omitempty"`
}

// Validate checks the request and returns the columns to change
func (r *UpdateProfileRequest) Validate() (Patch, error) {
	if r.Theme != nil && !Theme(*r.Theme).IsValid() {
		return nil, NewValidationError(fmt.Sprintf("invalid theme: %s", *r.Theme))
	}
	if r.FullName != nil && len(strings.TrimSpace(*r.FullName)) > 255 {
		return nil, NewValidationError("full_name is too long")
	}

	patch := Patch{}
	patch.setString("full_name", r.FullName)
	patch.setString("phone", r.Phone)
	patch.setString("theme", r.Theme)
	patch.setString("brokerage_name", r.BrokerageName)
	patch.setString("brokerage_address", r.BrokerageAddress)
	patch.setString("license_number", r.LicenseNumber)
	if len(patch) == 0 {
		return nil, NewValidationError("nothing to update")
	}
	patch["updated_at"] = time.Now().UTC()
	return patch, nil
}

// ConnectGmailRequest carries the OAuth tokens of a Gmail account
type ConnectGmailRequest struct {
	Email        string     `json:"email" valid:"required,email"`
	AccessToken  string     `json:"access_token" valid:"required"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Validate validates the connect request
func (r *ConnectGmailRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}
