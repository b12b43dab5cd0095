package domain

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_client_service.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain ClientService
//go:generate mockgen -destination mocks/mock_client_repository.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain ClientRepository

// ClientType classifies a client of the agent
type ClientType string

const (
	ClientTypeBuyer    ClientType = "buyer"
	ClientTypeSeller   ClientType = "seller"
	ClientTypeBoth     ClientType = "both"
	ClientTypeInvestor ClientType = "investor"
	ClientTypeOther    ClientType = "other"
)

// IsValid reports whether t is a known client type
func (t ClientType) IsValid() bool {
	switch t {
	case ClientTypeBuyer, ClientTypeSeller, ClientTypeBoth, ClientTypeInvestor, ClientTypeOther:
		return true
	}
	return false
}

// Client is a person the agent works for
type Client struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Type      ClientType `json:"type"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ClientFilter narrows a client listing
type ClientFilter struct {
	Type ClientType
	// Search matches a case-insensitive substring of the name
	Search string
	Limit  int
	Offset int
}

// ClientRepository persists clients
type ClientRepository interface {
	List(ctx context.Context, filter ClientFilter) ([]*Client, error)
	Get(ctx context.Context, id string) (*Client, error)
	Create(ctx context.Context, client *Client) (*Client, error)
	Update(ctx context.Context, id string, patch Patch) (*Client, error)
	Delete(ctx context.Context, id string) error
}

// ClientService manages the principal's clients
type ClientService interface {
	ListClients(ctx context.Context, filter ClientFilter) ([]*Client, error)
	GetClient(ctx context.Context, id string) (*Client, error)
	CreateClient(ctx context.Context, req *CreateClientRequest) (*Client, error)
	UpdateClient(ctx context.Context, req *UpdateClientRequest) (*Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// ListClientsRequest is used to extract query parameters for listing clients
type ListClientsRequest struct {
	Type   string `json:"type,omitempty"`
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// FromURLParams parses URL query parameters into the request
func (r *ListClientsRequest) FromURLParams(values url.Values) (err error) {
	r.Type = values.Get("type")
	if r.Type != "" && !ClientType(r.Type).IsValid() {
		return fmt.Errorf("invalid type: %s", r.Type)
	}
	r.Search = strings.TrimSpace(values.Get("search"))
	r.Limit, r.Offset, err = parsePaging(values, 100, 500)
	return err
}

// ToFilter converts the request to a ClientFilter
func (r *ListClientsRequest) ToFilter() ClientFilter {
	return ClientFilter{
		Type:   ClientType(r.Type),
		Search: r.Search,
		Limit:  r.Limit,
		Offset: r.Offset,
	}
}

// CreateClientRequest is the payload of a new client
type CreateClientRequest struct {
	Name  string `json:"name" valid:"required,stringlength(1|255)"`
	Email string `json:"email,omitempty" valid:"optional,email"`
	Phone string `json:"phone,omitempty" valid:"optional,stringlength(1|50)"`
	Type  string `json:"type,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Validate checks the payload and builds the client it describes
func (r *CreateClientRequest) Validate() (*Client, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return nil, NewValidationError(err.Error())
	}

	clientType := ClientType(r.Type)
	if clientType == "" {
		clientType = ClientTypeBuyer
	}
	if !clientType.IsValid() {
		return nil, NewValidationError(fmt.Sprintf("invalid type: %s", r.Type))
	}

	now := time.Now().UTC()
	return &Client{
		Name:      r.Name,
		Email:     strings.ToLower(r.Email),
		Phone:     strings.TrimSpace(r.Phone),
		Type:      clientType,
		Notes:     r.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateClientRequest changes the fields that are set
type UpdateClientRequest struct {
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Type  *string `json:"type,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// Validate checks the request and returns the columns to change
func (r *UpdateClientRequest) Validate() (Patch, error) {
	if r.ID == "" {
		return nil, NewValidationError("id is required")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return nil, NewValidationError("name cannot be empty")
	}
	if r.Email != nil && *r.Email != "" && !isEmail(strings.TrimSpace(*r.Email)) {
		return nil, NewValidationError("invalid email format")
	}
	if r.Type != nil && !ClientType(*r.Type).IsValid() {
		return nil, NewValidationError(fmt.Sprintf("invalid type: %s", *r.Type))
	}

	patch := Patch{}
	patch.setString("name", r.Name)
	if r.Email != nil {
		patch["email"] = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	patch.setString("phone", r.Phone)
	patch.setString("type", r.Type)
	patch.setString("notes", r.Notes)
	if len(patch) == 0 {
		return nil, NewValidationError("nothing to update")
	}
	patch["updated_at"] = time.Now().UTC()
	return patch, nil
}
