package domain

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

//go:generate mockgen -destination mocks/mock_template_service.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain TemplateService
//go:generate mockgen -destination mocks/mock_template_repository.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain TemplateRepository

// TemplateType names one of the template catalogues
type TemplateType string

const (
	TemplateTypeDisclosure TemplateType = "disclosure"
	TemplateTypeTask       TemplateType = "task"
	TemplateTypeEmail      TemplateType = "email"
)

// IsValid reports whether t is a known catalogue
func (t TemplateType) IsValid() bool {
	switch t {
	case TemplateTypeDisclosure, TemplateTypeTask, TemplateTypeEmail:
		return true
	}
	return false
}

// DisclosureTemplate is a document every new transaction has to collect
type DisclosureTemplate struct {
	ID           string    `json:"id"`
	DocumentName string    `json:"document_name"`
	Category     string    `json:"category,omitempty"`
	Description  string    `json:"description,omitempty"`
	Required     bool      `json:"required"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

// TaskTemplate is a task seeded into every new transaction.
// DueOffsetDays counts from the contract date, or from creation when unknown.
type TaskTemplate struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Section       string    `json:"section,omitempty"`
	Description   string    `json:"description,omitempty"`
	DueOffsetDays *int      `json:"due_offset_days,omitempty"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
}

// EmailTemplate is a liquid subject/body pair. UserID is nil for shared templates.
type EmailTemplate struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// TemplateRepository reads the template catalogues
type TemplateRepository interface {
	ListDisclosureTemplates(ctx context.Context) ([]*DisclosureTemplate, error)
	ListTaskTemplates(ctx context.Context) ([]*TaskTemplate, error)
	ListEmailTemplates(ctx context.Context) ([]*EmailTemplate, error)
	GetEmailTemplate(ctx context.Context, id string) (*EmailTemplate, error)
}

// TemplateListResponse holds the requested catalogues
type TemplateListResponse struct {
	Disclosures []*DisclosureTemplate `json:"disclosures,omitempty"`
	Tasks       []*TaskTemplate       `json:"tasks,omitempty"`
	Emails      []*EmailTemplate      `json:"emails,omitempty"`
}

// TemplateService exposes the template catalogues
type TemplateService interface {
	// ListTemplates returns one catalogue, or all of them when templateType is empty
	ListTemplates(ctx context.Context, templateType TemplateType) (*TemplateListResponse, error)
}

// ListTemplatesRequest is used to extract query parameters for listing templates
type ListTemplatesRequest struct {
	Type TemplateType `json:"type,omitempty"`
}

// FromURLParams parses URL query parameters into the request
func (r *ListTemplatesRequest) FromURLParams(values url.Values) error {
	r.Type = TemplateType(values.Get("type"))
	if r.Type != "" && !r.Type.IsValid() {
		return fmt.Errorf("invalid type: %s", r.Type)
	}
	return nil
}
