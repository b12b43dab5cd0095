package domain

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

//go:generate mockgen -destination mocks/mock_email_service.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain EmailService
//go:generate mockgen -destination mocks/mock_email_history_repository.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain EmailHistoryRepository

// EmailDirection tells whether a logged email went out or came in
type EmailDirection string

const (
	EmailDirectionSent     EmailDirection = "sent"
	EmailDirectionReceived EmailDirection = "received"
)

// IsValid reports whether d is a known direction
func (d EmailDirection) IsValid() bool {
	return d == EmailDirectionSent || d == EmailDirectionReceived
}

// EmailHistory is one logged email
type EmailHistory struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	TransactionID *string        `json:"transaction_id,omitempty"`
	ClientID      *string        `json:"client_id,omitempty"`
	TemplateID    *string        `json:"template_id,omitempty"`
	Direction     EmailDirection `json:"direction"`
	FromAddress   string         `json:"from_address"`
	ToAddresses   []string       `json:"to_addresses"`
	CcAddresses   []string       `json:"cc_addresses,omitempty"`
	Subject       string         `json:"subject"`
	Body          string         `json:"body"`
	ThreadID      string         `json:"thread_id,omitempty"`
	SentAt        time.Time      `json:"sent_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

// EmailFilter narrows an email history listing
type EmailFilter struct {
	TransactionID string
	Direction     EmailDirection
	Limit         int
	Offset        int
}

// EmailPreview is a rendered template
type EmailPreview struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailHistoryRepository persists the email log
type EmailHistoryRepository interface {
	List(ctx context.Context, filter EmailFilter) ([]*EmailHistory, error)
	Create(ctx context.Context, email *EmailHistory) (*EmailHistory, error)
}

// EmailService renders, sends and logs the principal's emails
type EmailService interface {
	ListHistory(ctx context.Context, filter EmailFilter) ([]*EmailHistory, error)
	Preview(ctx context.Context, req *PreviewEmailRequest) (*EmailPreview, error)
	Send(ctx context.Context, req *SendEmailRequest) (*EmailHistory, error)
}

// ListEmailsRequest is used to extract query parameters for listing email history
type ListEmailsRequest struct {
	TransactionID string `json:"transaction_id,omitempty"`
	Direction     string `json:"direction,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// FromURLParams parses URL query parameters into the request
func (r *ListEmailsRequest) FromURLParams(values url.Values) (err error) {
	r.TransactionID = values.Get("transaction_id")
	r.Direction = values.Get("direction")
	if r.Direction != "" && !EmailDirection(r.Direction).IsValid() {
		return fmt.Errorf("invalid direction: %s", r.Direction)
	}
	r.Limit, r.Offset, err = parsePaging(values, 50, 200)
	return err
}

// ToFilter converts the request to an EmailFilter
func (r *ListEmailsRequest) ToFilter() EmailFilter {
	return EmailFilter{
		TransactionID: r.TransactionID,
		Direction:     EmailDirection(r.Direction),
		Limit:         r.Limit,
		Offset:        r.Offset,
	}
}

// PreviewEmailRequest renders a template against a transaction and client
type PreviewEmailRequest struct {
	TemplateID    string `json:"template_id"`
	TransactionID string `json:"transaction_id,omitempty"`
	ClientID      string `json:"client_id,omitempty"`
}

// Validate validates the preview request
func (r *PreviewEmailRequest) Validate() error {
	if r.TemplateID == "" {
		return NewValidationError("template_id is required")
	}
	return nil
}

// SendEmailRequest sends either a template or a literal subject/body
type SendEmailRequest struct {
	To            []string `json:"to"`
	Cc            []string `json:"cc,omitempty"`
	TemplateID    string   `json:"template_id,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	Body          string   `json:"body,omitempty"`
	TransactionID string   `json:"transaction_id,omitempty"`
	ClientID      string   `json:"client_id,omitempty"`
}

// Validate validates the send request
func (r *SendEmailRequest) Validate() error {
	if len(r.To) == 0 {
		return NewValidationError("at least one recipient is required")
	}
	for i, addr := range r.To {
		r.To[i] = strings.TrimSpace(addr)
		if !isEmail(r.To[i]) {
			return NewValidationError(fmt.Sprintf("invalid recipient: %s", addr))
		}
	}
	for i, addr := range r.Cc {
		r.Cc[i] = strings.TrimSpace(addr)
		if !isEmail(r.Cc[i]) {
			return NewValidationError(fmt.Sprintf("invalid cc recipient: %s", addr))
		}
	}
	if r.TemplateID == "" && (strings.TrimSpace(r.Subject) == "" || strings.TrimSpace(r.Body) == "") {
		return NewValidationError("subject and body are required without a template")
	}
	return nil
}
