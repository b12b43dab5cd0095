package repository

import (
	"context"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/postgrest"
)

const emailHistoryTable = "email_history"

// EmailHistoryRepository implements domain.EmailHistoryRepository over the data API
type EmailHistoryRepository struct {
	dataRepository
}

// NewEmailHistoryRepository creates a new EmailHistoryRepository instance
func NewEmailHistoryRepository(client *postgrest.Client) domain.EmailHistoryRepository {
	return &EmailHistoryRepository{dataRepository{client: client}}
}

// List returns the principal's logged emails, newest first
func (r *EmailHistoryRepository) List(ctx context.Context, filter domain.EmailFilter) ([]*domain.EmailHistory, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	q := client.From(emailHistoryTable).Select("*").Eq("user_id", principal.ID)
	if filter.TransactionID != "" {
		q = q.Eq("transaction_id", filter.TransactionID)
	}
	if filter.Direction != "" {
		q = q.Eq("direction", filter.Direction)
	}
	q = q.Order("sent_at", false)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	return readRows[domain.EmailHistory](q.Execute(ctx), emailHistoryTable)
}

// Create logs an email for the principal
func (r *EmailHistoryRepository) Create(ctx context.Context, email *domain.EmailHistory) (*domain.EmailHistory, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	row := *email
	row.ID = newID(row.ID)
	row.UserID = principal.ID
	res := client.From(emailHistoryTable).Insert(&row).Execute(ctx)
	return writtenRow[domain.EmailHistory](res, "email", row.ID, "create")
}
