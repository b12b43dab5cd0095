package repository

import (
	"context"
	"fmt"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/postgrest"
)

const transactionsTable = "transactions"

// TransactionRepository implements domain.TransactionRepository over the data API
type TransactionRepository struct {
	dataRepository
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(client *postgrest.Client) domain.TransactionRepository {
	return &TransactionRepository{dataRepository{client: client}}
}

// List returns the principal's transactions matching filter, and the total
// count when filter.Count is set
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, *int64, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, nil, err
	}

	var opts []postgrest.SelectOption
	if filter.Count {
		opts = append(opts, postgrest.WithCount(postgrest.CountExact))
	}
	q := client.From(transactionsTable).Select("*", opts...).Eq("user_id", principal.ID)

	switch len(filter.Status) {
	case 0:
	case 1:
		q = q.Eq("status", filter.Status[0])
	default:
		statuses := make([]interface{}, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = s
		}
		q = q.In("status", statuses...)
	}
	if filter.Type != "" {
		q = q.Eq("type", filter.Type)
	}
	if filter.CloseFrom != nil {
		q = q.Gte("close_date", *filter.CloseFrom)
	}
	if filter.CloseTo != nil {
		q = q.Lte("close_date", *filter.CloseTo)
	}
	if filter.OrderBy != "" {
		q = q.Order(filter.OrderBy, filter.Ascending)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	res := q.Execute(ctx)
	rows, err := readRows[domain.Transaction](res, transactionsTable)
	if err != nil {
		return nil, nil, err
	}
	return rows, res.Count, nil
}

// Get returns one of the principal's transactions
func (r *TransactionRepository) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	res := client.From(transactionsTable).Select("*").
		Eq("id", id).
		Eq("user_id", principal.ID).
		Limit(1).
		Execute(ctx)
	return readOne[domain.Transaction](res, "transaction", id)
}

// Create inserts transaction owned by the principal
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	row := *transaction
	row.ID = newID(row.ID)
	row.UserID = principal.ID

	res := client.From(transactionsTable).Insert(&row).Execute(ctx)
	return writtenRow[domain.Transaction](res, "transaction", row.ID, "create")
}

// Update applies patch to one of the principal's transactions
func (r *TransactionRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Transaction, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	res := client.From(transactionsTable).Update(withoutOwner(patch)).
		Eq("id", id).
		Eq("user_id", principal.ID).
		Execute(ctx)
	return writtenRow[domain.Transaction](res, "transaction", id, "update")
}

// Delete removes one of the principal's transactions; its items cascade
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return err
	}
	res := client.From(transactionsTable).Delete().
		Eq("id", id).
		Eq("user_id", principal.ID).
		Execute(ctx)
	return deleted(res, "transaction", id)
}

// CountByStatus counts the principal's transactions per stage
func (r *TransactionRepository) CountByStatus(ctx context.Context) (map[domain.TransactionStatus]int64, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	res := client.From(transactionsTable).Select("status").Eq("user_id", principal.ID).Execute(ctx)
	rows, err := readRows[struct {
		Status domain.TransactionStatus `json:"status"`
	}](res, transactionsTable)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	counts := make(map[domain.TransactionStatus]int64, len(domain.TransactionStatuses))
	for _, s := range domain.TransactionStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status]++
	}
	return counts, nil
}
