package repository

import (
	"context"
	"fmt"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/postgrest"
)

// ItemRepository implements domain.ItemRepository. The kind picks the table.
type ItemRepository struct {
	dataRepository
}

// NewItemRepository creates a new ItemRepository instance
func NewItemRepository(client *postgrest.Client) domain.ItemRepository {
	return &ItemRepository{dataRepository{client: client}}
}

func itemEntity(kind domain.ItemKind) string {
	return string(kind) + " item"
}

func checkKind(kind domain.ItemKind) error {
	if !kind.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid item kind: %q", kind))
	}
	return nil
}

func tagKind(items []*domain.Item, kind domain.ItemKind) []*domain.Item {
	for _, item := range items {
		item.Kind = kind
	}
	return items
}

// List returns items of one kind, ordered by sort order then due date
func (r *ItemRepository) List(ctx context.Context, kind domain.ItemKind, filter domain.ItemFilter) ([]*domain.Item, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}

	q := client.From(kind.Table()).Select("*").Eq("user_id", principal.ID)
	if filter.TransactionID != "" {
		q = q.Eq("transaction_id", filter.TransactionID)
	}
	if filter.Completed != nil {
		q = q.Is("completed", *filter.Completed)
	}
	if filter.DueFrom != nil {
		q = q.Gte("due_date", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		q = q.Lte("due_date", *filter.DueTo)
	}
	if filter.TransactionID != "" {
		q = q.Order("sort_order", true)
	} else {
		q = q.Order("due_date", true)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	items, err := readRows[domain.Item](q.Execute(ctx), kind.Table())
	if err != nil {
		return nil, err
	}
	return tagKind(items, kind), nil
}

// Get returns one item
func (r *ItemRepository) Get(ctx context.Context, kind domain.ItemKind, id string) (*domain.Item, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	res := client.From(kind.Table()).Select("*").Eq("id", id).Eq("user_id", principal.ID).Limit(1).Execute(ctx)
	item, err := readOne[domain.Item](res, itemEntity(kind), id)
	if err != nil {
		return nil, err
	}
	item.Kind = kind
	return item, nil
}

// Create inserts one item owned by the principal
func (r *ItemRepository) Create(ctx context.Context, kind domain.ItemKind, item *domain.Item) (*domain.Item, error) {
	created, err := r.CreateBatch(ctx, kind, []*domain.Item{item})
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("failed to create %s: no row returned", itemEntity(kind))
	}
	return created[0], nil
}

// CreateBatch inserts several items in one request
func (r *ItemRepository) CreateBatch(ctx context.Context, kind domain.ItemKind, items []*domain.Item) ([]*domain.Item, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []*domain.Item{}, nil
	}
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Item, len(items))
	for i, item := range items {
		rows[i] = *item
		rows[i].ID = newID(rows[i].ID)
		rows[i].UserID = principal.ID
	}

	res := client.From(kind.Table()).Insert(rows).Execute(ctx)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to create %s: %w", itemEntity(kind), res.Error)
	}
	created := []*domain.Item{}
	if err := res.Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode created items: %w", err)
	}
	return tagKind(created, kind), nil
}

// Update applies patch to one item
func (r *ItemRepository) Update(ctx context.Context, kind domain.ItemKind, id string, patch domain.Patch) (*domain.Item, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	res := client.From(kind.Table()).Update(withoutOwner(patch)).Eq("id", id).Eq("user_id", principal.ID).Execute(ctx)
	item, err := writtenRow[domain.Item](res, itemEntity(kind), id, "update")
	if err != nil {
		return nil, err
	}
	item.Kind = kind
	return item, nil
}

// Delete removes one item
func (r *ItemRepository) Delete(ctx context.Context, kind domain.ItemKind, id string) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return err
	}
	res := client.From(kind.Table()).Delete().Eq("id", id).Eq("user_id", principal.ID).Execute(ctx)
	return deleted(res, itemEntity(kind), id)
}
