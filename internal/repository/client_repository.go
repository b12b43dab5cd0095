package repository

import (
	"context"
	"strings"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/postgrest"
)

const clientsTable = "clients"

// ClientRepository implements domain.ClientRepository over the data API
type ClientRepository struct {
	dataRepository
}

// NewClientRepository creates a new ClientRepository instance
func NewClientRepository(client *postgrest.Client) domain.ClientRepository {
	return &ClientRepository{dataRepository{client: client}}
}

// List returns the principal's clients sorted by name
func (r *ClientRepository) List(ctx context.Context, filter domain.ClientFilter) ([]*domain.Client, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	q := client.From(clientsTable).Select("*").Eq("user_id", principal.ID)
	if filter.Type != "" {
		q = q.Eq("type", filter.Type)
	}
	if filter.Search != "" {
		q = q.ILike("name", "*"+escapeLike(filter.Search)+"*")
	}
	q = q.Order("name", true)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	return readRows[domain.Client](q.Execute(ctx), clientsTable)
}

// Get returns one of the principal's clients
func (r *ClientRepository) Get(ctx context.Context, id string) (*domain.Client, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	res := client.From(clientsTable).Select("*").Eq("id", id).Eq("user_id", principal.ID).Limit(1).Execute(ctx)
	return readOne[domain.Client](res, "client", id)
}

// Create inserts a client owned by the principal
func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	row := *c
	row.ID = newID(row.ID)
	row.UserID = principal.ID
	res := client.From(clientsTable).Insert(&row).Execute(ctx)
	return writtenRow[domain.Client](res, "client", row.ID, "create")
}

// Update applies patch to one of the principal's clients
func (r *ClientRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Client, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	res := client.From(clientsTable).Update(withoutOwner(patch)).Eq("id", id).Eq("user_id", principal.ID).Execute(ctx)
	return writtenRow[domain.Client](res, "client", id, "update")
}

// Delete removes one of the principal's clients
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return err
	}
	res := client.From(clientsTable).Delete().Eq("id", id).Eq("user_id", principal.ID).Execute(ctx)
	return deleted(res, "client", id)
}

// escapeLike neutralises the pattern characters of a user supplied search
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `\*`).Replace(s)
}
