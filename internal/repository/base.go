package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/postgrest"
)

// dataRepository binds the shared data client to the principal of each call.
// The client itself is never mutated, so repositories are safe for
// concurrent use across requests.
type dataRepository struct {
	client *postgrest.Client
}

// scoped returns a client carrying the principal's access token, so the
// backend's row-level policies see the caller
func (r *dataRepository) scoped(ctx context.Context) (*postgrest.Client, *domain.Principal, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return nil, nil, err
	}
	return r.client.WithAccessToken(principal.AccessToken), principal, nil
}

// session binds the access token when there is a principal and falls back
// to the anonymous client otherwise
func (r *dataRepository) session(ctx context.Context) *postgrest.Client {
	if principal := domain.PrincipalFromContext(ctx); principal != nil {
		return r.client.WithAccessToken(principal.AccessToken)
	}
	return r.client
}

// readRows decodes a list result. A schema error (table or column not
// created yet) reads as an empty list; the client has already logged it.
func readRows[T any](res *postgrest.Result, table string) ([]*T, error) {
	if res.Error != nil {
		if res.Error.IsSchemaError() {
			return []*T{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", table, res.Error)
	}
	rows := []*T{}
	if err := res.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", table, err)
	}
	return rows, nil
}

// readOne decodes the first row of a read, mapping no row (or a missing
// table) to *domain.ErrNotFound
func readOne[T any](res *postgrest.Result, entity, id string) (*T, error) {
	if res.Error != nil && res.Error.IsSchemaError() {
		return nil, &domain.ErrNotFound{Entity: entity, ID: id}
	}
	return writtenRow[T](res, entity, id, "get")
}

// writtenRow decodes the representation returned by a write. Writes never
// degrade: a schema error is returned like any other failure.
func writtenRow[T any](res *postgrest.Result, entity, id, op string) (*T, error) {
	var row T
	found, err := res.First(&row)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", op, entity, err)
	}
	if !found {
		return nil, &domain.ErrNotFound{Entity: entity, ID: id}
	}
	return &row, nil
}

// deleted checks that a delete removed a row
func deleted(res *postgrest.Result, entity, id string) error {
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, res.Error)
	}
	var rows []map[string]interface{}
	if err := res.Decode(&rows); err != nil {
		return fmt.Errorf("failed to decode deleted %s: %w", entity, err)
	}
	if len(rows) == 0 {
		return &domain.ErrNotFound{Entity: entity, ID: id}
	}
	return nil
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

// withoutOwner drops any owner column a patch might carry
func withoutOwner(patch domain.Patch) domain.Patch {
	clean := make(domain.Patch, len(patch))
	for k, v := range patch {
		if k == "user_id" || k == "id" {
			continue
		}
		clean[k] = v
	}
	return clean
}
