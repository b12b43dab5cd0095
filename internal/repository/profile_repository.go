package repository

import (
	"context"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/postgrest"
)

const profilesTable = "profiles"

// ProfileRepository implements domain.ProfileRepository over the data API
type ProfileRepository struct {
	dataRepository
}

// NewProfileRepository creates a new ProfileRepository instance
func NewProfileRepository(client *postgrest.Client) domain.ProfileRepository {
	return &ProfileRepository{dataRepository{client: client}}
}

// Get returns the profile with the given user id
func (r *ProfileRepository) Get(ctx context.Context, id string) (*domain.Profile, error) {
	res := r.session(ctx).From(profilesTable).Select("*").Eq("id", id).Limit(1).Execute(ctx)
	return readOne[domain.Profile](res, "profile", id)
}

// Create upserts the principal's own profile row, so two first requests
// racing to create it both succeed
func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	row := *profile
	row.ID = principal.ID
	res := client.From(profilesTable).Upsert(&row, "id").Execute(ctx)
	return writtenRow[domain.Profile](res, "profile", row.ID, "create")
}

// Update applies patch to a profile
func (r *ProfileRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.Profile, error) {
	client, _, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	res := client.From(profilesTable).Update(withoutOwner(patch)).Eq("id", id).Execute(ctx)
	return writtenRow[domain.Profile](res, "profile", id, "update")
}
