package repository

import (
	"context"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/postgrest"
)

const calendarEventsTable = "calendar_events"

// CalendarEventRepository implements domain.CalendarEventRepository over the data API
type CalendarEventRepository struct {
	dataRepository
}

// NewCalendarEventRepository creates a new CalendarEventRepository instance
func NewCalendarEventRepository(client *postgrest.Client) domain.CalendarEventRepository {
	return &CalendarEventRepository{dataRepository{client: client}}
}

// List returns the principal's events in start order
func (r *CalendarEventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.CalendarEvent, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	q := client.From(calendarEventsTable).Select("*").Eq("user_id", principal.ID)
	if filter.From != nil {
		q = q.Gte("start_time", *filter.From)
	}
	if filter.To != nil {
		q = q.Lt("start_time", *filter.To)
	}
	if filter.TransactionID != "" {
		q = q.Eq("transaction_id", filter.TransactionID)
	}
	q = q.Order("start_time", true)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	return readRows[domain.CalendarEvent](q.Execute(ctx), calendarEventsTable)
}

// Get returns one event
func (r *CalendarEventRepository) Get(ctx context.Context, id string) (*domain.CalendarEvent, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	res := client.From(calendarEventsTable).Select("*").Eq("id", id).Eq("user_id", principal.ID).Limit(1).Execute(ctx)
	return readOne[domain.CalendarEvent](res, "calendar event", id)
}

// Create inserts an event owned by the principal
func (r *CalendarEventRepository) Create(ctx context.Context, event *domain.CalendarEvent) (*domain.CalendarEvent, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	row := *event
	row.ID = newID(row.ID)
	row.UserID = principal.ID
	res := client.From(calendarEventsTable).Insert(&row).Execute(ctx)
	return writtenRow[domain.CalendarEvent](res, "calendar event", row.ID, "create")
}

// Update applies patch to one event
func (r *CalendarEventRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.CalendarEvent, error) {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	res := client.From(calendarEventsTable).Update(withoutOwner(patch)).Eq("id", id).Eq("user_id", principal.ID).Execute(ctx)
	return writtenRow[domain.CalendarEvent](res, "calendar event", id, "update")
}

// Delete removes one event
func (r *CalendarEventRepository) Delete(ctx context.Context, id string) error {
	client, principal, err := r.scoped(ctx)
	if err != nil {
		return err
	}
	res := client.From(calendarEventsTable).Delete().Eq("id", id).Eq("user_id", principal.ID).Execute(ctx)
	return deleted(res, "calendar event", id)
}
