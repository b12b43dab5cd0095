package domain

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_calendar_service.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain CalendarService
//go:generate mockgen -destination mocks/mock_calendar_event_repository.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain CalendarEventRepository

const (
	defaultAgendaDays = 7
	maxAgendaDays     = 92
)

// CalendarEvent is an appointment, optionally linked to a transaction
type CalendarEvent struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Location      string     `json:"location,omitempty"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	AllDay        bool       `json:"all_day"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// EventFilter narrows an event listing; From is inclusive, To exclusive
type EventFilter struct {
	From          *time.Time
	To            *time.Time
	TransactionID string
	Limit         int
}

// AgendaKind tells where an agenda entry comes from
type AgendaKind string

const (
	AgendaKindEvent AgendaKind = "event"
	AgendaKindTask  AgendaKind = "task"
)

// AgendaEntry is one line of the merged calendar/task agenda
type AgendaEntry struct {
	Kind          AgendaKind `json:"kind"`
	At            time.Time  `json:"at"`
	AllDay        bool       `json:"all_day"`
	Title         string     `json:"title"`
	Location      string     `json:"location,omitempty"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	SourceID      string     `json:"source_id"`
	Completed     bool       `json:"completed,omitempty"`
}

// AgendaFromEvent builds the agenda line of an event
func AgendaFromEvent(e *CalendarEvent) *AgendaEntry {
	return &AgendaEntry{
		Kind:          AgendaKindEvent,
		At:            e.StartTime,
		AllDay:        e.AllDay,
		Title:         e.Title,
		Location:      e.Location,
		TransactionID: e.TransactionID,
		SourceID:      e.ID,
	}
}

// AgendaFromTask builds the agenda line of a task with a due date
func AgendaFromTask(item *Item) *AgendaEntry {
	txID := item.TransactionID
	return &AgendaEntry{
		Kind:          AgendaKindTask,
		At:            item.DueDate.Time,
		AllDay:        true,
		Title:         item.Title,
		TransactionID: &txID,
		SourceID:      item.ID,
		Completed:     item.Completed,
	}
}

// SortAgenda orders entries by time; all-day entries lead their day, ties by title
func SortAgenda(entries []*AgendaEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		dayA, dayB := DateOf(a.At), DateOf(b.At)
		if !dayA.Equal(dayB.Time) {
			return dayA.Before(dayB)
		}
		if a.AllDay != b.AllDay {
			return a.AllDay
		}
		if !a.At.Equal(b.At) {
			return a.At.Before(b.At)
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}

// CalendarEventRepository persists calendar events
type CalendarEventRepository interface {
	List(ctx context.Context, filter EventFilter) ([]*CalendarEvent, error)
	Get(ctx context.Context, id string) (*CalendarEvent, error)
	Create(ctx context.Context, event *CalendarEvent) (*CalendarEvent, error)
	Update(ctx context.Context, id string, patch Patch) (*CalendarEvent, error)
	Delete(ctx context.Context, id string) error
}

// CalendarService manages the principal's calendar
type CalendarService interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]*CalendarEvent, error)
	CreateEvent(ctx context.Context, req *CreateEventRequest) (*CalendarEvent, error)
	UpdateEvent(ctx context.Context, req *UpdateEventRequest) (*CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
	// Agenda merges events and open task due dates between two days, inclusive
	Agenda(ctx context.Context, from, to Date) ([]*AgendaEntry, error)
}

// ListEventsRequest is used to extract query parameters for listing events
type ListEventsRequest struct {
	From          *time.Time `json:"from,omitempty"`
	To            *time.Time `json:"to,omitempty"`
	TransactionID string     `json:"transaction_id,omitempty"`
	Limit         int        `json:"limit,omitempty"`
}

// FromURLParams parses URL query parameters into the request.
// from and to accept RFC3339 timestamps or plain dates.
func (r *ListEventsRequest) FromURLParams(values url.Values) (err error) {
	if r.From, err = parseBound(values.Get("from")); err != nil {
		return fmt.Errorf("invalid from parameter: %w", err)
	}
	if r.To, err = parseBound(values.Get("to")); err != nil {
		return fmt.Errorf("invalid to parameter: %w", err)
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return fmt.Errorf("to must not be before from")
	}
	r.TransactionID = values.Get("transaction_id")
	if limitStr := values.Get("limit"); limitStr != "" {
		if r.Limit, err = strconv.Atoi(limitStr); err != nil {
			return fmt.Errorf("invalid limit parameter: %w", err)
		}
	}
	return nil
}

// ToFilter converts the request to an EventFilter
func (r *ListEventsRequest) ToFilter() EventFilter {
	filter := EventFilter{From: r.From, To: r.To, TransactionID: r.TransactionID, Limit: r.Limit}
	if filter.Limit <= 0 || filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return filter
}

func parseBound(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d.Time, nil
}

// AgendaRequest is used to extract query parameters for the agenda
type AgendaRequest struct {
	From Date `json:"from"`
	To   Date `json:"to"`
}

// FromURLParams parses from/to dates, defaulting to the week starting today
func (r *AgendaRequest) FromURLParams(values url.Values, today Date) error {
	r.From = today
	if raw := values.Get("from"); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			return fmt.Errorf("invalid from parameter: %w", err)
		}
		r.From = d
	}
	r.To = r.From.AddDays(defaultAgendaDays - 1)
	if raw := values.Get("to"); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			return fmt.Errorf("invalid to parameter: %w", err)
		}
		r.To = d
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("to must not be before from")
	}
	if r.From.AddDays(maxAgendaDays).Before(r.To) {
		return fmt.Errorf("agenda range cannot exceed %d days", maxAgendaDays)
	}
	return nil
}

// CreateEventRequest is the payload of a new event
type CreateEventRequest struct {
	Title         string     `json:"title" valid:"required,stringlength(1|255)"`
	Description   string     `json:"description,omitempty"`
	Location      string     `json:"location,omitempty" valid:"optional,stringlength(1|255)"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	AllDay        bool       `json:"all_day,omitempty"`
	TransactionID *string    `json:"transaction_id,omitempty"`
}

// Validate checks the payload and builds the event it describes
func (r *CreateEventRequest) Validate() (*CalendarEvent, error) {
	r.Title = strings.TrimSpace(r.Title)
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return nil, NewValidationError(err.Error())
	}
	if r.StartTime.IsZero() {
		return nil, NewValidationError("start_time is required")
	}
	if r.EndTime != nil && r.EndTime.Before(r.StartTime) {
		return nil, NewValidationError("end_time must not be before start_time")
	}

	now := time.Now().UTC()
	return &CalendarEvent{
		TransactionID: nonEmpty(r.TransactionID),
		Title:         r.Title,
		Description:   r.Description,
		Location:      strings.TrimSpace(r.Location),
		StartTime:     r.StartTime.UTC(),
		EndTime:       utcPtr(r.EndTime),
		AllDay:        r.AllDay,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// UpdateEventRequest changes the fields that are set
type UpdateEventRequest struct {
	ID            string     `json:"id"`
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Location      *string    `json:"location,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	AllDay        *bool      `json:"all_day,omitempty"`
	TransactionID *string    `json:"transaction_id,omitempty"`
}

// Validate checks the request and returns the columns to change
func (r *UpdateEventRequest) Validate() (Patch, error) {
	if r.ID == "" {
		return nil, NewValidationError("id is required")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return nil, NewValidationError("title cannot be empty")
	}
	if r.StartTime != nil && r.EndTime != nil && r.EndTime.Before(*r.StartTime) {
		return nil, NewValidationError("end_time must not be before start_time")
	}

	patch := Patch{}
	patch.setString("title", r.Title)
	patch.setString("description", r.Description)
	patch.setString("location", r.Location)
	if r.StartTime != nil {
		patch["start_time"] = r.StartTime.UTC()
	}
	if r.EndTime != nil {
		patch["end_time"] = r.EndTime.UTC()
	}
	if r.AllDay != nil {
		patch["all_day"] = *r.AllDay
	}
	patch.setNullableString("transaction_id", r.TransactionID)
	if len(patch) == 0 {
		return nil, NewValidationError("nothing to update")
	}
	patch["updated_at"] = time.Now().UTC()
	return patch, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
