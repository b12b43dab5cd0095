package domain

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_checklist_service.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain ChecklistService
//go:generate mockgen -destination mocks/mock_item_repository.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain ItemRepository

// ItemKind selects one of the three per-transaction item lists
type ItemKind string

const (
	ItemKindChecklist  ItemKind = "checklist"
	ItemKindDisclosure ItemKind = "disclosure"
	ItemKindTask       ItemKind = "task"
)

// ItemKinds lists every kind
var ItemKinds = []ItemKind{ItemKindChecklist, ItemKindDisclosure, ItemKindTask}

// IsValid reports whether k is a known kind
func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindChecklist, ItemKindDisclosure, ItemKindTask:
		return true
	}
	return false
}

// Table returns the table holding items of this kind
func (k ItemKind) Table() string {
	return string(k) + "_items"
}

// Item is a checklist entry, disclosure document or task of a transaction
type Item struct {
	ID            string     `json:"id"`
	TransactionID string     `json:"transaction_id"`
	UserID        string     `json:"user_id"`
	Kind          ItemKind   `json:"-"`
	Title         string     `json:"title"`
	Section       string     `json:"section,omitempty"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	DueDate       *Date      `json:"due_date,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	SortOrder     int        `json:"sort_order"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsOverdue reports whether the item is open and its due day is before now's day
func (i *Item) IsOverdue(now time.Time) bool {
	if i.Completed || i.DueDate == nil || i.DueDate.IsZero() {
		return false
	}
	return i.DueDate.Before(DateOf(now))
}

// ItemFilter narrows an item listing. An empty TransactionID lists across
// all of the principal's transactions.
type ItemFilter struct {
	TransactionID string
	Completed     *bool
	DueFrom       *Date
	DueTo         *Date
	Limit         int
}

// KindProgress counts the items of one kind
type KindProgress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// ItemProgress summarises the items of a transaction
type ItemProgress struct {
	TransactionID string                    `json:"transaction_id"`
	Total         int                       `json:"total"`
	Completed     int                       `json:"completed"`
	Overdue       int                       `json:"overdue"`
	Percent       int                       `json:"percent"`
	ByKind        map[ItemKind]KindProgress `json:"by_kind"`
}

// Add counts item into the totals
func (p *ItemProgress) Add(item *Item, now time.Time) {
	if p.ByKind == nil {
		p.ByKind = make(map[ItemKind]KindProgress)
	}
	kp := p.ByKind[item.Kind]
	kp.Total++
	p.Total++
	if item.Completed {
		kp.Completed++
		p.Completed++
	}
	if item.IsOverdue(now) {
		kp.Overdue++
		p.Overdue++
	}
	p.ByKind[item.Kind] = kp
	if p.Total > 0 {
		p.Percent = p.Completed * 100 / p.Total
	}
}

// ItemRepository persists items of every kind
type ItemRepository interface {
	List(ctx context.Context, kind ItemKind, filter ItemFilter) ([]*Item, error)
	Get(ctx context.Context, kind ItemKind, id string) (*Item, error)
	Create(ctx context.Context, kind ItemKind, item *Item) (*Item, error)
	CreateBatch(ctx context.Context, kind ItemKind, items []*Item) ([]*Item, error)
	Update(ctx context.Context, kind ItemKind, id string, patch Patch) (*Item, error)
	Delete(ctx context.Context, kind ItemKind, id string) error
}

// ChecklistService manages the items of the principal's transactions
type ChecklistService interface {
	ListItems(ctx context.Context, kind ItemKind, transactionID string) ([]*Item, error)
	CreateItem(ctx context.Context, req *CreateItemRequest) (*Item, error)
	UpdateItem(ctx context.Context, req *UpdateItemRequest) (*Item, error)
	ToggleItem(ctx context.Context, kind ItemKind, id string) (*Item, error)
	DeleteItem(ctx context.Context, kind ItemKind, id string) error
	Progress(ctx context.Context, transactionID string) (*ItemProgress, error)
	// ApplyTemplates seeds disclosure and task items from the template
	// catalogues and returns how many items were created
	ApplyTemplates(ctx context.Context, transaction *Transaction) (int, error)
}

// ListItemsRequest is used to extract query parameters for listing items
type ListItemsRequest struct {
	Kind          ItemKind `json:"kind"`
	TransactionID string   `json:"transaction_id"`
}

// FromURLParams parses URL query parameters into the request
func (r *ListItemsRequest) FromURLParams(values url.Values) error {
	r.Kind = ItemKind(values.Get("kind"))
	if !r.Kind.IsValid() {
		return fmt.Errorf("invalid kind: %q", r.Kind)
	}
	r.TransactionID = values.Get("transaction_id")
	if r.TransactionID == "" {
		return fmt.Errorf("transaction_id is required")
	}
	return nil
}

// ItemProgressRequest is used to extract query parameters for item progress
type ItemProgressRequest struct {
	TransactionID string `json:"transaction_id"`
}

// FromURLParams parses URL query parameters into the request
func (r *ItemProgressRequest) FromURLParams(values url.Values) error {
	r.TransactionID = values.Get("transaction_id")
	if r.TransactionID == "" {
		return fmt.Errorf("transaction_id is required")
	}
	return nil
}

// CreateItemRequest is the payload of a new item
type CreateItemRequest struct {
	Kind          ItemKind `json:"kind"`
	TransactionID string   `json:"transaction_id" valid:"required"`
	Title         string   `json:"title" valid:"required,stringlength(1|500)"`
	Section       string   `json:"section,omitempty" valid:"optional,stringlength(1|100)"`
	DueDate       *Date    `json:"due_date,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	SortOrder     int      `json:"sort_order,omitempty"`
}

// Validate checks the payload and builds the item it describes
func (r *CreateItemRequest) Validate() (*Item, error) {
	if !r.Kind.IsValid() {
		return nil, NewValidationError(fmt.Sprintf("invalid kind: %q", r.Kind))
	}
	r.Title = strings.TrimSpace(r.Title)
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return nil, NewValidationError(err.Error())
	}

	now := time.Now().UTC()
	return &Item{
		TransactionID: r.TransactionID,
		Kind:          r.Kind,
		Title:         r.Title,
		Section:       strings.TrimSpace(r.Section),
		DueDate:       r.DueDate,
		Notes:         r.Notes,
		SortOrder:     r.SortOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// UpdateItemRequest changes the fields that are set
type UpdateItemRequest struct {
	Kind      ItemKind `json:"kind"`
	ID        string   `json:"id"`
	Title     *string  `json:"title,omitempty"`
	Section   *string  `json:"section,omitempty"`
	DueDate   *Date    `json:"due_date,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	Completed *bool    `json:"completed,omitempty"`
	SortOrder *int     `json:"sort_order,omitempty"`
}

// Validate checks the request and returns the columns to change
func (r *UpdateItemRequest) Validate() (Patch, error) {
	if !r.Kind.IsValid() {
		return nil, NewValidationError(fmt.Sprintf("invalid kind: %q", r.Kind))
	}
	if r.ID == "" {
		return nil, NewValidationError("id is required")
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return nil, NewValidationError("title cannot be empty")
	}

	now := time.Now().UTC()
	patch := Patch{}
	patch.setString("title", r.Title)
	patch.setString("section", r.Section)
	patch.setDate("due_date", r.DueDate)
	patch.setString("notes", r.Notes)
	if r.Completed != nil {
		patch.setCompleted(*r.Completed, now)
	}
	if r.SortOrder != nil {
		patch["sort_order"] = *r.SortOrder
	}
	if len(patch) == 0 {
		return nil, NewValidationError("nothing to update")
	}
	patch["updated_at"] = now
	return patch, nil
}

// setCompleted keeps completed and completed_at consistent
func (p Patch) setCompleted(completed bool, now time.Time) {
	p["completed"] = completed
	if completed {
		p["completed_at"] = now
	} else {
		p["completed_at"] = nil
	}
}

// CompletionPatch returns the columns that flip an item's completion
func CompletionPatch(completed bool, now time.Time) Patch {
	patch := Patch{"updated_at": now}
	patch.setCompleted(completed, now)
	return patch
}

// ItemRefRequest names a single item, for toggle and delete
type ItemRefRequest struct {
	Kind ItemKind `json:"kind"`
	ID   string   `json:"id"`
}

// Validate validates the reference
func (r *ItemRefRequest) Validate() error {
	if !r.Kind.IsValid() {
		return NewValidationError(fmt.Sprintf("invalid kind: %q", r.Kind))
	}
	if r.ID == "" {
		return NewValidationError("id is required")
	}
	return nil
}
