package domain

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

//go:generate mockgen -destination mocks/mock_transaction_service.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain TransactionService
//go:generate mockgen -destination mocks/mock_transaction_repository.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain TransactionRepository

// TransactionStatus is the pipeline stage of a deal
type TransactionStatus string

const (
	TransactionStatusProspecting   TransactionStatus = "prospecting"
	TransactionStatusPreListing    TransactionStatus = "pre-listing"
	TransactionStatusListed        TransactionStatus = "listed"
	TransactionStatusUnderContract TransactionStatus = "under-contract"
	TransactionStatusClosed        TransactionStatus = "closed"
	TransactionStatusCancelled     TransactionStatus = "cancelled"

	// DefaultTransactionStatus is assigned when a new transaction names none
	DefaultTransactionStatus = TransactionStatusProspecting
)

const (
	defaultTransactionListLimit = 50
	maxTransactionListLimit     = 500
)

// TransactionStatuses lists the pipeline stages in board order
var TransactionStatuses = []TransactionStatus{
	TransactionStatusProspecting,
	TransactionStatusPreListing,
	TransactionStatusListed,
	TransactionStatusUnderContract,
	TransactionStatusClosed,
	TransactionStatusCancelled,
}

// IsValid reports whether s is a known stage
func (s TransactionStatus) IsValid() bool {
	for _, known := range TransactionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TransactionType is the side of the deal the agent represents
type TransactionType string

const (
	TransactionTypeBuyer  TransactionType = "buyer"
	TransactionTypeSeller TransactionType = "seller"
	TransactionTypeDual   TransactionType = "dual"
	TransactionTypeLease  TransactionType = "lease"
)

// IsValid reports whether t is a known type
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeBuyer, TransactionTypeSeller, TransactionTypeDual, TransactionTypeLease:
		return true
	}
	return false
}

// Transaction is a property deal owned by one agent
type Transaction struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	PropertyAddress string            `json:"property_address"`
	City            string            `json:"city,omitempty"`
	State           string            `json:"state,omitempty"`
	ZipCode         string            `json:"zip_code,omitempty"`
	MLSNumber       string            `json:"mls_number,omitempty"`
	Status          TransactionStatus `json:"status"`
	Type            TransactionType   `json:"type"`
	ClientID        *string           `json:"client_id,omitempty"`
	ListPrice       *float64          `json:"list_price,omitempty"`
	SalesPrice      *float64          `json:"sales_price,omitempty"`
	// CommissionRate is a percentage of the sales price
	CommissionRate *float64  `json:"commission_rate,omitempty"`
	ListingDate    *Date     `json:"listing_date,omitempty"`
	ContractDate   *Date     `json:"contract_date,omitempty"`
	CloseDate      *Date     `json:"close_date,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GrossCommission is sales price times commission rate, or 0 when either is unknown
func (t *Transaction) GrossCommission() float64 {
	if t.SalesPrice == nil || t.CommissionRate == nil {
		return 0
	}
	return *t.SalesPrice * *t.CommissionRate / 100
}

// IsActive reports whether the deal is still in the pipeline
func (t *Transaction) IsActive() bool {
	return t.Status != TransactionStatusClosed && t.Status != TransactionStatusCancelled
}

// TransactionFilter narrows a transaction listing
type TransactionFilter struct {
	Status    []TransactionStatus
	Type      TransactionType
	CloseFrom *Date
	CloseTo   *Date
	OrderBy   string
	Ascending bool
	Limit     int
	Offset    int
	// Count asks for the total number of matching rows
	Count bool
}

// TransactionListResponse is one page of transactions
type TransactionListResponse struct {
	Transactions []*Transaction `json:"transactions"`
	TotalCount   *int64         `json:"total_count,omitempty"`
	Limit        int            `json:"limit"`
	Offset       int            `json:"offset"`
}

// TransactionRepository persists transactions
type TransactionRepository interface {
	List(ctx context.Context, filter TransactionFilter) ([]*Transaction, *int64, error)
	Get(ctx context.Context, id string) (*Transaction, error)
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	Update(ctx context.Context, id string, patch Patch) (*Transaction, error)
	Delete(ctx context.Context, id string) error
	// CountByStatus returns the number of transactions in each stage
	CountByStatus(ctx context.Context) (map[TransactionStatus]int64, error)
}

// TransactionService manages the principal's transactions
type TransactionService interface {
	ListTransactions(ctx context.Context, filter TransactionFilter) (*TransactionListResponse, error)
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*Transaction, error)
	UpdateTransaction(ctx context.Context, req *UpdateTransactionRequest) (*Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

var transactionOrderColumns = map[string]bool{
	"close_date":       true,
	"created_at":       true,
	"updated_at":       true,
	"sales_price":      true,
	"property_address": true,
	"status":           true,
}

// ListTransactionsRequest is used to extract query parameters for listing transactions
type ListTransactionsRequest struct {
	Status    []string `json:"status,omitempty"`
	Type      string   `json:"type,omitempty"`
	CloseFrom *Date    `json:"close_from,omitempty"`
	CloseTo   *Date    `json:"close_to,omitempty"`
	OrderBy   string   `json:"order_by,omitempty"`
	Order     string   `json:"order,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
	Count     bool     `json:"count,omitempty"`
}

// FromURLParams parses URL query parameters into the request
func (r *ListTransactionsRequest) FromURLParams(values url.Values) (err error) {
	r.Status = splitAndTrim(values.Get("status"))
	for _, s := range r.Status {
		if !TransactionStatus(s).IsValid() {
			return fmt.Errorf("invalid status: %s", s)
		}
	}

	r.Type = values.Get("type")
	if r.Type != "" && !TransactionType(r.Type).IsValid() {
		return fmt.Errorf("invalid type: %s", r.Type)
	}

	if r.CloseFrom, err = parseOptionalDate(values, "close_from"); err != nil {
		return err
	}
	if r.CloseTo, err = parseOptionalDate(values, "close_to"); err != nil {
		return err
	}
	if r.CloseFrom != nil && r.CloseTo != nil && r.CloseTo.Before(*r.CloseFrom) {
		return fmt.Errorf("close_to must not be before close_from")
	}

	r.OrderBy = values.Get("order_by")
	if r.OrderBy != "" && !transactionOrderColumns[r.OrderBy] {
		return fmt.Errorf("invalid order_by: %s", r.OrderBy)
	}
	r.Order = strings.ToLower(values.Get("order"))
	if r.Order != "" && r.Order != "asc" && r.Order != "desc" {
		return fmt.Errorf("order must be asc or desc")
	}

	if r.Limit, r.Offset, err = parsePaging(values, defaultTransactionListLimit, maxTransactionListLimit); err != nil {
		return err
	}

	if raw := values.Get("count"); raw != "" {
		if r.Count, err = strconv.ParseBool(raw); err != nil {
			return fmt.Errorf("invalid count parameter: %w", err)
		}
	}
	return nil
}

// ToFilter converts the request to a TransactionFilter
func (r *ListTransactionsRequest) ToFilter() TransactionFilter {
	filter := TransactionFilter{
		Type:      TransactionType(r.Type),
		CloseFrom: r.CloseFrom,
		CloseTo:   r.CloseTo,
		OrderBy:   r.OrderBy,
		Ascending: r.Order == "asc",
		Limit:     r.Limit,
		Offset:    r.Offset,
		Count:     r.Count,
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultTransactionListLimit
	}
	for _, s := range r.Status {
		filter.Status = append(filter.Status, TransactionStatus(s))
	}
	return filter
}

// GetTransactionRequest is used to extract query parameters for getting a single transaction
type GetTransactionRequest struct {
	ID string `json:"id"`
}

// FromURLParams parses URL query parameters into the request
func (r *GetTransactionRequest) FromURLParams(values url.Values) error {
	r.ID = values.Get("id")
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	return nil
}

// CreateTransactionRequest is the payload of a new transaction. Any owner
// field a client might send is ignored.
type CreateTransactionRequest struct {
	PropertyAddress string   `json:"property_address" valid:"required,stringlength(1|255)"`
	City            string   `json:"city,omitempty" valid:"optional,stringlength(1|100)"`
	State           string   `json:"state,omitempty" valid:"optional,stringlength(1|50)"`
	ZipCode         string   `json:"zip_code,omitempty" valid:"optional,stringlength(1|20)"`
	MLSNumber       string   `json:"mls_number,omitempty" valid:"optional,stringlength(1|32)"`
	Status          string   `json:"status,omitempty"`
	Type            string   `json:"type,omitempty"`
	ClientID        *string  `json:"client_id,omitempty"`
	ListPrice       *float64 `json:"list_price,omitempty"`
	SalesPrice      *float64 `json:"sales_price,omitempty"`
	CommissionRate  *float64 `json:"commission_rate,omitempty"`
	ListingDate     *Date    `json:"listing_date,omitempty"`
	ContractDate    *Date    `json:"contract_date,omitempty"`
	CloseDate       *Date    `json:"close_date,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// Validate checks the payload and builds the transaction it describes
func (r *CreateTransactionRequest) Validate() (*Transaction, error) {
	r.PropertyAddress = strings.TrimSpace(r.PropertyAddress)
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return nil, NewValidationError(err.Error())
	}

	status := TransactionStatus(r.Status)
	if status == "" {
		status = DefaultTransactionStatus
	}
	if !status.IsValid() {
		return nil, NewValidationError(fmt.Sprintf("invalid status: %s", r.Status))
	}

	txType := TransactionType(r.Type)
	if txType == "" {
		txType = TransactionTypeBuyer
	}
	if !txType.IsValid() {
		return nil, NewValidationError(fmt.Sprintf("invalid type: %s", r.Type))
	}

	if err := validateMoney(r.ListPrice, r.SalesPrice, r.CommissionRate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Transaction{
		PropertyAddress: r.PropertyAddress,
		City:            strings.TrimSpace(r.City),
		State:           strings.TrimSpace(r.State),
		ZipCode:         strings.TrimSpace(r.ZipCode),
		MLSNumber:       strings.TrimSpace(r.MLSNumber),
		Status:          status,
		Type:            txType,
		ClientID:        nonEmpty(r.ClientID),
		ListPrice:       r.ListPrice,
		SalesPrice:      r.SalesPrice,
		CommissionRate:  r.CommissionRate,
		ListingDate:     r.ListingDate,
		ContractDate:    r.ContractDate,
		CloseDate:       r.CloseDate,
		Notes:           r.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// UpdateTransactionRequest changes the fields that are set
type UpdateTransactionRequest struct {
	ID              string   `json:"id"`
	PropertyAddress *string  `json:"property_address,omitempty"`
	City            *string  `json:"city,omitempty"`
	State           *string  `json:"state,omitempty"`
	ZipCode         *string  `json:"zip_code,omitempty"`
	MLSNumber       *string  `json:"mls_number,omitempty"`
	Status          *string  `json:"status,omitempty"`
	Type            *string  `json:"type,omitempty"`
	ClientID        *string  `json:"client_id,omitempty"`
	ListPrice       *float64 `json:"list_price,omitempty"`
	SalesPrice      *float64 `json:"sales_price,omitempty"`
	CommissionRate  *float64 `json:"commission_rate,omitempty"`
	ListingDate     *Date    `json:"listing_date,omitempty"`
	ContractDate    *Date    `json:"contract_date,omitempty"`
	CloseDate       *Date    `json:"close_date,omitempty"`
	Notes           *string  `json:"notes,omitempty"`
}

// Validate checks the request and returns the columns to change
func (r *UpdateTransactionRequest) Validate() (Patch, error) {
	if r.ID == "" {
		return nil, NewValidationError("id is required")
	}
	if r.PropertyAddress != nil && strings.TrimSpace(*r.PropertyAddress) == "" {
		return nil, NewValidationError("property_address cannot be empty")
	}
	if r.Status != nil && !TransactionStatus(*r.Status).IsValid() {
		return nil, NewValidationError(fmt.Sprintf("invalid status: %s", *r.Status))
	}
	if r.Type != nil && !TransactionType(*r.Type).IsValid() {
		return nil, NewValidationError(fmt.Sprintf("invalid type: %s", *r.Type))
	}
	if err := validateMoney(r.ListPrice, r.SalesPrice, r.CommissionRate); err != nil {
		return nil, err
	}

	patch := Patch{}
	patch.setString("property_address", r.PropertyAddress)
	patch.setString("city", r.City)
	patch.setString("state", r.State)
	patch.setString("zip_code", r.ZipCode)
	patch.setString("mls_number", r.MLSNumber)
	patch.setString("status", r.Status)
	patch.setString("type", r.Type)
	patch.setNullableString("client_id", r.ClientID)
	patch.setFloat("list_price", r.ListPrice)
	patch.setFloat("sales_price", r.SalesPrice)
	patch.setFloat("commission_rate", r.CommissionRate)
	patch.setDate("listing_date", r.ListingDate)
	patch.setDate("contract_date", r.ContractDate)
	patch.setDate("close_date", r.CloseDate)
	patch.setString("notes", r.Notes)
	if len(patch) == 0 {
		return nil, NewValidationError("nothing to update")
	}
	patch["updated_at"] = time.Now().UTC()
	return patch, nil
}

// DeleteTransactionRequest defines the request to delete a transaction
type DeleteTransactionRequest struct {
	ID string `json:"id"`
}

// Validate validates the delete request
func (r *DeleteTransactionRequest) Validate() error {
	if r.ID == "" {
		return NewValidationError("id is required")
	}
	return nil
}

func validateMoney(listPrice, salesPrice, commissionRate *float64) error {
	if listPrice != nil && *listPrice < 0 {
		return NewValidationError("list_price must be positive")
	}
	if salesPrice != nil && *salesPrice < 0 {
		return NewValidationError("sales_price must be positive")
	}
	if commissionRate != nil && (*commissionRate < 0 || *commissionRate > 100) {
		return NewValidationError("commission_rate must be between 0 and 100")
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
