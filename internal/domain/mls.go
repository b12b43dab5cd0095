package domain

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

//go:generate mockgen -destination mocks/mock_mls_service.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain MLSService

var mlsNumberPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,32}$`)

// MLSListing is the simplified view of a listing returned by the MLS proxy
type MLSListing struct {
	MLSNumber    string   `json:"mls_number"`
	Status       string   `json:"status,omitempty"`
	ListPrice    *float64 `json:"list_price,omitempty"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	ZipCode      string   `json:"zip_code,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *float64 `json:"bathrooms,omitempty"`
	SquareFeet   *int     `json:"square_feet,omitempty"`
	YearBuilt    *int     `json:"year_built,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	ListingAgent string   `json:"listing_agent,omitempty"`
	Description  string   `json:"description,omitempty"`
	Photos       []string `json:"photos,omitempty"`
}

// MLSService looks listings up on the external MLS API
type MLSService interface {
	// Lookup returns the first listing matching mlsNumber, or *ErrNotFound
	Lookup(ctx context.Context, mlsNumber string) (*MLSListing, error)
}

// MLSLookupRequest is used to extract query parameters for an MLS lookup
type MLSLookupRequest struct {
	MLSNumber string `json:"mls_number"`
}

// FromURLParams parses URL query parameters into the request
func (r *MLSLookupRequest) FromURLParams(values url.Values) error {
	r.MLSNumber = strings.TrimSpace(values.Get("mls_number"))
	if r.MLSNumber == "" {
		return fmt.Errorf("mls_number is required")
	}
	if !mlsNumberPattern.MatchString(r.MLSNumber) {
		return fmt.Errorf("invalid mls_number")
	}
	return nil
}
