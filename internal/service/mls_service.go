package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/cache"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
	"github.com/mysupertc/MySuperTC-sub001/pkg/metrics"
)

const (
	mlsCachePrefix  = "mls:listing:"
	maxMLSBodyBytes = 4 << 20
)

// listing arrays the listings API is known to wrap results in
var mlsResultPaths = []string{"value.0", "results.0", "listings.0", "data.0", "0"}

// HTTPDoer is the subset of *http.Client used for outgoing calls
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// MLSServiceConfig configures MLSService
type MLSServiceConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient HTTPDoer
	// Cache is optional; a nil cache disables caching
	Cache    cache.Cache
	CacheTTL time.Duration
	// Metrics is optional
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

type MLSService struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	cache      cache.Cache
	cacheTTL   time.Duration
	metrics    *metrics.Metrics
	logger     logger.Logger
}

func NewMLSService(cfg MLSServiceConfig) *MLSService {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &MLSService{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Lookup returns the first listing matching mlsNumber
func (s *MLSService) Lookup(ctx context.Context, mlsNumber string) (*domain.MLSListing, error) {
	mlsNumber = strings.TrimSpace(mlsNumber)
	if mlsNumber == "" {
		return nil, domain.NewValidationError("mls_number is required")
	}
	if s.baseURL == "" {
		return nil, fmt.Errorf("MLS API is not configured")
	}

	if listing := s.cached(ctx, mlsNumber); listing != nil {
		s.observe("hit")
		return listing, nil
	}

	body, err := s.fetch(ctx, mlsNumber)
	if err != nil {
		if domain.IsNotFound(err) {
			s.observe("not_found")
		} else {
			s.observe("error")
		}
		return nil, err
	}

	listing := ParseMLSListing(body)
	if listing == nil {
		s.observe("not_found")
		return nil, &domain.ErrNotFound{Entity: "listing", ID: mlsNumber}
	}
	if listing.MLSNumber == "" {
		listing.MLSNumber = mlsNumber
	}
	s.observe("miss")
	s.store(ctx, mlsNumber, listing)

	return listing, nil
}

func (s *MLSService) fetch(ctx context.Context, mlsNumber string) ([]byte, error) {
	endpoint := s.baseURL + "/listings?" + url.Values{"mls_number": {mlsNumber}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listings request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.WithField("mls_number", mlsNumber).Error(fmt.Sprintf("Listings API request failed: %v", err))
		return nil, fmt.Errorf("failed to reach listings API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMLSBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read listings response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &domain.ErrNotFound{Entity: "listing", ID: mlsNumber}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		message := gjson.GetBytes(body, "message").String()
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		s.logger.WithFields(map[string]interface{}{
			"mls_number": mlsNumber,
			"status":     resp.StatusCode,
		}).Error("Listings API returned an error")
		return nil, fmt.Errorf("listings API returned %d: %s", resp.StatusCode, message)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("listings API returned invalid JSON")
	}
	return body, nil
}

// ParseMLSListing reshapes the first listing of a listings API response,
// accepting RESO field names and common snake_case aliases. It returns nil
// when the response holds no listing.
func ParseMLSListing(body []byte) *domain.MLSListing {
	var first gjson.Result
	for _, path := range mlsResultPaths {
		if r := gjson.GetBytes(body, path); r.Exists() && r.IsObject() {
			first = r
			break
		}
	}
	if !first.Exists() {
		if root := gjson.ParseBytes(body); root.IsObject() && pick(root, "ListingId", "mls_number", "listing_id").Exists() {
			first = root
		} else {
			return nil
		}
	}

	listing := &domain.MLSListing{
		MLSNumber:    pick(first, "ListingId", "mls_number", "listing_id").String(),
		Status:       pick(first, "StandardStatus", "MlsStatus", "status").String(),
		Address:      pick(first, "UnparsedAddress", "address").String(),
		City:         pick(first, "City", "city").String(),
		State:        pick(first, "StateOrProvince", "state").String(),
		ZipCode:      pick(first, "PostalCode", "zip_code", "zip").String(),
		PropertyType: pick(first, "PropertyType", "property_type").String(),
		ListingAgent: pick(first, "ListAgentFullName", "listing_agent").String(),
		Description:  pick(first, "PublicRemarks", "description").String(),
	}
	if r := pick(first, "ListPrice", "list_price", "price"); r.Exists() && r.Type == gjson.Number {
		v := r.Float()
		listing.ListPrice = &v
	}
	if r := pick(first, "BedroomsTotal", "bedrooms"); r.Exists() && r.Type == gjson.Number {
		v := int(r.Int())
		listing.Bedrooms = &v
	}
	if r := pick(first, "BathroomsTotalDecimal", "BathroomsTotalInteger", "bathrooms"); r.Exists() && r.Type == gjson.Number {
		v := r.Float()
		listing.Bathrooms = &v
	}
	if r := pick(first, "LivingArea", "square_feet", "sqft"); r.Exists() && r.Type == gjson.Number {
		v := int(r.Int())
		listing.SquareFeet = &v
	}
	if r := pick(first, "YearBuilt", "year_built"); r.Exists() && r.Type == gjson.Number {
		v := int(r.Int())
		listing.YearBuilt = &v
	}

	first.Get("Media.#.MediaURL").ForEach(func(_, value gjson.Result) bool {
		listing.Photos = append(listing.Photos, value.String())
		return true
	})
	if len(listing.Photos) == 0 {
		first.Get("photos").ForEach(func(_, value gjson.Result) bool {
			if value.Type == gjson.String {
				listing.Photos = append(listing.Photos, value.String())
			}
			return true
		})
	}

	return listing
}

// pick returns the first of paths present in r
func pick(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

func (s *MLSService) cached(ctx context.Context, mlsNumber string) *domain.MLSListing {
	if s.cache == nil {
		return nil
	}
	raw, found, err := s.cache.Get(ctx, mlsCachePrefix+strings.ToUpper(mlsNumber))
	if err != nil {
		s.logger.WithField("mls_number", mlsNumber).Warn(fmt.Sprintf("MLS cache read failed: %v", err))
		return nil
	}
	if !found {
		return nil
	}
	var listing domain.MLSListing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil
	}
	return &listing
}

func (s *MLSService) store(ctx context.Context, mlsNumber string, listing *domain.MLSListing) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(listing)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, mlsCachePrefix+strings.ToUpper(mlsNumber), raw, s.cacheTTL); err != nil {
		s.logger.WithField("mls_number", mlsNumber).Warn(fmt.Sprintf("MLS cache write failed: %v", err))
	}
}

func (s *MLSService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.MLSLookup(outcome)
	}
}
