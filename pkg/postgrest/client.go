// Package postgrest is a small client for the tabular REST surface exposed
// under {base}/rest/v1. Queries are immutable values built by chaining filter
// calls; nothing is sent until Execute is called on the final value.
//
//	res := client.From("transactions").
//		Select("*", postgrest.WithCount(postgrest.CountExact)).
//		Eq("status", "closed").
//		Order("close_date", false).
//		Limit(5).
//		Execute(ctx)
//	if res.Error != nil {
//		...
//	}
//
// Execute never returns a Go error: HTTP failures, unparseable bodies and
// network errors all come back as Result.Error so callers only nil-check.
package postgrest

import (
	"net/http"
	"strings"
	"time"

	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

const restPath = "/rest/v1/"

// HTTPDoer is the subset of *http.Client the client needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives one call per request issued, after the response (or the
// transport failure) is known. status is 0 when no response was received.
type Observer interface {
	ObserveRequest(table, method string, status int, duration time.Duration)
}

// Config holds the settings shared by every request of a Client
type Config struct {
	// BaseURL is the project URL, without the /rest/v1 suffix
	BaseURL string
	// APIKey is sent as the apikey header on every request
	APIKey     string
	HTTPClient HTTPDoer
	Logger     logger.Logger
	Observer   Observer
}

// Client issues requests against one project. A Client is safe for
// concurrent use; WithAccessToken derives request-scoped copies.
type Client struct {
	baseURL     string
	apiKey      string
	accessToken string
	httpClient  HTTPDoer
	logger      logger.Logger
	observer    Observer
}

// NewClient creates a client without user credentials
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     cfg.Logger,
		observer:   cfg.Observer,
	}
}

// WithAccessToken returns a copy of the client that sends token as a bearer
// credential. An empty token yields a client that sends no Authorization
// header at all.
func (c *Client) WithAccessToken(token string) *Client {
	cp := *c
	cp.accessToken = token
	return &cp
}

// AccessToken returns the bearer credential bound to this client, if any
func (c *Client) AccessToken() string {
	return c.accessToken
}

// From starts a query against table. It performs no I/O.
func (c *Client) From(table string) Query {
	return Query{client: c, table: table}
}

func (c *Client) tableURL(table string) string {
	return c.baseURL + restPath + table
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
}
