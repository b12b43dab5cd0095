// Package testutil provides a recording stand-in for the data API
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
	"github.com/mysupertc/MySuperTC-sub001/pkg/postgrest"
)

// RecordedRequest is one request received by a DataAPI
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// CannedResponse is replayed by a DataAPI
type CannedResponse struct {
	Status  int
	Body    string
	Headers map[string]string
}

// OK answers 200 with body
func OK(body string) CannedResponse {
	return CannedResponse{Status: http.StatusOK, Body: body}
}

// Created answers 201 with body
func Created(body string) CannedResponse {
	return CannedResponse{Status: http.StatusCreated, Body: body}
}

// SchemaError answers the way the data API does for a missing table
func SchemaError() CannedResponse {
	return CannedResponse{Status: http.StatusNotFound, Body: `{"code":"42P01","message":"relation \"public.task_items\" does not exist"}`}
}

// DataAPI answers every request with the next canned response, or 200 []
// once they run out, and records what it received
type DataAPI struct {
	t         *testing.T
	server    *httptest.Server
	mu        sync.Mutex
	requests  []RecordedRequest
	responses []CannedResponse
}

// NewDataAPI starts a server that is closed when the test ends
func NewDataAPI(t *testing.T, responses ...CannedResponse) *DataAPI {
	f := &DataAPI{t: t, responses: responses}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		resp := OK("[]")
		if len(f.responses) > 0 {
			resp = f.responses[0]
			f.responses = f.responses[1:]
		}
		f.mu.Unlock()

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		_, _ = w.Write([]byte(resp.Body))
	}))
	t.Cleanup(f.server.Close)
	return f
}

// URL is the project URL to configure clients with
func (f *DataAPI) URL() string {
	return f.server.URL
}

// Client returns an anonymous data client pointed at the server
func (f *DataAPI) Client() *postgrest.Client {
	return postgrest.NewClient(postgrest.Config{
		BaseURL: f.server.URL,
		APIKey:  "anon",
		Logger:  logger.NewTestLogger(f.t),
	})
}

// Last returns the most recent request, failing the test when there is none
func (f *DataAPI) Last() RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.requests)
	return f.requests[len(f.requests)-1]
}

// Count returns how many requests were received
func (f *DataAPI) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}
