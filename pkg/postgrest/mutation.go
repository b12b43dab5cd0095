package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Mutation is an immutable insert, upsert, update or delete request.
// Like Query it is inert until Execute is called.
type Mutation struct {
	client     *Client
	table      string
	method     string
	body       interface{}
	filters    []filter
	onConflict string
	upsert     bool
}

// Insert prepares a POST of one row (a struct or map) or several rows (a slice)
func (q Query) Insert(values interface{}) Mutation {
	return Mutation{client: q.client, table: q.table, method: http.MethodPost, body: values}
}

// Upsert prepares an insert that merges into existing rows conflicting on
// the comma-separated onConflict columns
func (q Query) Upsert(values interface{}, onConflict string) Mutation {
	return Mutation{client: q.client, table: q.table, method: http.MethodPost, body: values, onConflict: onConflict, upsert: true}
}

// Update prepares a PATCH of the rows matched by the filters added afterwards
func (q Query) Update(values interface{}) Mutation {
	return Mutation{client: q.client, table: q.table, method: http.MethodPatch, body: values}
}

// Delete prepares a DELETE of the rows matched by the filters added afterwards
func (q Query) Delete() Mutation {
	return Mutation{client: q.client, table: q.table, method: http.MethodDelete}
}

func (m Mutation) with(f filter) Mutation {
	filters := make([]filter, len(m.filters), len(m.filters)+1)
	copy(filters, m.filters)
	m.filters = append(filters, f)
	return m
}

// Eq scopes the mutation to rows where column = value
func (m Mutation) Eq(column string, value interface{}) Mutation {
	return m.with(filter{column, "eq", formatValue(value)})
}

// Neq scopes the mutation to rows where column <> value
func (m Mutation) Neq(column string, value interface{}) Mutation {
	return m.with(filter{column, "neq", formatValue(value)})
}

// In scopes the mutation to rows where column is one of values
func (m Mutation) In(column string, values ...interface{}) Mutation {
	return m.with(filter{column, "in", formatList(values)})
}

// Is scopes the mutation to rows where column IS value (nil or bool)
func (m Mutation) Is(column string, value interface{}) Mutation {
	return m.with(filter{column, "is", formatValue(value)})
}

// URL returns the request URL Execute would use
func (m Mutation) URL() string {
	params := make([][2]string, 0, len(m.filters)+1)
	if m.onConflict != "" {
		params = append(params, [2]string{"on_conflict", m.onConflict})
	}
	for _, f := range m.filters {
		k, v := f.param()
		params = append(params, [2]string{k, v})
	}
	u := m.client.tableURL(m.table)
	if len(params) > 0 {
		u += "?" + encodeParams(params)
	}
	return u
}

// Execute sends the mutation and returns the affected rows. Updates and
// deletes without any filter are refused without sending a request.
func (m Mutation) Execute(ctx context.Context) *Result {
	if (m.method == http.MethodPatch || m.method == http.MethodDelete) && len(m.filters) == 0 {
		return errorResult(CodeUnfilteredMutation, fmt.Sprintf("refusing %s on %s without a filter", m.method, m.table))
	}

	var body *bytes.Reader
	if m.body != nil {
		payload, err := json.Marshal(m.body)
		if err != nil {
			return errorResult(CodeRequestBuild, fmt.Sprintf("failed to marshal body: %v", err))
		}
		body = bytes.NewReader(payload)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, m.method, m.URL(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, m.method, m.URL(), nil)
	}
	if err != nil {
		return errorResult(CodeRequestBuild, fmt.Sprintf("failed to create request: %v", err))
	}

	m.client.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	prefer := []string{"return=representation"}
	if m.upsert {
		prefer = append(prefer, "resolution=merge-duplicates")
	}
	req.Header.Set("Prefer", strings.Join(prefer, ","))

	return m.client.do(req, m.table, false)
}
