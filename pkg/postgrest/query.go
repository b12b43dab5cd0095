package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CountOption selects how the total row count is computed
type CountOption string

const (
	CountExact     CountOption = "exact"
	CountPlanned   CountOption = "planned"
	CountEstimated CountOption = "estimated"
)

// SelectOption configures Select
type SelectOption func(*Query)

// WithCount asks the server for a total row count alongside the rows.
// The count ignores Limit and Offset.
func WithCount(count CountOption) SelectOption {
	return func(q *Query) {
		q.count = count
	}
}

type filter struct {
	column string
	op     string
	value  string
}

func (f filter) param() (string, string) {
	return f.column, f.op + "." + f.value
}

type ordering struct {
	column    string
	ascending bool
}

// Query is an immutable read request. Every method returns a new Query and
// leaves the receiver untouched, so a partially built Query can be stored and
// reused as a base for several requests.
type Query struct {
	client  *Client
	table   string
	columns string
	count   CountOption
	filters []filter
	order   *ordering
	limit   int
	offset  int
}

// Table returns the table the query targets
func (q Query) Table() string {
	return q.table
}

// Select records the projected columns. An empty string selects every column.
func (q Query) Select(columns string, opts ...SelectOption) Query {
	q.columns = columns
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

func (q Query) with(f filter) Query {
	filters := make([]filter, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)
	q.filters = append(filters, f)
	return q
}

// Eq adds column = value
func (q Query) Eq(column string, value interface{}) Query {
	return q.with(filter{column, "eq", formatValue(value)})
}

// Neq adds column <> value
func (q Query) Neq(column string, value interface{}) Query {
	return q.with(filter{column, "neq", formatValue(value)})
}

// Gt adds column > value
func (q Query) Gt(column string, value interface{}) Query {
	return q.with(filter{column, "gt", formatValue(value)})
}

// Gte adds column >= value
func (q Query) Gte(column string, value interface{}) Query {
	return q.with(filter{column, "gte", formatValue(value)})
}

// Lt adds column < value
func (q Query) Lt(column string, value interface{}) Query {
	return q.with(filter{column, "lt", formatValue(value)})
}

// Lte adds column <= value
func (q Query) Lte(column string, value interface{}) Query {
	return q.with(filter{column, "lte", formatValue(value)})
}

// Like adds a case-sensitive pattern match; use * or % as wildcard
func (q Query) Like(column, pattern string) Query {
	return q.with(filter{column, "like", pattern})
}

// ILike adds a case-insensitive pattern match
func (q Query) ILike(column, pattern string) Query {
	return q.with(filter{column, "ilike", pattern})
}

// In adds column IN (values...)
func (q Query) In(column string, values ...interface{}) Query {
	return q.with(filter{column, "in", formatList(values)})
}

// Is adds column IS value, where value is nil or a bool
func (q Query) Is(column string, value interface{}) Query {
	return q.with(filter{column, "is", formatValue(value)})
}

// Order sets the single sort key. A later call replaces an earlier one.
func (q Query) Order(column string, ascending bool) Query {
	q.order = &ordering{column: column, ascending: ascending}
	return q
}

// Limit caps the number of returned rows; n <= 0 removes the cap
func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

// Offset skips the first n rows; n <= 0 removes the offset
func (q Query) Offset(n int) Query {
	q.offset = n
	return q
}

// URL returns the request URL Execute would use
func (q Query) URL() string {
	params := make([][2]string, 0, len(q.filters)+4)

	columns := q.columns
	if columns == "" {
		columns = "*"
	}
	params = append(params, [2]string{"select", columns})

	for _, f := range q.filters {
		k, v := f.param()
		params = append(params, [2]string{k, v})
	}

	if q.order != nil {
		direction := "desc"
		if q.order.ascending {
			direction = "asc"
		}
		params = append(params, [2]string{"order", q.order.column + "." + direction})
	}
	if q.limit > 0 {
		params = append(params, [2]string{"limit", strconv.Itoa(q.limit)})
	}
	if q.offset > 0 {
		params = append(params, [2]string{"offset", strconv.Itoa(q.offset)})
	}

	return q.client.tableURL(q.table) + "?" + encodeParams(params)
}

// Execute sends one GET request built from the accumulated state. Each call
// sends a new request; results are never cached.
func (q Query) Execute(ctx context.Context) *Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.URL(), nil)
	if err != nil {
		return errorResult(CodeRequestBuild, fmt.Sprintf("failed to create request: %v", err))
	}
	q.client.setHeaders(req)
	if q.count != "" {
		req.Header.Set("Prefer", "count="+string(q.count))
	}
	return q.client.do(req, q.table, q.count != "")
}

// encodeParams keeps the parameter order and percent-encodes like the
// browser's URLSearchParams, which leaves '*' alone.
func encodeParams(params [][2]string) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encodeComponent(p[0]))
		b.WriteByte('=')
		b.WriteString(encodeComponent(p[1]))
	}
	return b.String()
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%2A", "*")
}

func formatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case *string:
		if v == nil {
			return "null"
		}
		return *v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// formatList renders an in.(...) operand, quoting members that contain
// reserved characters.
func formatList(values []interface{}) string {
	parts := make([]string, len(values))
	for i, value := range values {
		s := formatValue(value)
		if strings.ContainsAny(s, ",()\" ") {
			s = `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
		}
		parts[i] = s
	}
	return "(" + strings.Join(parts, ",") + ")"
}
