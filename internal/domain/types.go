package domain

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

const dateLayout = "2006-01-02"

// Date is a calendar day stored in a Postgres date column
type Date struct {
	time.Time
}

// NewDate returns the given day at midnight UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts "2006-01-02" or an RFC3339 timestamp
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DateOf(t), nil
}

// String renders the day as YYYY-MM-DD
func (d Date) String() string {
	return d.Format(dateLayout)
}

// AddDays returns the date n days later
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is an earlier day than other
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func isEmail(s string) bool {
	return govalidator.IsEmail(s)
}

// splitAndTrim splits a comma-separated string into an array and trims spaces
func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}

	parts := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// parsePaging reads limit and offset, applying a default and a maximum limit
func parsePaging(values url.Values, defaultLimit, maxLimit int) (limit, offset int, err error) {
	limit = defaultLimit
	if limitStr := values.Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid limit parameter: %w", err)
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if offsetStr := values.Get("offset"); offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid offset parameter: %w", err)
		}
		if offset < 0 {
			return 0, 0, fmt.Errorf("offset must be positive")
		}
	}
	return limit, offset, nil
}

func parseOptionalDate(values url.Values, key string) (*Date, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: %w", key, err)
	}
	return &d, nil
}

func parseOptionalBool(values url.Values, key string) (*bool, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: %w", key, err)
	}
	return &b, nil
}

// Patch collects the columns an update request actually sets
type Patch map[string]interface{}

func (p Patch) setString(column string, v *string) {
	if v != nil {
		p[column] = strings.TrimSpace(*v)
	}
}

// setNullableString clears the column when v points at an empty string
func (p Patch) setNullableString(column string, v *string) {
	if v == nil {
		return
	}
	if s := strings.TrimSpace(*v); s != "" {
		p[column] = s
	} else {
		p[column] = nil
	}
}

func (p Patch) setDate(column string, v *Date) {
	if v == nil {
		return
	}
	if v.IsZero() {
		p[column] = nil
		return
	}
	p[column] = v.String()
}

func (p Patch) setFloat(column string, v *float64) {
	if v != nil {
		p[column] = *v
	}
}
