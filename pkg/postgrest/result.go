package postgrest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Client-side error codes. Server codes (SQLSTATE or PGRSTxxx) are passed
// through untouched.
const (
	CodeFetchError         = "FETCH_ERROR"
	CodeRequestBuild       = "REQUEST_BUILD_ERROR"
	CodeInvalidResponse    = "INVALID_RESPONSE"
	CodeUnfilteredMutation = "UNFILTERED_MUTATION"
)

// schemaErrorCodes are the codes reported when a table or column the caller
// references does not exist (yet). Deliberately narrow.
var schemaErrorCodes = map[string]bool{
	"42P01":    true, // undefined_table
	"42703":    true, // undefined_column
	"PGRST204": true, // column not found in schema cache
	"PGRST205": true, // table not found in schema cache
}

// Error is the structured failure carried by a Result
type Error struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
	// Status is the HTTP status, or 0 when no response was received
	Status int `json:"-"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsSchemaError reports whether the error means a referenced table or column
// is missing from the database schema
func (e *Error) IsSchemaError() bool {
	return e != nil && schemaErrorCodes[e.Code]
}

// IsNetworkError reports whether the request never got a response
func (e *Error) IsNetworkError() bool {
	return e != nil && e.Code == CodeFetchError
}

// IsSchemaError reports whether err is, or wraps, a schema *Error
func IsSchemaError(err error) bool {
	var pgErr *Error
	return errors.As(err, &pgErr) && pgErr.IsSchemaError()
}

// Result is the uniform outcome of Execute
type Result struct {
	// Data is the raw JSON body of a successful response, nil on failure
	Data  json.RawMessage
	Error *Error
	// Count is only set when a count was requested and the server reported a total
	Count  *int64
	Status int
}

// Decode unmarshals Data into v. It returns Result.Error if the request failed.
func (r *Result) Decode(v interface{}) error {
	if r.Error != nil {
		return r.Error
	}
	if len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// First decodes the first row of an array response into v and reports
// whether there was one
func (r *Result) First(v interface{}) (bool, error) {
	if r.Error != nil {
		return false, r.Error
	}
	if len(r.Data) == 0 {
		return false, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(r.Data, &rows); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(rows[0], v); err != nil {
		return false, fmt.Errorf("failed to decode row: %w", err)
	}
	return true, nil
}

func errorResult(code, message string) *Result {
	return &Result{Error: &Error{Code: code, Message: message}}
}

func (c *Client) do(req *http.Request, table string, wantCount bool) *Result {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(table, req.Method, 0, start)
		res := errorResult(CodeFetchError, err.Error())
		c.logFailure(table, req.Method, res.Error)
		return res
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(table, req.Method, resp.StatusCode, start)
	if err != nil {
		res := errorResult(CodeFetchError, fmt.Sprintf("failed to read response: %v", err))
		res.Error.Status = resp.StatusCode
		res.Status = resp.StatusCode
		c.logFailure(table, req.Method, res.Error)
		return res
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res := &Result{Error: parseError(resp.StatusCode, body), Status: resp.StatusCode}
		c.logFailure(table, req.Method, res.Error)
		return res
	}

	res := &Result{Status: resp.StatusCode}
	if len(body) > 0 {
		if !json.Valid(body) {
			res.Error = &Error{Code: CodeInvalidResponse, Message: "response body is not valid JSON", Status: resp.StatusCode}
			c.logFailure(table, req.Method, res.Error)
			return res
		}
		res.Data = json.RawMessage(body)
	}
	if wantCount {
		res.Count = parseContentRange(resp.Header.Get("Content-Range"))
	}
	return res
}

func parseError(status int, body []byte) *Error {
	e := &Error{Status: status}
	if json.Valid(body) && gjson.ParseBytes(body).IsObject() {
		parsed := gjson.ParseBytes(body)
		e.Code = parsed.Get("code").String()
		e.Message = firstNonEmpty(
			parsed.Get("message").String(),
			parsed.Get("msg").String(),
			parsed.Get("error_description").String(),
			parsed.Get("error").String(),
		)
		e.Details = parsed.Get("details").String()
		e.Hint = parsed.Get("hint").String()
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// parseContentRange extracts the total from "<range>/<total>"
func parseContentRange(header string) *int64 {
	idx := strings.LastIndex(header, "/")
	if idx < 0 {
		return nil
	}
	total, err := strconv.ParseInt(strings.TrimSpace(header[idx+1:]), 10, 64)
	if err != nil {
		return nil
	}
	return &total
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Client) observe(table, method string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(table, method, status, time.Since(start))
	}
}

func (c *Client) logFailure(table, method string, e *Error) {
	if c.logger == nil {
		return
	}
	log := c.logger.WithFields(map[string]interface{}{
		"table":  table,
		"method": method,
		"status": e.Status,
		"code":   e.Code,
	})
	if e.IsSchemaError() {
		log.Warn(fmt.Sprintf("schema mismatch on %s: %s", table, e.Message))
		return
	}
	log.Error(fmt.Sprintf("data request failed: %s", e.Message))
}
