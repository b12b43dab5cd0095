package liquid

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/osteele/liquid"
)

// Security limits for template rendering
const (
	DefaultRenderTimeout   = 5 * time.Second
	DefaultMaxTemplateSize = 100 * 1024 // 100KB
)

// Renderer wraps the Liquid engine with a size limit, a render timeout and
// the filters email templates use
type Renderer struct {
	timeout time.Duration
	maxSize int
	engine  *liquid.Engine
}

// NewRenderer creates a renderer with default limits
func NewRenderer() *Renderer {
	return NewRendererWithOptions(DefaultRenderTimeout, DefaultMaxTemplateSize)
}

// NewRendererWithOptions creates a renderer with custom limits
func NewRendererWithOptions(timeout time.Duration, maxSize int) *Renderer {
	engine := liquid.NewEngine()
	engine.RegisterFilter("money", Money)
	engine.RegisterFilter("default_text", func(v interface{}, fallback string) string {
		if v == nil {
			return fallback
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
		return fallback
	})
	return &Renderer{
		timeout: timeout,
		maxSize: maxSize,
		engine:  engine,
	}
}

// Render renders content against data, giving up after the timeout or
// when ctx is done
func (r *Renderer) Render(ctx context.Context, content string, data map[string]interface{}) (string, error) {
	if len(content) > r.maxSize {
		return "", fmt.Errorf("template size (%d bytes) exceeds maximum allowed size (%d bytes)", len(content), r.maxSize)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resultChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				errorChan <- fmt.Errorf("panic during liquid rendering: %v", rec)
			}
		}()

		rendered, err := r.engine.ParseAndRenderString(content, data)
		if err != nil {
			errorChan <- fmt.Errorf("liquid rendering failed: %w", err)
			return
		}
		resultChan <- rendered
	}()

	select {
	case result := <-resultChan:
		return result, nil
	case err := <-errorChan:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("liquid rendering aborted: %w", ctx.Err())
	}
}

// Bindings converts a JSON-serialisable value to the map form templates
// see, so field names match the JSON tags
func Bindings(v interface{}) (map[string]interface{}, error) {
	if v == nil {
		return map[string]interface{}{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template data: %w", err)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template data: %w", err)
	}
	return out, nil
}

// Money formats a number as whole US dollars: 1234567.8 -> "$1,234,568".
// Non-numeric input renders as an empty string.
func Money(v interface{}) string {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return ""
		}
		f = parsed
	default:
		return ""
	}

	neg := f < 0
	digits := strconv.FormatFloat(math.Abs(math.Round(f)), 'f', 0, 64)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
