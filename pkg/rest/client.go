// Package rest wraps outbound calls to the inventory backend: one Call that
// attaches the bearer credential, speaks JSON both ways, and normalizes
// every failure into an *APIError.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"asset-console/pkg/auth"
	"asset-console/pkg/notify"
)

// APIError is the one error shape callers see. Status 0 means the request
// never produced an HTTP response (transport failure). Fields carries
// field-level validation detail when a 4xx response includes one, so forms
// can render inline errors.
type APIError struct {
	Message string
	Status  int
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

// AsAPIError unwraps err to the normalized shape, if present.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Client issues backend requests. It does not retry and sets no timeout of
// its own; callers own the context.
type Client struct {
	base   string
	http   *http.Client
	tokens auth.TokenSource
	notes  *notify.Channel
	log    *zap.SugaredLogger
}

func NewClient(base string, hc *http.Client, tokens auth.TokenSource, notes *notify.Channel, log *zap.SugaredLogger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   hc,
		tokens: tokens,
		notes:  notes,
		log:    log,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.base }

// Call performs one JSON round trip. body is marshaled when non-nil; the
// response is decoded into out when out is non-nil and the body is neither
// empty nor a JSON null. Every failure also publishes a coarse notification
// as the baseline UX fallback; callers wanting finer messages publish over
// it afterward.
func (c *Client) Call(ctx context.Context, method, path string, body, out interface{}) error {
	return c.call(ctx, method, path, body, out, true)
}

// CallQuiet is Call without the failure notification. Routine background
// refreshes (poll ticks) use it so a flaky network does not spam the
// message slot every interval.
func (c *Client) CallQuiet(ctx context.Context, method, path string, body, out interface{}) error {
	return c.call(ctx, method, path, body, out, false)
}

func (c *Client) call(ctx context.Context, method, path string, body, out interface{}, loud bool) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := &APIError{Message: err.Error()}
		c.fail(method, path, apiErr, loud)
		return apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := &APIError{Message: fmt.Sprintf("read response: %v", err), Status: resp.StatusCode}
		c.fail(method, path, apiErr, loud)
		return apiErr
	}

	if resp.StatusCode >= 300 {
		apiErr := normalize(resp.StatusCode, raw)
		c.fail(method, path, apiErr, loud)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		apiErr := &APIError{Message: fmt.Sprintf("decode response: %v", err), Status: resp.StatusCode}
		c.fail(method, path, apiErr, loud)
		return apiErr
	}
	return nil
}

func (c *Client) fail(method, path string, apiErr *APIError, loud bool) {
	c.log.Warnf("call failed method=%s path=%s status=%d err=%s", method, path, apiErr.Status, apiErr.Message)
	if loud && c.notes != nil {
		c.notes.Publish("request failed: " + apiErr.Message)
	}
}

// normalize extracts the most specific message the backend offered. Bodies
// look like {"detail": "..."} or {"detail": {"field": "problem"}}, with
// "error"/"message" as fallbacks.
func normalize(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			apiErr.Message = msg
		}
		return apiErr
	}
	switch {
	case len(envelope.Detail) > 0:
		var text string
		if json.Unmarshal(envelope.Detail, &text) == nil {
			apiErr.Message = text
			break
		}
		var fields map[string]string
		if json.Unmarshal(envelope.Detail, &fields) == nil && status >= 400 && status < 500 {
			apiErr.Fields = fields
			apiErr.Message = "validation failed"
		}
	case envelope.Error != "":
		apiErr.Message = envelope.Error
	case envelope.Message != "":
		apiErr.Message = envelope.Message
	}
	return apiErr
}
