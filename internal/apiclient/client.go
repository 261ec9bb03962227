// Package apiclient is the single outbound path to the scholarship API.
//
// Every call the dashboard makes (search, save, saved list, delete) funnels
// through Client.Request, which:
//   - injects "Authorization: Bearer <token>" when the session carries a token
//   - sends a JSON Content-Type unless the caller explicitly sets another one
//   - turns transport failures and non-2xx statuses into one error type,
//     *RequestError, with the best human-readable message it can find
//   - returns the body as structured JSON or raw text based on Content-Type
//
// BEARER INJECTION WITH oauth2:
// golang.org/x/oauth2 ships an http.RoundTripper (oauth2.Transport) that adds
// the Authorization header from a TokenSource to every outgoing request.
// A StaticTokenSource wraps the session's opaque token: no refresh, no
// expiry handling, which is exactly what a pre-issued bearer token needs.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/scholarship-globe/internal/session"
)

const defaultTimeout = 30 * time.Second

// ErrNotJSON is returned by Body.Decode when the server answered with a
// non-JSON content type.
var ErrNotJSON = errors.New("apiclient: response is not JSON")

// RequestError is the uniform failure of every request.
//
// StatusCode is 0 when the request never got a response (DNS, refused
// connection, timeout, cancelled context).
type RequestError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Options configure a single request. The zero value is a GET with no body.
type Options struct {
	Method string
	Header http.Header
	Body   io.Reader
}

// Body is a successful response body.
type Body struct {
	Raw        []byte
	Structured bool // Content-Type declared application/json
}

// Text returns the raw body as a string.
func (b Body) Text() string {
	return string(b.Raw)
}

// Decode unmarshals a structured body into v.
func (b Body) Decode(v any) error {
	if !b.Structured {
		return ErrNotJSON
	}
	if err := json.Unmarshal(b.Raw, v); err != nil {
		return fmt.Errorf("apiclient: decoding response: %w", err)
	}
	return nil
}

// Client talks to the scholarship API on behalf of one session.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*clientOptions)

type clientOptions struct {
	transport http.RoundTripper
	timeout   time.Duration
}

// WithTransport replaces the base transport (default http.DefaultTransport).
// The bearer-injecting transport still wraps it.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.transport = rt }
}

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// New creates a Client for baseURL (e.g. "http://127.0.0.1:5000") acting as sess.
func New(baseURL string, sess session.Session, logger *slog.Logger, opts ...Option) *Client {
	o := clientOptions{
		transport: http.DefaultTransport,
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.transport
	if sess.HasToken() {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: sess.Token,
				TokenType:   "Bearer",
			}),
			Base: o.transport,
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: transport, Timeout: o.timeout},
		logger:  logger,
	}
}

// Request issues one call to path and applies the error/parsing contract
// described in the package doc.
func (c *Client) Request(ctx context.Context, path string, opts Options) (Body, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, opts.Body)
	if err != nil {
		return Body{}, &RequestError{Message: err.Error(), Err: err}
	}

	// Defaults first, caller headers on top: a caller only replaces the
	// Content-Type by setting it explicitly.
	req.Header.Set("Content-Type", "application/json")
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return Body{}, &RequestError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(resp.StatusCode, raw)
		c.logger.Info("api request rejected",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", msg),
		)
		return Body{}, &RequestError{StatusCode: resp.StatusCode, Message: msg}
	}

	if readErr != nil {
		return Body{}, &RequestError{
			StatusCode: resp.StatusCode,
			Message:    readErr.Error(),
			Err:        readErr,
		}
	}

	c.logger.Debug("api request completed",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	return Body{
		Raw:        raw,
		Structured: strings.Contains(resp.Header.Get("Content-Type"), "application/json"),
	}, nil
}

// Get issues a GET with no body.
func (c *Client) Get(ctx context.Context, path string) (Body, error) {
	return c.Request(ctx, path, Options{Method: http.MethodGet})
}

// Post JSON-encodes v and POSTs it.
func (c *Client) Post(ctx context.Context, path string, v any) (Body, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Body{}, &RequestError{
			Message: fmt.Sprintf("encoding request body: %v", err),
			Err:     err,
		}
	}
	return c.Request(ctx, path, Options{
		Method: http.MethodPost,
		Body:   bytes.NewReader(payload),
	})
}

// Delete issues a DELETE with no body.
func (c *Client) Delete(ctx context.Context, path string) (Body, error) {
	return c.Request(ctx, path, Options{Method: http.MethodDelete})
}

// errorMessage picks the human-readable message out of an error body.
//
// Order: "detail", then "message", then "<code> <status text>". A field that
// is present but not a string (e.g. a list of validation errors) is used as
// its JSON text.
func errorMessage(code int, raw []byte) string {
	fallback := fmt.Sprintf("%d %s", code, http.StatusText(code))

	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return fallback
	}

	for _, field := range []json.RawMessage{body.Detail, body.Message} {
		if msg := fieldText(field); msg != "" {
			return msg
		}
	}
	return fallback
}

func fieldText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("false")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}
