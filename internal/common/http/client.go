// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"canchapp/internal/common/errors"
	"canchapp/internal/common/logger"
	"canchapp/internal/common/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// API is the request surface the domain services depend on.
type API interface {
	Get(ctx context.Context, path string, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
	Put(ctx context.Context, path string, body, out interface{}) error
	Delete(ctx context.Context, path string, out interface{}) error
	URL(path string) string
}

// Config holds the connection settings for the backend.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Recorder receives per-request measurements in addition to the prometheus
// collectors. *observability.Observability satisfies it.
type Recorder interface {
	RecordRequest(ctx context.Context, method, route string, status int, d time.Duration)
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

type Option func(*Client)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRecorder attaches otel instrumentation.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// Client issues credentialed JSON requests against the backend. Cookies set
// by the backend are kept in a jar and sent back on every request.
type Client struct {
	base       string
	baseURL    *url.URL
	userAgent  string
	httpClient *http.Client
	jar        *sessionJar
	logger     logger.Logger
	recorder   Recorder
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		base:      base,
		baseURL:   u,
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		jar: jar,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.OrNop(c.logger)

	return c, nil
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, jsonBody(body), out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, jsonBody(body), out)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// URL returns the absolute address of path, for links handed to the user.
func (c *Client) URL(path string) string {
	return c.base + path
}

// Cookies returns the session cookies currently held for the backend.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies seeds the jar, typically from a persisted session.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.baseURL, cookies)
}

// ClearCookies drops every cookie held for the backend.
func (c *Client) ClearCookies() {
	c.jar.reset()
}

// requestBody defers marshalling so encode failures surface as validation
// errors before any network traffic.
type requestBody struct {
	value interface{}
}

func jsonBody(v interface{}) *requestBody {
	if v == nil {
		return &requestBody{value: struct{}{}}
	}
	return &requestBody{value: v}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body *requestBody, out interface{}) error {
	route := RouteTemplate(path)
	start := time.Now()

	ctx, span := c.startSpan(ctx, method, route)
	defer span.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body.value)
		if err != nil {
			span.SetStatus(codes.Error, "encode")
			return errors.NewValidationError("", "the request could not be prepared").WithMetadata("cause", err.Error())
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path), reader)
	if err != nil {
		span.SetStatus(codes.Error, "build request")
		return errors.NewBackendUnreachableError(method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(ctx, method, route, 0, start)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.logger.Warn("API request failed", map[string]interface{}{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return errors.NewBackendUnreachableError(method, path, err)
	}
	defer resp.Body.Close()

	c.observe(ctx, method, route, resp.StatusCode, start)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, "read body")
		return errors.NewBackendUnreachableError(method, path, err)
	}

	c.logger.Debug("API request completed", map[string]interface{}{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := failureMessage(method, raw)
		span.SetStatus(codes.Error, msg)
		return errors.NewRequestFailedError(method, path, resp.StatusCode, msg)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		span.SetStatus(codes.Error, "decode")
		return errors.NewResponseDecodeError(method, path, err)
	}
	return nil
}

// failureMessage extracts the backend's {"error": "..."} text. An unparseable
// body yields the unknown-error message; a missing field yields the per-verb
// fallback.
func failureMessage(method string, raw []byte) string {
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err != nil {
		return errors.MsgUnknownError
	}
	if strings.TrimSpace(er.Error) == "" {
		return fmt.Sprintf("error performing %s", method)
	}
	return er.Error
}

func (c *Client) startSpan(ctx context.Context, method, route string) (context.Context, trace.Span) {
	name := fmt.Sprintf("canchapp.api %s %s", method, route)
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", method),
		attribute.String("url.template", route),
	}
	if c.recorder == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return c.recorder.StartSpan(ctx, name, attrs...)
}

func (c *Client) observe(ctx context.Context, method, route string, status int, start time.Time) {
	d := time.Since(start)
	metrics.ObserveAPIRequest(method, route, status, d)
	if c.recorder != nil {
		c.recorder.RecordRequest(ctx, method, route, status, d)
	}
}

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// RouteTemplate strips the query and replaces numeric path segments with
// {id}, keeping metric and span names low-cardinality.
func RouteTemplate(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	for numericSegment.MatchString(path) {
		path = numericSegment.ReplaceAllString(path, "/{id}$1")
	}
	return path
}

// WithQuery appends q to path when it has any values.
func WithQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
