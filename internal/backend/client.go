// Package backend is the HTTP client for the remote pharmacy API. Every
// business operation goes through Client.Do.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pharmalink/pharmacy-pos/pkg/config"
	"github.com/pharmalink/pharmacy-pos/pkg/logger"
	"github.com/pharmalink/pharmacy-pos/pkg/metrics"
	"github.com/shopspring/decimal"
)

const maxErrorBody = 1 << 20

// Requester is the surface the domain repositories depend on.
type Requester interface {
	Do(ctx context.Context, method, path, token string, body, out any, opts ...RequestOption) error
}

// RequestOption customises a single outgoing request.
type RequestOption func(*http.Request)

// WithIdempotencyKey sets the Idempotency-Key header so a retried write is applied once.
func WithIdempotencyKey(key string) RequestOption {
	return func(r *http.Request) {
		if key = strings.TrimSpace(key); key != "" {
			r.Header.Set("Idempotency-Key", key)
		}
	}
}

// WithQuery appends query parameters to the request URL.
func WithQuery(values url.Values) RequestOption {
	return func(r *http.Request) {
		if len(values) == 0 {
			return
		}
		q := r.URL.Query()
		for key, vals := range values {
			for _, v := range vals {
				q.Add(key, v)
			}
		}
		r.URL.RawQuery = q.Encode()
	}
}

// Client talks JSON to the pharmacy backend at a fixed base URL.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	metrics    *metrics.BackendMetrics
	logg       *logger.Logger

	onUnauthorized func(ctx context.Context, token string)
}

// New builds a client from validated backend config. metrics and logg may be nil.
func New(cfg config.BackendConfig, m *metrics.BackendMetrics, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("backend base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   base,
		userAgent: cfg.UserAgent,
		metrics:   m,
		logg:      logg,
	}, nil
}

// OnUnauthorized registers fn to run when the backend answers 401 to a request
// that carried a bearer token. Call it before the client is shared.
func (c *Client) OnUnauthorized(fn func(ctx context.Context, token string)) {
	c.onUnauthorized = fn
}

// Do sends body (if non-nil) as JSON to path and decodes a 2xx JSON reply into
// out (if non-nil). A non-empty token is sent as a bearer credential. Non-2xx
// replies return *Error carrying the backend's message.
func (c *Client) Do(ctx context.Context, method, path, token string, body, out any, opts ...RequestOption) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return fmt.Errorf("creating backend request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	endpoint := endpointLabel(path)
	if err != nil {
		c.metrics.Observe(endpoint, method, 0, time.Since(start))
		c.debug(ctx, endpoint, method, 0)
		return &TransportError{Method: method, Path: endpoint, Err: err}
	}
	defer resp.Body.Close()
	c.metrics.Observe(endpoint, method, resp.StatusCode, time.Since(start))
	c.debug(ctx, endpoint, method, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusUnauthorized && token != "" && c.onUnauthorized != nil {
			c.onUnauthorized(ctx, token)
		}
		return &Error{Status: resp.StatusCode, Message: messageFrom(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding %s %s response: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL.String() + path
}

func (c *Client) debug(ctx context.Context, endpoint, method string, status int) {
	if c.logg == nil {
		return
	}
	ctx = c.logg.WithFields(ctx, map[string]any{
		"backend_endpoint": endpoint,
		"backend_method":   method,
		"backend_status":   status,
	})
	c.logg.Debug(ctx, "backend.call")
}

// identifiedCollections are the backend collections whose next path segment
// is a record id.
var identifiedCollections = map[string]bool{
	"orders":      true,
	"medications": true,
	"sales":       true,
	"users":       true,
}

// endpointLabel strips the query string and collapses identifier segments so
// metric labels stay bounded. A segment is an identifier when it follows a
// known collection or contains a digit.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if (i > 0 && identifiedCollections[segments[i-1]]) || strings.ContainsAny(seg, "0123456789") {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}

// Number renders a decimal as a bare JSON number for request bodies.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
