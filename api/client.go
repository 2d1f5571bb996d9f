package api

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

	"rally/ids"
	"rally/metrics"
)

const (
	defaultTimeout = 30 * time.Second

	// maxBodyBytes bounds response bodies; match listings paginate, so
	// no legitimate payload approaches this.
	maxBodyBytes = 4 << 20
)

// ErrBadRoute is returned for a route identifier that is not
// "METHOD /path".
var ErrBadRoute = errors.New("malformed route identifier")

// Client is the production Fetcher: JSON over HTTP against a base URL.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *slog.Logger
	metrics *metrics.Client
}

// ClientOption configures optional Client dependencies.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if c == nil || h == nil {
			return
		}
		c.httpc = h
	}
}

// WithLogger sets the request logger.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		if c == nil || log == nil {
			return
		}
		c.log = log
	}
}

// WithMetrics enables per-request metrics.
func WithMetrics(m *metrics.Client) ClientOption {
	return func(c *Client) {
		if c == nil || m == nil {
			return
		}
		c.metrics = m
	}
}

// NewClient constructs a Client for the given API base URL
// (e.g. "https://api.example.com").
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api: empty base URL")
	}

	c := &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: defaultTimeout},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// failureBody is the wire shape of error responses.
type failureBody struct {
	Message string `json:"message"`
}

// Do implements Fetcher. The returned error covers transport-level
// failures only; an HTTP error status yields OK=false with the server
// message and a nil error.
func (c *Client) Do(ctx context.Context, req Request) (Response, error) {
	method, path, err := splitRoute(req.Route)
	if err != nil {
		return Response{}, err
	}

	var body io.Reader
	if req.Body != nil {
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return Response{}, fmt.Errorf("api: encode %s: %w", req.Route, err)
		}
		body = bytes.NewReader(buf)
	}

	u := c.baseURL + path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	hreq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return Response{}, fmt.Errorf("api: build %s: %w", req.Route, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		hreq.Header.Set("Content-Type", "application/json")
	}
	hreq.Header.Set("Accept", "application/json")

	reqID := ids.NewRequestID()
	hreq.Header.Set("X-Request-Id", reqID)

	start := time.Now()
	hres, err := c.httpc.Do(hreq)
	if err != nil {
		c.observe(req.Route, "transport_error", start)
		return Response{}, fmt.Errorf("api: %s: %w", req.Route, err)
	}
	defer func() { _ = hres.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(hres.Body, maxBodyBytes))
	if err != nil {
		c.observe(req.Route, "read_error", start)
		return Response{}, fmt.Errorf("api: read %s: %w", req.Route, err)
	}

	res := Response{
		OK:     hres.StatusCode >= 200 && hres.StatusCode < 300,
		Status: hres.StatusCode,
		Header: hres.Header,
	}
	if res.OK {
		res.Data = data
	} else {
		var fb failureBody
		// A non-JSON error body degrades to the HTTP status text.
		if err := json.Unmarshal(data, &fb); err == nil && fb.Message != "" {
			res.Message = fb.Message
		} else {
			res.Message = http.StatusText(hres.StatusCode)
		}
	}

	c.observe(req.Route, fmt.Sprintf("%d", hres.StatusCode), start)
	c.log.DebugContext(ctx, "api request",
		"route", req.Route,
		"status", hres.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", reqID,
	)

	return res, nil
}

func (c *Client) observe(route, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRequest(route, status, time.Since(start))
}

func splitRoute(route string) (method, path string, err error) {
	method, path, ok := strings.Cut(strings.TrimSpace(route), " ")
	if !ok || method == "" || !strings.HasPrefix(path, "/") {
		return "", "", fmt.Errorf("%w: %q", ErrBadRoute, route)
	}
	return method, path, nil
}
