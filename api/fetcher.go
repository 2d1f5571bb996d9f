package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Routes consumed by the SDK. A route identifier is "METHOD /path"
// relative to the API base URL.
const (
	RouteLogin   = "POST /v3/auth/login"
	RouteRefresh = "POST /v3/auth/refresh"
	RouteMe      = "GET /v1/users/me"
	RouteMatches = "GET /v1/matches"
)

// Request describes one API call.
type Request struct {
	// Route is the route identifier, e.g. api.RouteLogin.
	Route string

	// Body is JSON-encoded as the request body when non-nil.
	Body any

	// Query holds URL query parameters (pagination etc.).
	Query url.Values

	// Header holds extra request headers (Authorization etc.).
	Header http.Header
}

// Response is the normalized outcome of an API call that reached the
// server. OK=false carries the server-supplied failure message; the
// transport itself failing is reported as an error from Do instead.
type Response struct {
	OK      bool
	Status  int
	Data    json.RawMessage
	Message string
	Header  http.Header
}

// Fetcher performs API calls. The production implementation is Client;
// tests substitute a FetcherFunc.
type Fetcher interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req Request) (Response, error)

// Do implements Fetcher.
func (f FetcherFunc) Do(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Decode unmarshals the success payload into dst.
func (r Response) Decode(dst any) error {
	return json.Unmarshal(r.Data, dst)
}
