package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"rally/api"
)

// fakeFetcher scripts one response per route and records every call.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string][]api.Response
	calls     []api.Request
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{responses: make(map[string][]api.Response)}
}

func (f *fakeFetcher) queue(route string, res api.Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[route] = append(f.responses[route], res)
}

func (f *fakeFetcher) Do(_ context.Context, req api.Request) (api.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)

	queued := f.responses[req.Route]
	if len(queued) == 0 {
		return api.Response{}, fmt.Errorf("unexpected call to %s", req.Route)
	}
	res := queued[0]
	f.responses[req.Route] = queued[1:]
	return res, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) lastCall() api.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func okJSON(t *testing.T, v any) api.Response {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return api.Response{OK: true, Status: 200, Data: data}
}

func rejected(msg string) api.Response {
	return api.Response{OK: false, Status: 401, Message: msg}
}

func tokenFixture(now time.Time) map[string]any {
	return map[string]any{
		"accessToken":           "new-access",
		"accessTokenExpiresAt":  now.Add(time.Hour).Format(time.RFC3339),
		"refreshToken":          "new-refresh",
		"refreshTokenExpiresAt": now.Add(7 * 24 * time.Hour).Format(time.RFC3339),
	}
}

func userFixture() map[string]any {
	return map[string]any{
		"userId":      "user1",
		"displayName": "Test User",
		"email":       "user@example.com",
	}
}

func TestGateway_Issue(t *testing.T) {
	now := time.Now().UTC()
	fetch := newFakeFetcher()
	fetch.queue(api.RouteLogin, okJSON(t, tokenFixture(now)))

	gw := NewGateway(fetch)
	pair, err := gw.Issue(context.Background(), Credentials{Email: "a@b.com", Password: "x"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if pair.Access != "new-access" || pair.Refresh != "new-refresh" {
		t.Fatalf("unexpected pair: %+v", pair)
	}
	if !pair.AccessExpiresAt.After(now) {
		t.Fatalf("expected future access expiry")
	}
	if fetch.callCount() != 1 {
		t.Fatalf("expected exactly one round trip, got %d", fetch.callCount())
	}
}

func TestGateway_Issue_RejectedCarriesServerMessage(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.queue(api.RouteLogin, rejected("Invalid credentials"))

	gw := NewGateway(fetch)
	_, err := gw.Issue(context.Background(), Credentials{Email: "wrong@example.com", Password: "wrong"})
	if err == nil {
		t.Fatalf("expected error")
	}

	var re *api.RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %T", err)
	}
	if re.Message != "Invalid credentials" {
		t.Fatalf("expected server message, got %q", re.Message)
	}
	if err.Error() != "Invalid credentials" {
		t.Fatalf("error text should be the server message, got %q", err.Error())
	}
}

func TestGateway_Renew(t *testing.T) {
	now := time.Now().UTC()
	fetch := newFakeFetcher()
	fetch.queue(api.RouteRefresh, okJSON(t, tokenFixture(now)))

	gw := NewGateway(fetch)
	pair, err := gw.Renew(context.Background(), "old-refresh")
	if err != nil {
		t.Fatalf("Renew: %v", err)
	}
	if pair.Access != "new-access" {
		t.Fatalf("unexpected pair: %+v", pair)
	}

	// The refresh token travels in the body.
	var body refreshRequest
	raw, err := json.Marshal(fetch.lastCall().Body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body.RefreshToken != "old-refresh" {
		t.Fatalf("expected refresh token in body, got %q", body.RefreshToken)
	}
}

func TestGateway_CurrentUser(t *testing.T) {
	fetch := newFakeFetcher()
	fetch.queue(api.RouteMe, okJSON(t, userFixture()))

	gw := NewGateway(fetch)
	user, err := gw.CurrentUser(context.Background(), "the-access-token", "")
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.UserID != "user1" || user.Name != "Test User" || user.Email != "user@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	got := fetch.lastCall().Header.Get("Authorization")
	if got != "Bearer the-access-token" {
		t.Fatalf("expected bearer header, got %q", got)
	}
}

func TestGateway_CurrentUser_EmailDefaults(t *testing.T) {
	fixture := map[string]any{"userId": "user1", "displayName": "Test User"}

	fetch := newFakeFetcher()
	fetch.queue(api.RouteMe, okJSON(t, fixture))
	gw := NewGateway(fetch)

	user, err := gw.CurrentUser(context.Background(), "tok", "")
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.Email != "" {
		t.Fatalf("missing email should default to empty, got %q", user.Email)
	}

	fetch.queue(api.RouteMe, okJSON(t, fixture))
	user, err = gw.CurrentUser(context.Background(), "tok", "login@example.com")
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user.Email != "login@example.com" {
		t.Fatalf("expected fallback email, got %q", user.Email)
	}
}
