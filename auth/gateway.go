package auth

import (
	"context"
	"net/http"
	"time"

	"rally/api"
)

// Gateway wraps the transport fetcher with the three identity
// operations the session manager needs. Each call is exactly one
// network round trip; retry policy, if any, belongs to the caller.
type Gateway struct {
	fetch api.Fetcher
}

// NewGateway constructs a Gateway over the given fetcher.
func NewGateway(fetch api.Fetcher) *Gateway {
	return &Gateway{fetch: fetch}
}

// Wire shapes. Expiry fields are absolute RFC 3339 timestamps.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

type userResponse struct {
	UserID      string  `json:"userId"`
	DisplayName string  `json:"displayName"`
	Email       *string `json:"email"`
}

func toTokenPair(t tokenResponse) TokenPair {
	return TokenPair{
		Access:           t.AccessToken,
		AccessExpiresAt:  t.AccessTokenExpiresAt,
		Refresh:          t.RefreshToken,
		RefreshExpiresAt: t.RefreshTokenExpiresAt,
	}
}

// toUser normalizes the raw profile. A missing email defaults to
// fallback, which is "" except under Config.LoginEmailFallback.
func toUser(u userResponse, fallback string) User {
	email := fallback
	if u.Email != nil {
		email = *u.Email
	}
	return User{
		UserID: u.UserID,
		Name:   u.DisplayName,
		Email:  email,
	}
}

// Issue submits credentials to the login route and returns the issued
// token pair. A server rejection surfaces as *api.RemoteError carrying the
// server message; state is the caller's concern.
func (g *Gateway) Issue(ctx context.Context, creds Credentials) (TokenPair, error) {
	res, err := g.fetch.Do(ctx, api.Request{
		Route: api.RouteLogin,
		Body:  loginRequest{Email: creds.Email, Password: creds.Password},
	})
	if err != nil {
		return TokenPair{}, err
	}
	if !res.OK {
		return TokenPair{}, &api.RemoteError{Route: api.RouteLogin, Status: res.Status, Message: res.Message}
	}

	var t tokenResponse
	if err := res.Decode(&t); err != nil {
		return TokenPair{}, err
	}
	return toTokenPair(t), nil
}

// Renew exchanges the refresh token for a new pair.
func (g *Gateway) Renew(ctx context.Context, refresh string) (TokenPair, error) {
	res, err := g.fetch.Do(ctx, api.Request{
		Route: api.RouteRefresh,
		Body:  refreshRequest{RefreshToken: refresh},
	})
	if err != nil {
		return TokenPair{}, err
	}
	if !res.OK {
		return TokenPair{}, &api.RemoteError{Route: api.RouteRefresh, Status: res.Status, Message: res.Message}
	}

	var t tokenResponse
	if err := res.Decode(&t); err != nil {
		return TokenPair{}, err
	}
	return toTokenPair(t), nil
}

// CurrentUser looks up the profile behind the access token. emailFallback
// seeds the missing-email default (see toUser).
func (g *Gateway) CurrentUser(ctx context.Context, access string, emailFallback string) (User, error) {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+access)

	res, err := g.fetch.Do(ctx, api.Request{
		Route:  api.RouteMe,
		Header: h,
	})
	if err != nil {
		return User{}, err
	}
	if !res.OK {
		return User{}, &api.RemoteError{Route: api.RouteMe, Status: res.Status, Message: res.Message}
	}

	var u userResponse
	if err := res.Decode(&u); err != nil {
		return User{}, err
	}
	return toUser(u, emailFallback), nil
}
