package auth

import "errors"

var (
	// ErrNoSession is returned by Logout when no user is authenticated.
	ErrNoSession = errors.New("no active session")

	// ErrNoTokens is returned when a renewal or renewal-timeout
	// computation is attempted without a token pair.
	ErrNoTokens = errors.New("no tokens available")

	// ErrRefreshExpired is returned when a renewal is attempted with an
	// expired refresh token. The session is treated as lapsed; the
	// caller must log in again.
	ErrRefreshExpired = errors.New("refresh token expired")

	// ErrAlreadyHydrated is returned when Hydrate is called more than once.
	ErrAlreadyHydrated = errors.New("session already hydrated")

	// ErrClosed is returned for operations on a closed Manager.
	ErrClosed = errors.New("session manager closed")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
