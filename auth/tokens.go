package auth

import "time"

// TokenPair is the credential pair issued by the platform: a
// short-lived access token and a longer-lived refresh token, each with
// its absolute expiry instant as reported by the server.
//
// A TokenPair is immutable: login, renewal, and hydration always
// produce a new value, never a mutation in place.
type TokenPair struct {
	Access           string
	AccessExpiresAt  time.Time
	Refresh          string
	RefreshExpiresAt time.Time
}

// User is the profile of the authenticated user.
type User struct {
	UserID string
	Name   string
	Email  string
}

// Credentials is the identifier/secret pair submitted at login.
type Credentials struct {
	Email    string
	Password string
}

// AccessValid reports whether the pair's access token is still usable
// at now. A nil pair is never valid.
func AccessValid(p *TokenPair, now time.Time) bool {
	if p == nil {
		return false
	}
	return p.AccessExpiresAt.After(now)
}

// RefreshValid reports whether the pair's refresh token is still usable
// at now, independently of access validity: a pair with an expired
// access token and a live refresh token is refresh-valid.
func RefreshValid(p *TokenPair, now time.Time) bool {
	if p == nil {
		return false
	}
	return p.RefreshExpiresAt.After(now)
}

// RefreshTimeout computes how long to wait before renewing the pair's
// access token: the time remaining until AccessExpiresAt, clamped to
// ceiling when ceiling > 0 so an implausibly distant expiry still gets
// a liveness re-check. The result is non-positive for an already
// expired token; schedulers should then fire immediately.
//
// Returns ErrNoTokens for a nil pair.
func RefreshTimeout(p *TokenPair, now time.Time, ceiling time.Duration) (time.Duration, error) {
	if p == nil {
		return 0, ErrNoTokens
	}

	d := p.AccessExpiresAt.Sub(now)
	if ceiling > 0 && d > ceiling {
		d = ceiling
	}
	return d, nil
}

// equalPair reports whether two optional pairs carry the same tokens.
// Used to suppress observer notifications that net to no change.
func equalPair(a, b *TokenPair) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Access == b.Access &&
		a.Refresh == b.Refresh &&
		a.AccessExpiresAt.Equal(b.AccessExpiresAt) &&
		a.RefreshExpiresAt.Equal(b.RefreshExpiresAt)
}
