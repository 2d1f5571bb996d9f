package auth

import "context"

// TokenSource supplies the externally owned initial token pair for
// hydration. A nil TokenSource means no initial tokens; an
// implementation may block (a pending asynchronous value) and may
// resolve to nil (known absent). The manager reads it exactly once.
type TokenSource interface {
	Tokens(ctx context.Context) (*TokenPair, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (*TokenPair, error)

// Tokens implements TokenSource.
func (f TokenSourceFunc) Tokens(ctx context.Context) (*TokenPair, error) {
	return f(ctx)
}

// StaticTokens returns a TokenSource resolving immediately to p.
func StaticTokens(p TokenPair) TokenSource {
	return TokenSourceFunc(func(context.Context) (*TokenPair, error) {
		cp := p
		return &cp, nil
	})
}
