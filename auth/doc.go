// Package auth implements rally's client-side session lifecycle.
//
// It authenticates against the platform's identity endpoints, holds the
// resulting token pair and user profile in memory, keeps the access
// token fresh by scheduling a renewal before expiry, and notifies an
// optional observer of every token transition.
//
// One Manager owns one logical session. State starts undetermined,
// resolves exactly once via Hydrate, and thereafter moves between
// anonymous and authenticated through Login, Logout, Refresh, and the
// internal renewal timer. Tokens are opaque server-issued strings;
// validity is judged purely by the expiry instants the server reported.
//
// Persistence across process restarts and token signature verification
// are intentionally out of scope.
package auth
