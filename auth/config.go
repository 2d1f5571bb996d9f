package auth

import (
	"os"
	"strconv"
	"time"
)

// Config defines the session-lifecycle policies that have historically
// diverged between clients. Each is an explicit flag with a default
// rather than a silent choice.
type Config struct {
	// RefreshTimeoutCeiling clamps the scheduled renewal delay so a
	// token with an implausibly distant expiry still gets a liveness
	// re-check. Zero disables clamping.
	RefreshTimeoutCeiling time.Duration

	// RenewOnHydrate controls what hydration does with a pair whose
	// access token is expired but whose refresh token is still live:
	// false (default) yields an anonymous session and leaves renewal to
	// an explicit login; true attempts one renewal before giving up.
	RenewOnHydrate bool

	// LoginEmailFallback controls the default for a profile with no
	// email: false (default) uses the empty string; true substitutes
	// the email submitted at login, where one is available.
	LoginEmailFallback bool
}

// DefaultConfig returns the default session policies.
func DefaultConfig() Config {
	return Config{
		RefreshTimeoutCeiling: 24 * time.Hour,
		RenewOnHydrate:        false,
		LoginEmailFallback:    false,
	}
}

// LoadConfigFromEnv loads Config from environment variables on top of
// the defaults.
//
// Optional:
//   - RALLY_AUTH_REFRESH_TIMEOUT_CEILING (Go duration; "0" disables clamping)
//   - RALLY_AUTH_RENEW_ON_HYDRATE (bool)
//   - RALLY_AUTH_LOGIN_EMAIL_FALLBACK (bool)
//
// Returns ErrConfig if a set variable does not parse.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("RALLY_AUTH_REFRESH_TIMEOUT_CEILING"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTimeoutCeiling = d
	}

	if v := os.Getenv("RALLY_AUTH_RENEW_ON_HYDRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.RenewOnHydrate = b
	}

	if v := os.Getenv("RALLY_AUTH_LOGIN_EMAIL_FALLBACK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.LoginEmailFallback = b
	}

	return cfg, nil
}
