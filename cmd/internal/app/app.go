// Package app wires the rally CLI runtime: config, logging, the API
// client, and the session manager behind the login/whoami/export
// commands.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"rally/api"
	"rally/auth"
	"rally/match"
	"rally/metrics"
)

// App is the rally CLI runtime.
type App struct {
	cfg Config
	log Logger

	client  *api.Client
	session *auth.Manager
}

// New constructs a fully wired App from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	reg := prometheus.NewRegistry()

	client, err := api.NewClient(cfg.APIURL,
		api.WithLogger(log),
		api.WithMetrics(metrics.NewClient(reg)),
	)
	if err != nil {
		return nil, err
	}

	session := auth.NewManager(cfg.Auth, auth.NewGateway(client),
		auth.WithLogger(log),
		auth.WithSessionMetrics(metrics.NewSession(reg)),
		auth.WithErrorObserver(func(err error) {
			log.Warn("session renewal error", "err", err)
		}),
	)

	return &App{
		cfg:     cfg,
		log:     log,
		client:  client,
		session: session,
	}, nil
}

// Close releases the session manager.
func (a *App) Close() error {
	return a.session.Close()
}

// login authenticates with the configured credentials. The CLI has no
// stored tokens, so every command starts from an anonymous hydration.
func (a *App) login(ctx context.Context) (auth.Snapshot, error) {
	if a.cfg.Email == "" || a.cfg.Password == "" {
		return auth.Snapshot{}, fmt.Errorf("%w: RALLY_EMAIL and RALLY_PASSWORD are required", ErrConfig)
	}

	if err := a.session.Hydrate(ctx, nil); err != nil {
		return auth.Snapshot{}, err
	}
	if err := a.session.Login(ctx, auth.Credentials{Email: a.cfg.Email, Password: a.cfg.Password}); err != nil {
		return auth.Snapshot{}, err
	}
	return a.session.Snapshot(), nil
}

// Login performs a login and prints the issued token pair as JSON so
// callers can hand it to whatever owns persistence.
func (a *App) Login(ctx context.Context) error {
	snap, err := a.login(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap.Tokens)
}

// Whoami performs a login and prints the authenticated user profile.
func (a *App) Whoami(ctx context.Context) error {
	snap, err := a.login(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap.User)
}

// Export performs a login, downloads every match, and writes
// matches.csv into the configured export directory.
func (a *App) Export(ctx context.Context) error {
	snap, err := a.login(ctx)
	if err != nil {
		return err
	}

	matches, err := match.ListAll(ctx, a.client, snap.Tokens.Access)
	if err != nil {
		return err
	}

	path, err := match.ExportFile(a.cfg.ExportDir, "matches", matches)
	if err != nil {
		return err
	}

	a.log.Info("exported matches", "count", len(matches), "path", path)
	return nil
}
