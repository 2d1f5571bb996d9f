package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: rally <command>

commands:
  login    authenticate and print the issued token pair as JSON
  whoami   authenticate and print the user profile
  export   download all matches and write matches.csv

configuration: RALLY_API_URL, RALLY_EMAIL, RALLY_PASSWORD (env), plus
an optional YAML file at RALLY_CONFIG (default ~/.config/rally/config.yaml).
`

// Run is the CLI entrypoint used by cmd/rally.
// It returns an error instead of calling os.Exit to keep defers effective.
func Run(args []string) error {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return ErrConfig
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	log := NewLogger(cfg.LogLevel, cfg.LogFormat)

	a, err := New(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch args[0] {
	case "login":
		return a.Login(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "export":
		return a.Export(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("%w: unknown command %q", ErrConfig, args[0])
	}
}
