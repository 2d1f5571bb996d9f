package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"rally/auth"
)

// Config contains the CLI runtime configuration. Values come from an
// optional YAML config file with environment variables taking
// precedence; credentials are environment-only so they never end up in
// a file.
type Config struct {
	APIURL    string
	LogLevel  string
	LogFormat string
	ExportDir string

	Email    string
	Password string

	Auth auth.Config
}

// fileConfig is the YAML shape of the optional config file.
type fileConfig struct {
	APIURL    string `yaml:"api_url"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	ExportDir string `yaml:"export_dir"`
}

// ErrConfig is returned for invalid CLI configuration.
var ErrConfig = errors.New("invalid config")

// defaultConfigPath is ~/.config/rally/config.yaml, or "" when no home
// directory is resolvable.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rally", "config.yaml")
}

// LoadConfig assembles the runtime configuration.
//
// Sources, lowest to highest precedence: built-in defaults, the YAML
// file at RALLY_CONFIG (default ~/.config/rally/config.yaml, silently
// skipped when absent), then RALLY_* environment variables.
func LoadConfig() (Config, error) {
	cfg := Config{
		LogLevel:  "info",
		LogFormat: "pretty",
		ExportDir: ".",
	}

	path := EnvString("RALLY_CONFIG", defaultConfigPath())
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			var fc fileConfig
			if err := yaml.Unmarshal(raw, &fc); err != nil {
				return Config{}, errors.Join(ErrConfig, err)
			}
			if fc.APIURL != "" {
				cfg.APIURL = fc.APIURL
			}
			if fc.LogLevel != "" {
				cfg.LogLevel = fc.LogLevel
			}
			if fc.LogFormat != "" {
				cfg.LogFormat = fc.LogFormat
			}
			if fc.ExportDir != "" {
				cfg.ExportDir = fc.ExportDir
			}
		case os.IsNotExist(err):
			// No config file is fine; env must then carry the API URL.
		default:
			return Config{}, err
		}
	}

	cfg.APIURL = EnvString("RALLY_API_URL", cfg.APIURL)
	cfg.LogLevel = EnvString("RALLY_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = EnvString("RALLY_LOG_FORMAT", cfg.LogFormat)
	cfg.ExportDir = EnvString("RALLY_EXPORT_DIR", cfg.ExportDir)
	cfg.Email = EnvString("RALLY_EMAIL", "")
	cfg.Password = EnvString("RALLY_PASSWORD", "")

	authCfg, err := auth.LoadConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.Auth = authCfg

	if cfg.APIURL == "" {
		return Config{}, ErrConfig
	}
	return cfg, nil
}
