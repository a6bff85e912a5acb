// Package config resolves settings from flags, TODOCTL_* variables and the config directory.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/oauth2"
)

const (
	// AppName is the application directory name.
	AppName = "todoctl"

	// EnvPrefix prefixes every environment variable read by New.
	EnvPrefix = "TODOCTL"

	// TokenFile is the stored bearer token filename.
	TokenFile = "token.json"
)

// ErrNoToken is returned by LoadToken when no token is configured.
var ErrNoToken = errors.New("not logged in")

// env mirrors the TODOCTL_* environment.
type env struct {
	BaseURL   string        `envconfig:"BASE_URL" default:"http://localhost:8000"`
	Token     string        `envconfig:"TOKEN"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"10s"`
	LogLevel  string        `envconfig:"LOG_LEVEL" default:"warn"`
	ConfigDir string        `envconfig:"CONFIG_DIR"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// BaseURL is the todo backend root, e.g. http://localhost:8000.
	BaseURL string

	// Token overrides the stored token when set.
	Token string

	// Timeout bounds every backend request.
	Timeout time.Duration

	// LogLevel is a zerolog level name.
	LogLevel string

	// Debug forces debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// JSON prints raw backend responses instead of formatted output.
	JSON bool
}

// New reads the TODOCTL_* environment and resolves the config directory.
// configDir, when non-empty, wins over TODOCTL_CONFIG_DIR and the XDG default.
func New(configDir string) (*Config, error) {
	var e env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	dir := configDir
	if dir == "" {
		dir = e.ConfigDir
	}
	if dir == "" {
		dir = DefaultConfigDir()
	}

	return &Config{
		Dir:      dir,
		BaseURL:  e.BaseURL,
		Token:    e.Token,
		Timeout:  e.Timeout,
		LogLevel: e.LogLevel,
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the stored token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory with mode 0700 if it doesn't exist.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken reports whether a token is available from the environment or the token file.
func (c *Config) HasToken() bool {
	if c.Token != "" {
		return true
	}
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// LoadToken returns the bearer token to send. TODOCTL_TOKEN wins over token.json.
func (c *Config) LoadToken() (*oauth2.Token, error) {
	if c.Token != "" {
		return &oauth2.Token{AccessToken: c.Token, TokenType: "Bearer"}, nil
	}

	data, err := os.ReadFile(c.TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TokenFile, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", TokenFile, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("invalid %s: empty access token", TokenFile)
	}
	return &tok, nil
}

// SaveToken writes tok to token.json with mode 0600.
func (c *Config) SaveToken(tok *oauth2.Token) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenPath(), data, 0600)
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
