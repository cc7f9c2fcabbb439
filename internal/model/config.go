package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Backend modes.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// BackendConfig selects and configures the backend the client talks to.
type BackendConfig struct {
	// Mode is "local" (embedded SQLite backend) or "remote" (HTTP backend).
	Mode string `mapstructure:"mode" yaml:"mode"`

	// URL is the root URL of the remote backend.
	URL string `mapstructure:"url" yaml:"url"`

	// APIKey is the public API key sent with every remote request.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// Database is the SQLite file used in local mode and by the server.
	Database string `mapstructure:"database" yaml:"database"`
}

// ServerConfig holds settings for `qtplanner serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// EntriesConfig holds write-time settings for entries.
type EntriesConfig struct {
	// StorageOffsetHours is added to both the chosen date-time and the
	// creation instant before an entry is written.
	StorageOffsetHours int `mapstructure:"storage_offset_hours" yaml:"storage_offset_hours"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme         string `mapstructure:"theme" yaml:"theme"`
	Timezone      string `mapstructure:"timezone" yaml:"timezone"`
	BannerSeconds int    `mapstructure:"banner_seconds" yaml:"banner_seconds"`
}

// OAuthConfig carries third-party identity provider settings. They are
// passed through to the backend and not interpreted by the client.
type OAuthConfig struct {
	GoogleClientID string `mapstructure:"google_client_id" yaml:"google_client_id"`
	RedirectURI    string `mapstructure:"redirect_uri" yaml:"redirect_uri"`
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Entries EntriesConfig `mapstructure:"entries" yaml:"entries"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	OAuth   OAuthConfig   `mapstructure:"oauth" yaml:"oauth"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// StorageOffset returns the configured storage offset as a duration.
func (c *AppConfig) StorageOffset() time.Duration {
	return time.Duration(c.Entries.StorageOffsetHours) * time.Hour
}

// BannerDuration returns how long the success banner stays visible.
func (c *AppConfig) BannerDuration() time.Duration {
	return time.Duration(c.Display.BannerSeconds) * time.Second
}

// Location resolves the display timezone, falling back to the local zone.
func (c *AppConfig) Location() *time.Location {
	if c.Display.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// configDir is the directory holding the config file, database, and log.
const configDir = "~/.config/qtplanner"

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/qtplanner/config.yaml.
func DefaultConfigPath() string {
	path, err := homedir.Expand(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return path
}

// defaults lists every config key with its default value. Every key must be
// registered so that environment overrides reach Unmarshal.
var defaults = map[string]any{
	"backend.mode":                 BackendLocal,
	"backend.url":                  "http://localhost:8787",
	"backend.api_key":              "",
	"backend.database":             filepath.Join(configDir, "qtplanner.db"),
	"server.addr":                  ":8787",
	"entries.storage_offset_hours": 9,
	"display.theme":                "dark",
	"display.timezone":             "Asia/Seoul",
	"display.banner_seconds":       3,
	"oauth.google_client_id":       "",
	"oauth.redirect_uri":           "",
	"log.file":                     filepath.Join(configDir, "qtplanner.log"),
	"log.level":                    "info",
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with QTPLANNER_ override file values
// (e.g. QTPLANNER_BACKEND_API_KEY). A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("QTPLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	switch cfg.Backend.Mode {
	case BackendLocal, BackendRemote:
	default:
		return nil, fmt.Errorf("invalid backend.mode %q: want %q or %q",
			cfg.Backend.Mode, BackendLocal, BackendRemote)
	}

	if cfg.Entries.StorageOffsetHours < -24 || cfg.Entries.StorageOffsetHours > 24 {
		return nil, fmt.Errorf("entries.storage_offset_hours out of range: %d",
			cfg.Entries.StorageOffsetHours)
	}

	return cfg, nil
}

// expandPaths resolves a leading ~ in file paths.
func (c *AppConfig) expandPaths() error {
	var err error
	if c.Backend.Database != ":memory:" {
		c.Backend.Database, err = homedir.Expand(c.Backend.Database)
		if err != nil {
			return fmt.Errorf("expanding backend.database: %w", err)
		}
	}
	if c.Log.File != "" {
		c.Log.File, err = homedir.Expand(c.Log.File)
		if err != nil {
			return fmt.Errorf("expanding log.file: %w", err)
		}
	}
	return nil
}
