package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Defaults applied when a key is absent from the config file.
const (
	DefaultPollIntervalSec = 300
	DefaultSinceDays       = 7
	DefaultFetchLimit      = 200
	DefaultMailbox         = "INBOX"
	DefaultIMAPPort        = "993"
)

// SourceConfig holds the configuration for one IMAP account feeding the cache.
type SourceConfig struct {
	// ID is the unique identifier for this source instance.
	ID string `mapstructure:"id" yaml:"id"`

	// Type identifies the source kind. Only "email" is supported.
	Type string `mapstructure:"type" yaml:"type"`

	// Name is the user-defined label for this source instance.
	Name string `mapstructure:"name" yaml:"name"`

	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`

	// TLS selects implicit TLS; otherwise STARTTLS is used.
	TLS bool `mapstructure:"tls" yaml:"tls"`

	// Mailbox is the IMAP mailbox to read (e.g., "INBOX").
	Mailbox string `mapstructure:"mailbox" yaml:"mailbox"`

	// Enabled controls whether this source is actively polled.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DatabaseConfig locates the cache file and the organization it belongs to.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`

	// InternalDomain is the mail domain treated as internal when ranking
	// external senders (e.g., "company.com").
	InternalDomain string `mapstructure:"internal_domain" yaml:"internal_domain"`
}

// SyncConfig controls the background poller.
type SyncConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// Schedule is an optional five-field cron expression. When set it
	// replaces the fixed poll interval.
	Schedule string `mapstructure:"schedule" yaml:"schedule"`

	// SinceDays bounds how far back each fetch looks.
	SinceDays int `mapstructure:"since_days" yaml:"since_days"`

	// FetchLimit caps the number of messages fetched per source per pass.
	FetchLimit int `mapstructure:"fetch_limit" yaml:"fetch_limit"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Sources  []SourceConfig `mapstructure:"sources" yaml:"sources"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailcache/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultDatabasePath returns ~/.config/mailcache/email_cache.db.
func DefaultDatabasePath() string {
	return filepath.Join(configDir(), "email_cache.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailcache")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Path: DefaultDatabasePath(),
		},
		Sync: SyncConfig{
			PollIntervalSec: DefaultPollIntervalSec,
			SinceDays:       DefaultSinceDays,
			FetchLimit:      DefaultFetchLimit,
		},
		Sources: []SourceConfig{},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden by MAILCACHE_* environment variables
// (e.g., MAILCACHE_DATABASE_PATH). If the file does not exist, the
// defaults (with environment overrides) are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MAILCACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("database.internal_domain", "")
	v.SetDefault("sync.poll_interval_sec", DefaultPollIntervalSec)
	v.SetDefault("sync.schedule", "")
	v.SetDefault("sync.since_days", DefaultSinceDays)
	v.SetDefault("sync.fetch_limit", DefaultFetchLimit)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if _, ok := err.(*os.PathError); !ok && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		if src.Type == "" {
			src.Type = "email"
		}
		if src.Port == "" {
			src.Port = DefaultIMAPPort
		}
		if src.Mailbox == "" {
			src.Mailbox = DefaultMailbox
		}
		if src.ID == "" {
			src.ID = src.Username
		}
		if !src.Enabled {
			// Viper unmarshals missing bools as false; treat unset as true.
			key := fmt.Sprintf("sources.%d.enabled", i)
			if !v.IsSet(key) {
				src.Enabled = true
			}
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("sync", cfg.Sync)
	v.Set("sources", cfg.Sources)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
