package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvDomain = "CODEOCEAN_DOMAIN"
	EnvToken  = "CODEOCEAN_TOKEN"
)

// ErrMissingCredentials reports that the platform domain or token is unset.
var ErrMissingCredentials = errors.New("missing Code Ocean credentials")

// Config contains runtime configuration for codeocean-mcp.
type Config struct {
	ServerName string `yaml:"server_name"`
	Domain     string `yaml:"domain"`
	// Token is normally supplied through CODEOCEAN_TOKEN rather than the file.
	Token    string `yaml:"token"`
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`

	RequestTimeoutSeconds         int    `yaml:"request_timeout_seconds"`
	CompactSearchResults          bool   `yaml:"compact_search_results"`
	MaxDescriptionLength          int    `yaml:"max_description_length"`
	MaxTagsCount                  int    `yaml:"max_tags_count"`
	TokenEncoding                 string `yaml:"token_encoding"`
	DefaultPollingIntervalSeconds int    `yaml:"default_polling_interval_seconds"`
	MaxFileContentChars           int    `yaml:"max_file_content_chars"`
	RetentionDays                 int    `yaml:"retention_days"`
	RetentionCheckIntervalSeconds int    `yaml:"retention_check_interval_seconds"`
}

// Default returns a Config populated with safe defaults.
func Default() Config {
	return Config{
		ServerName:                    "codeocean-mcp",
		DBPath:                        filepath.Join(userHomeDir(), ".codeocean-mcp", "codeocean-mcp.db"),
		LogLevel:                      "info",
		RequestTimeoutSeconds:         30,
		CompactSearchResults:          true,
		MaxDescriptionLength:          200,
		MaxTagsCount:                  10,
		TokenEncoding:                 "cl100k_base",
		DefaultPollingIntervalSeconds: 5,
		MaxFileContentChars:           50000,
		RetentionDays:                 30,
		RetentionCheckIntervalSeconds: 3600,
	}
}

// Load loads config from disk, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config yaml: %w", err)
			}
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDomain); ok && strings.TrimSpace(v) != "" {
		c.Domain = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvToken); ok && strings.TrimSpace(v) != "" {
		c.Token = strings.TrimSpace(v)
	}
}

// Validate checks configuration sanity.
func (c *Config) Validate() error {
	if c.ServerName == "" {
		return errors.New("server_name must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return errors.New("request_timeout_seconds must be > 0")
	}
	if c.MaxDescriptionLength <= 0 {
		return errors.New("max_description_length must be > 0")
	}
	if c.MaxTagsCount <= 0 {
		return errors.New("max_tags_count must be > 0")
	}
	if c.DefaultPollingIntervalSeconds < 5 {
		return errors.New("default_polling_interval_seconds must be >= 5")
	}
	if c.MaxFileContentChars <= 0 {
		return errors.New("max_file_content_chars must be > 0")
	}
	if c.RetentionDays < 0 {
		return errors.New("retention_days must be >= 0")
	}
	if c.RetentionCheckIntervalSeconds <= 0 {
		return errors.New("retention_check_interval_seconds must be > 0")
	}
	return nil
}

// ValidateCredentials reports ErrMissingCredentials naming every unset
// platform credential.
func (c *Config) ValidateCredentials() error {
	var missing []string
	if strings.TrimSpace(c.Domain) == "" {
		missing = append(missing, EnvDomain)
	}
	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, EnvToken)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrMissingCredentials, strings.Join(missing, " and "))
	}
	return nil
}

// RequestTimeout is the per-request HTTP timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// RetentionMaxAge is how long log rows are kept; zero disables pruning.
func (c Config) RetentionMaxAge() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// RetentionCheckInterval is the period between retention passes.
func (c Config) RetentionCheckInterval() time.Duration {
	return time.Duration(c.RetentionCheckIntervalSeconds) * time.Second
}

// EnsurePaths creates parent directories for config-managed paths.
func (c *Config) EnsurePaths() error {
	c.DBPath = ExpandPath(c.DBPath)
	parent := filepath.Dir(c.DBPath)
	if parent == "." {
		return nil
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("create db parent dir: %w", err)
	}
	return nil
}

// ExpandPath expands "~/" to the current user's home directory.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p == "~" {
		return userHomeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(userHomeDir(), p[2:])
	}
	return p
}

func userHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
