// Package config loads moviegate settings from a YAML file, the environment,
// and built-in defaults, in that order of increasing precedence for secrets.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "moviegate.yaml"

// Environment variables consulted after the file is read.
const (
	EnvAPIKey = "TMDB_API_KEY"
	EnvRPCURL = "MOVIEGATE_RPC_URL"
	EnvAddr   = "MOVIEGATE_ADDR"
)

// MetadataConfig controls the TMDB client.
type MetadataConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Language   string        `yaml:"language"`
	Timeout    time.Duration `yaml:"timeout"` // 0 = no client-side timeout
	SampleFile string        `yaml:"sample_file"`
}

// WalletConfig controls the JSON-RPC wallet provider used by the terminal shell.
type WalletConfig struct {
	RPCURL       string        `yaml:"rpc_url"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr               string        `yaml:"addr"`
	SessionTTL         time.Duration `yaml:"session_ttl"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int           `yaml:"rate_limit_burst"`
	AllowedOrigins     []string      `yaml:"allowed_origins"`
}

// LogConfig controls logrus level and the optional rotating log file.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config is the root of moviegate.yaml.
type Config struct {
	Metadata MetadataConfig `yaml:"metadata"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Metadata: MetadataConfig{
			BaseURL:  "https://api.themoviedb.org/3",
			Language: "en-US",
		},
		Wallet: WalletConfig{
			RPCURL:       "http://127.0.0.1:1248",
			PollInterval: 2 * time.Second,
		},
		Server: ServerConfig{
			Addr:               ":8080",
			SessionTTL:         12 * time.Hour,
			RateLimitPerMinute: 120,
			RateLimitBurst:     30,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.Metadata.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRPCURL)); v != "" {
		c.Wallet.RPCURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAddr)); v != "" {
		c.Server.Addr = v
	}
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Metadata.BaseURL) == "" {
		return errors.New("metadata.base_url must not be empty")
	}
	if c.Metadata.Timeout < 0 {
		return errors.New("metadata.timeout must not be negative")
	}
	if c.Wallet.PollInterval <= 0 {
		return errors.New("wallet.poll_interval must be positive")
	}
	if c.Server.RateLimitPerMinute <= 0 || c.Server.RateLimitBurst <= 0 {
		return errors.New("server rate limit settings must be positive")
	}
	return nil
}

// HasCredential reports whether TMDB calls will be made.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.Metadata.APIKey) != ""
}
