package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPathVar names the variable holding the TOML file path.
const EnvPathVar = "DNSFILTER_SERVER_ENV"

const DefaultPath = "env.toml"

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

type ServerConfig struct {
	Port           int    `toml:"port" env:"PORT"`
	WebDir         string `toml:"web_dir" env:"DNSFILTER_WEB_DIR"`
	MaxLimit       int    `toml:"max_limit" env:"DNSFILTER_MAX_LIMIT"`
	MaxConnections int    `toml:"max_connections" env:"DNSFILTER_MAX_CONNECTIONS"`
}

type StorageConfig struct {
	Path          string `toml:"path" env:"DNSFILTER_DB_PATH"`
	ReadOnly      bool   `toml:"read_only" env:"DNSFILTER_DB_READ_ONLY"`
	BusyTimeoutMs int    `toml:"busy_timeout_ms" env:"DNSFILTER_DB_BUSY_TIMEOUT_MS"`
}

type LogConfig struct {
	Dir string `toml:"dir" env:"DNSFILTER_LOG_DIR"`
}

type MetricsConfig struct {
	Enabled bool   `toml:"enabled" env:"DNSFILTER_METRICS"`
	Path    string `toml:"path" env:"DNSFILTER_METRICS_PATH"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8000,
			WebDir:   "app/web",
			MaxLimit: 10000,
		},
		Storage: StorageConfig{
			Path:          "database/dns_filter.db",
			ReadOnly:      true,
			BusyTimeoutMs: 5000,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by DNSFILTER_SERVER_ENV, or env.toml.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvPathVar)
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Server.MaxLimit < 0 {
		return fmt.Errorf("invalid max_limit %d", c.Server.MaxLimit)
	}
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("invalid max_connections %d", c.Server.MaxConnections)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is empty")
	}
	return nil
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Server.Port) }
