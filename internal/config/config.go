package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from .env files and environment variables.
type Config struct {
	AppName            string        `mapstructure:"app_name"`
	Env                string        `mapstructure:"app_env"`
	LogLevel           string        `mapstructure:"log_level"`
	PolygonAPIKey      string        `mapstructure:"polygon_api_key"`
	PolygonBaseURL     string        `mapstructure:"polygon_base_url"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	PublishersFile     string        `mapstructure:"publishers_file"`
}

// DefaultPolygonBaseURL is the public Polygon.io REST host.
const DefaultPolygonBaseURL = "https://api.polygon.io"

// Load reads configuration from environment variables and optional .env files.
// A missing API key is not an error here; the fetcher reports it before any request is made.
func Load() (*Config, error) {
	// Both files are optional; values already in the environment win.
	_ = godotenv.Load(".env")
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "dxy-snapshot")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("polygon_api_key", "")
	v.SetDefault("polygon_base_url", DefaultPolygonBaseURL)
	v.SetDefault("http_timeout_seconds", 0) // client default
	v.SetDefault("publishers_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.PolygonAPIKey = strings.TrimSpace(cfg.PolygonAPIKey)
	cfg.PolygonBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PolygonBaseURL), "/")
	cfg.PublishersFile = strings.TrimSpace(cfg.PublishersFile)

	if err := validateBaseURL(cfg.PolygonBaseURL); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeoutSeconds < 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be zero or positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	return &cfg, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid polygon_base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid polygon_base_url %q (expected absolute http(s) url)", raw)
	}
	return nil
}

// Redacted returns a copy safe for logging.
func (c *Config) Redacted() Config {
	if c == nil {
		return Config{}
	}
	out := *c
	if out.PolygonAPIKey != "" {
		out.PolygonAPIKey = "REDACTED"
	}
	return out
}
