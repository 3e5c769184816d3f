// Package config loads and validates app configuration from the
// environment and an optional .env file using Viper. Components receive
// an explicit Config; nothing past main reads the environment directly.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabasePath is the SQLite database file path (":memory:" for ephemeral).
	DatabasePath string `mapstructure:"DB_PATH"`

	// SessionSecret is the master secret the token signing key is derived
	// from. Required; the server refuses to start without it.
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	// SessionTTL is the session token lifetime (e.g. "24h").
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// AllowedOrigins is a comma-separated list of exact origins or
	// wildcard subdomain patterns (e.g. "https://*.preview.menulens.app").
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	// OriginsFile is an optional JSON file holding the allow-list; when
	// set it overrides ALLOWED_ORIGINS and is hot-reloaded on change.
	OriginsFile string `mapstructure:"ORIGINS_FILE"`
	// DefaultOrigin is the Access-Control-Allow-Origin value returned to
	// requests whose Origin is not allow-listed.
	DefaultOrigin string `mapstructure:"DEFAULT_ORIGIN"`

	// IssueRateMax is the max token issuances per IP per window.
	IssueRateMax int `mapstructure:"ISSUE_RATE_MAX"`
	// IssueRateWindow is the issuance window (e.g. "1h").
	IssueRateWindow string `mapstructure:"ISSUE_RATE_WINDOW"`
	// APIRateMax is the max business calls per IP per window.
	APIRateMax int `mapstructure:"API_RATE_MAX"`
	// APIRateWindow is the business-call window (e.g. "1h").
	APIRateWindow string `mapstructure:"API_RATE_WINDOW"`

	// RedisAddr selects the Redis rate-limit store when non-empty;
	// otherwise limits are kept in process-local memory.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisPassword is the optional Redis password.
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// VisionAPIURL is the base URL of the OpenAI-compatible vision API.
	VisionAPIURL string `mapstructure:"VISION_API_URL"`
	// VisionAPIKey is the bearer key for the vision API. Required unless
	// the dev stub is in use.
	VisionAPIKey string `mapstructure:"VISION_API_KEY"`
	// VisionModel is the model name sent with scan requests.
	VisionModel string `mapstructure:"VISION_MODEL"`

	// LogLevel is the zerolog level name (trace..error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFile enables rotated file logging when set.
	LogFile string `mapstructure:"LOG_FILE"`
}

// Load reads .env (if present), then builds and validates Config from
// the environment. Missing .env is ignored; env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DB_PATH", "menulens.db")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("ORIGINS_FILE", "")
	v.SetDefault("DEFAULT_ORIGIN", "https://menulens.app")
	v.SetDefault("ISSUE_RATE_MAX", 10)
	v.SetDefault("ISSUE_RATE_WINDOW", "1h")
	v.SetDefault("API_RATE_MAX", 120)
	v.SetDefault("API_RATE_WINDOW", "1h")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("VISION_API_URL", "https://api.openai.com")
	v.SetDefault("VISION_API_KEY", "")
	v.SetDefault("VISION_MODEL", "gpt-4o-mini")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("config: SESSION_SECRET must be set")
	}
	if cfg.IssueRateMax <= 0 || cfg.APIRateMax <= 0 {
		return nil, errors.New("config: rate limit maximums must be positive")
	}

	return &cfg, nil
}

// SessionTTLDuration parses SessionTTL. Returns 24h if unset or invalid.
func (c *Config) SessionTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// IssueWindow parses IssueRateWindow. Returns 1h if unset or invalid.
func (c *Config) IssueWindow() time.Duration {
	return parseWindow(c.IssueRateWindow)
}

// APIWindow parses APIRateWindow. Returns 1h if unset or invalid.
func (c *Config) APIWindow() time.Duration {
	return parseWindow(c.APIRateWindow)
}

func parseWindow(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// AllowedOriginsList returns the origin allow-list entries from the
// comma-separated config value.
func (c *Config) AllowedOriginsList() []string {
	if c == nil || c.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
