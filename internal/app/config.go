package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/attendance-dashboard/internal/apiclient"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIHost is the host the dashboard is served as. Loopback hosts talk to
	// the backend on APILocalPort, anything else goes through APIRemoteOrigin,
	// which defaults to https://{APIHost}.
	APIHost         string `envconfig:"API_HOST" default:"localhost"`
	APILocalPort    int    `envconfig:"API_LOCAL_PORT" default:"3000"`
	APIRemoteOrigin string `envconfig:"API_REMOTE_ORIGIN"`

	// RedisAddr is optional. Empty keeps toasts in process memory.
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	ToastTTL  time.Duration `envconfig:"TOAST_TTL" default:"3500ms"`
	PageTTL   time.Duration `envconfig:"PAGE_TTL" default:"30m"`
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory is applied first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.APILocalPort <= 0 || cfg.APILocalPort > 65535 {
		return nil, errors.New("api local port must be between 1 and 65535")
	}
	if base, err := url.Parse(cfg.APIBaseURL()); err != nil || base.Host == "" ||
		(base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("api base url %q must be an absolute http(s) url", cfg.APIBaseURL())
	}
	if cfg.ToastTTL <= 0 {
		return nil, errors.New("toast ttl must be positive")
	}
	if cfg.PageTTL <= 0 {
		return nil, errors.New("page ttl must be positive")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// APIBaseURL returns the backend base URL the request client targets.
func (c *Config) APIBaseURL() string {
	if c == nil {
		return apiclient.ResolveBaseURL("localhost", 0, "")
	}
	origin := c.APIRemoteOrigin
	if origin == "" && !apiclient.IsLoopback(c.APIHost) {
		// The server-side client cannot follow a relative prefix, so the
		// backend is reached on the dashboard's own host.
		origin = "https://" + strings.TrimSpace(c.APIHost)
	}
	return apiclient.ResolveBaseURL(c.APIHost, c.APILocalPort, origin)
}
