package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"golang.org/x/text/language"
)

const (
	// DeployedBasePath is used when the app is served from the same origin as the backend
	DeployedBasePath = "/api"

	// LocalBaseURL is the backend address during local development
	LocalBaseURL = "http://localhost:8000/api"
)

// Config is read once at startup. APIBaseURL is always absolute after NewConfig returns.
type Config struct {
	Environment string        `env:"ENVIRONMENT,default=dev"`
	LogLevel    string        `env:"LOG_LEVEL,default=info"`
	APIBaseURL  string        `env:"API_BASE_URL"`               // explicit backend base url, takes precedence over APP_HOST
	AppHost     string        `env:"APP_HOST,default=localhost"` // host the app is served from
	AppOrigin   string        `env:"APP_ORIGIN"`                 // scheme://host used to resolve a relative base url
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT,default=10s"`   // 0 disables the per request timeout
	Language    string        `env:"LANGUAGE,default=fa"`
	Password    string        `env:"TALIMBOT_PASSWORD"` // teacher password for admin commands, --password overrides it
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"perf":    true,
	"prod":    true,
	"staging": true,
}

// NewConfig loads the configuration from the process environment
func NewConfig() (*Config, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return newConfigFromEnvSet(es)
}

func newConfigFromEnvSet(es env.EnvSet) (*Config, error) {
	var cfg Config

	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	baseURL, err := resolveConfiguredBaseURL(&cfg)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg.APIBaseURL = baseURL

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, perf, staging, prod", cfg.Environment)
	}

	if cfg.HTTPTimeout < 0 {
		return fmt.Errorf("http timeout must not be negative, got %v", cfg.HTTPTimeout)
	}

	if _, err := language.Parse(cfg.Language); err != nil {
		return fmt.Errorf("invalid LANGUAGE '%s': %w", cfg.Language, err)
	}

	return nil
}

// ResolveBaseURL returns the default backend base url for an app served from host.
//
// Loopback hosts talk to the local development backend, anything else uses the
// same-origin /api path.
func ResolveBaseURL(host string) string {
	if isLoopback(host) {
		return LocalBaseURL
	}
	return DeployedBasePath
}

func isLoopback(host string) bool {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// resolveConfiguredBaseURL picks API_BASE_URL or the APP_HOST default and makes it absolute using APP_ORIGIN
func resolveConfiguredBaseURL(cfg *Config) (string, error) {
	raw := cfg.APIBaseURL
	if raw == "" {
		raw = ResolveBaseURL(cfg.AppHost)
	}

	base, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid api base url '%s': %w", raw, err)
	}

	if base.IsAbs() {
		if base.Host == "" {
			return "", fmt.Errorf("api base url '%s' has no host", raw)
		}
		return strings.TrimSuffix(base.String(), "/"), nil
	}

	if cfg.AppOrigin == "" {
		return "", fmt.Errorf("api base url '%s' is relative: set APP_ORIGIN or API_BASE_URL", raw)
	}

	origin, err := url.Parse(cfg.AppOrigin)
	if err != nil || !origin.IsAbs() || origin.Host == "" {
		return "", fmt.Errorf("APP_ORIGIN must be an absolute url, got '%s'", cfg.AppOrigin)
	}

	return strings.TrimSuffix(origin.ResolveReference(base).String(), "/"), nil
}
