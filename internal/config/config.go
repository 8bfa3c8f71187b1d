// Package config provides functionality for managing configuration options
// for the application using environment variables and an optional YAML file.
package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults are insecure placeholders intended for replacement in any real
// deployment.
const (
	defaultSecretKey   = "dev-secret-key-change-in-production-2024"
	defaultDatabaseDSN = "postgres://postgres@127.0.0.1:5432/bank?sslmode=disable"
	defaultAddress     = "localhost:8080"
	defaultInstanceDir = "instance"
	defaultTemplateDir = "web/templates"
	defaultStaticDir   = "web/static"
	defaultLogLevel    = "info"

	defaultSessionLifetime = 30 * time.Minute
	defaultPurgeInterval   = time.Hour
	defaultPurgeRetention  = 30 * 24 * time.Hour
)

// Options holds the configuration values for the application.
type Options struct {
	// SecretKey signs and encrypts session cookies and CSRF tokens.
	SecretKey string `yaml:"secret_key"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `yaml:"database_dsn"`

	// Address defines the server's listening address (ip:port).
	Address string `yaml:"address"`

	// InstanceDir is a private directory for instance-local data.
	InstanceDir string `yaml:"instance_dir"`

	// TemplateDir is the root of the HTML template tree.
	TemplateDir string `yaml:"template_dir"`

	// StaticDir is the root of the static asset tree served under /static.
	StaticDir string `yaml:"static_dir"`

	// SessionLifetime bounds how long a login session stays valid.
	SessionLifetime time.Duration `yaml:"session_lifetime"`

	// CookieHTTPOnly marks session cookies as inaccessible to scripts.
	CookieHTTPOnly bool `yaml:"cookie_http_only"`

	// CookieSecure restricts session cookies to HTTPS transports.
	CookieSecure bool `yaml:"cookie_secure"`

	// CSRFEnabled toggles cross-site request forgery protection.
	// Tokens carry no expiry of their own; they live with the session.
	CSRFEnabled bool `yaml:"csrf_enabled"`

	// LogLevel selects the zap logging level.
	LogLevel string `yaml:"log_level"`

	// PurgeInterval is how often the deactivated-user purger runs.
	PurgeInterval time.Duration `yaml:"purge_interval"`

	// PurgeRetention is how long a deactivated user is kept before purging.
	PurgeRetention time.Duration `yaml:"purge_retention"`
}

// CookieSameSite returns the SameSite policy applied to session cookies.
// The application always uses Lax so cookies survive top-level navigation.
func (o *Options) CookieSameSite() http.SameSite { return http.SameSiteLaxMode }

// defaults returns an Options populated with the placeholder values.
func defaults() *Options {
	return &Options{
		SecretKey:       defaultSecretKey,
		DatabaseDSN:     defaultDatabaseDSN,
		Address:         defaultAddress,
		InstanceDir:     defaultInstanceDir,
		TemplateDir:     defaultTemplateDir,
		StaticDir:       defaultStaticDir,
		SessionLifetime: defaultSessionLifetime,
		CookieHTTPOnly:  true,
		CookieSecure:    false,
		CSRFEnabled:     true,
		LogLevel:        defaultLogLevel,
		PurgeInterval:   defaultPurgeInterval,
		PurgeRetention:  defaultPurgeRetention,
	}
}

// Load resolves configuration with precedence defaults < YAML file <
// environment. path selects the optional YAML file; an empty path or a
// missing file is not an error. A .env file in the working directory is
// loaded into the environment first when present.
func Load(path string) (*Options, error) {
	_ = godotenv.Load()

	options := defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnv(options)

	if err := validate(options); err != nil {
		return nil, err
	}
	return options, nil
}

// applyEnv overrides options from environment variables when set.
func applyEnv(options *Options) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		options.SecretKey = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		options.DatabaseDSN = v
	}
	if v := os.Getenv("ADDRESS"); v != "" {
		options.Address = v
	}
	if v := os.Getenv("INSTANCE_DIR"); v != "" {
		options.InstanceDir = v
	}
	if v := os.Getenv("TEMPLATE_DIR"); v != "" {
		options.TemplateDir = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		options.StaticDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		options.LogLevel = v
	}
	if v := os.Getenv("SESSION_LIFETIME"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			options.SessionLifetime = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("APP_HTTPS"); v != "" {
		options.CookieSecure = v == "1" || v == "true"
	}
	if v := os.Getenv("CSRF_ENABLED"); v != "" {
		options.CSRFEnabled = v != "0" && v != "false"
	}
}

// validate rejects configurations the application cannot run with.
func validate(options *Options) error {
	if options.SecretKey == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	if options.DatabaseDSN == "" {
		return fmt.Errorf("database DSN must not be empty")
	}
	if options.SessionLifetime <= 0 {
		return fmt.Errorf("session lifetime must be positive, got %s", options.SessionLifetime)
	}
	if options.PurgeInterval <= 0 || options.PurgeRetention <= 0 {
		return fmt.Errorf("purge interval and retention must be positive")
	}
	return nil
}
