// Package config loads server configuration from config.yaml with
// environment variable overrides. Secrets only ever come from the
// environment.
package config

import (
	"fmt"
	"net/url"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the engine.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// MigrationsPath is the directory holding schema migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	// Session cookie configuration
	Session SessionConfig `yaml:"session"`

	// OAuth login configuration
	OAuth OAuthConfig `yaml:"oauth"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"roomboard"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"roomboard"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// SessionConfig holds login session cookie settings.
type SessionConfig struct {
	// Secret signs session cookies. The server refuses to start
	// without one outside local environments.
	Secret string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML

	CookieName   string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME" env-default:"roomboard_session"`
	CookieDomain string `yaml:"cookie_domain" env:"SESSION_COOKIE_DOMAIN" env-default:""`
	MaxAgeHours  int    `yaml:"max_age_hours" env:"SESSION_MAX_AGE_HOURS" env-default:"720"`
	Secure       bool   `yaml:"secure" env:"SESSION_SECURE" env-default:"false"`
}

// OAuthConfig holds OAuth authorization code flow settings for login.
type OAuthConfig struct {
	ClientID     string `yaml:"client_id" env:"OAUTH_CLIENT_ID" env-default:""`
	ClientSecret string `yaml:"-" env:"OAUTH_CLIENT_SECRET"` // Secret - not in YAML
	AuthURL      string `yaml:"auth_url" env:"OAUTH_AUTH_URL" env-default:""`
	TokenURL     string `yaml:"token_url" env:"OAUTH_TOKEN_URL" env-default:""`
	UserInfoURL  string `yaml:"userinfo_url" env:"OAUTH_USERINFO_URL" env-default:""`
	Provider     string `yaml:"provider" env:"OAUTH_PROVIDER" env-default:"oidc"`
	Scopes       string `yaml:"scopes" env:"OAUTH_SCOPES" env-default:"openid email profile"`
}

// Enabled reports whether OAuth login is configured.
func (c *OAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.AuthURL != "" && c.TokenURL != ""
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set
// on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Session.Secret == "" && c.Env != "local" {
		return fmt.Errorf("SESSION_SECRET must be set outside local environments")
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (d *DatabaseConfig) ConnectionString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Database,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else {
		u.User = url.User(d.User)
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
