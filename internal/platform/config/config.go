package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration, populated from the
// environment with sensible defaults for local development.
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	GitHub  GitHubConfig
	Session SessionConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string        `env:"SERVER_ADDR" env-default:":8080"`
	ReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT" env-default:"5s"`
	ReadTimeout       time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout   time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// TrustProxyHeaders enables honoring X-Forwarded-Proto when the
	// server sits behind a TLS-terminating proxy.
	TrustProxyHeaders bool `env:"SERVER_TRUST_PROXY_HEADERS" env-default:"false"`
}

// DataConfig locates the on-disk store. The directory is created on
// startup if it does not exist.
type DataConfig struct {
	Directory string `env:"DATA_DIRECTORY" env-default:"app_data"`
}

// GitHubConfig holds the OAuth application credentials. EnterpriseDomain
// switches the provider endpoints to a GitHub Enterprise installation.
type GitHubConfig struct {
	ClientID         string `env:"GITHUB_CLIENT_ID"`
	ClientSecret     string `env:"GITHUB_CLIENT_SECRET"`
	EnterpriseDomain string `env:"GITHUB_ENTERPRISE_DOMAIN"`
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL" env-default:"168h"`
	SecureCookie bool          `env:"SESSION_SECURE_COOKIE" env-default:"false"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

// Load reads the configuration from the environment and validates the
// values the application cannot run without.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.GitHub.ClientID == "" {
		return fmt.Errorf("GITHUB_CLIENT_ID is required")
	}
	if c.GitHub.ClientSecret == "" {
		return fmt.Errorf("GITHUB_CLIENT_SECRET is required")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	return nil
}
