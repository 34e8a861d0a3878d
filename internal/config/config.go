// Package config loads the service configuration from TOML files,
// an optional .env file, and ALIGNER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/aligner/pkg/database"
	"github.com/JaimeStill/aligner/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvAlignerEnv             = "ALIGNER_ENV"
	EnvAlignerShutdownTimeout = "ALIGNER_SHUTDOWN_TIMEOUT"
	EnvAlignerVersion         = "ALIGNER_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "ALIGNER_DB_DSN",
	Host:            "ALIGNER_DB_HOST",
	Port:            "ALIGNER_DB_PORT",
	Name:            "ALIGNER_DB_NAME",
	User:            "ALIGNER_DB_USER",
	Password:        "ALIGNER_DB_PASSWORD",
	SSLMode:         "ALIGNER_DB_SSL_MODE",
	MaxOpenConns:    "ALIGNER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ALIGNER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ALIGNER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ALIGNER_DB_CONN_TIMEOUT",
	LogQueries:      "ALIGNER_DB_LOG_QUERIES",
}

var storageEnv = &storage.Env{
	Provider:         "ALIGNER_STORAGE_PROVIDER",
	Root:             "ALIGNER_STORAGE_ROOT",
	ContainerName:    "ALIGNER_STORAGE_CONTAINER_NAME",
	ConnectionString: "ALIGNER_STORAGE_CONNECTION_STRING",
	AccountURL:       "ALIGNER_STORAGE_ACCOUNT_URL",
}

// Config is the root configuration for the aligner service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Auth            AuthConfig      `toml:"auth"`
	Log             LogConfig       `toml:"log"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the ALIGNER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAlignerEnv); env != "" {
		return env
	}
	return "local"
}

// Development reports whether the service runs in a local or development environment.
func (c *Config) Development() bool {
	switch c.Env() {
	case "local", "development":
		return true
	}
	return false
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// duration parses a value already checked by Finalize. Unparseable values yield zero.
func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Load reads .env (if present) into the process environment, then the base
// config (if present), applies any environment overlay, and finalizes all values.
// Variables already set in the environment take precedence over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Log.Merge(&overlay.Log)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Log.Finalize(c.Development()); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAlignerShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAlignerVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

// load decodes path, rejecting keys that match no config field.
func load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse config %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvAlignerEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
