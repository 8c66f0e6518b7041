// Package config handles oceanpub configuration: an optional YAML file with
// environment-variable overrides, constructed once at startup and passed to
// the components that need it.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Database driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Duration wraps time.Duration so YAML values like "30s" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all configuration for an oceanpub run.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Crossref CrossrefConfig `yaml:"crossref"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig holds connection settings for the publication store.
type DatabaseConfig struct {
	// Driver is "postgres" (deployments) or "sqlite" (local runs).
	Driver string `yaml:"driver"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`

	// Table is the publications table name.
	Table string `yaml:"table"`

	// Path is the SQLite database file, used only with the sqlite driver.
	Path string `yaml:"path"`
}

// CrossrefConfig holds catalog client settings.
type CrossrefConfig struct {
	// Mailto is the contact address for Crossref's polite pool.
	Mailto string `yaml:"mailto"`

	// RateLimit is the request rate in requests per second.
	RateLimit float64 `yaml:"rate_limit"`

	// Rows is how many candidates each title query requests.
	Rows int `yaml:"rows"`

	// MaxAttempts bounds retries on transient failures.
	MaxAttempts int `yaml:"max_attempts"`

	// Backoff is the fixed delay between retry attempts.
	Backoff Duration `yaml:"backoff"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// Format is "console" or "json".
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:  DriverPostgres,
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "oceanpub",
			SSLMode: "disable",
			Table:   "publications",
			Path:    "oceanpub.db",
		},
		Crossref: CrossrefConfig{
			RateLimit:   1.0,
			Rows:        5,
			MaxAttempts: 3,
			Backoff:     Duration(30 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty and no default file exists), then environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = "oceanpub.yml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; env and defaults cover everything.
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies environment-variable overrides. The database variable
// names match the legacy deployment (DBUSER, DBPASS, DBHOST, DBPORT,
// DBNAME, PUBTABLE).
func (c *Config) applyEnv() {
	setString(&c.Database.User, "DBUSER")
	setString(&c.Database.Password, "DBPASS")
	setString(&c.Database.Host, "DBHOST")
	setInt(&c.Database.Port, "DBPORT")
	setString(&c.Database.Name, "DBNAME")
	setString(&c.Database.Table, "PUBTABLE")
	setString(&c.Database.SSLMode, "DBSSLMODE")
	setString(&c.Database.Driver, "DBDRIVER")
	setString(&c.Database.Path, "DBPATH")
	setString(&c.Crossref.Mailto, "CROSSREF_MAILTO")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Crossref.Rows <= 0 {
		return fmt.Errorf("crossref rows must be positive, got %d", c.Crossref.Rows)
	}
	if c.Crossref.MaxAttempts <= 0 {
		return fmt.Errorf("crossref max_attempts must be positive, got %d", c.Crossref.MaxAttempts)
	}
	return nil
}

// DSN returns the PostgreSQL connection URL.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
