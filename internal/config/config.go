// ABOUTME: Configuration loading and parsing for schoolbook
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Storage backends
const (
	BackendSQLite   = "sqlite"
	BackendSQLite3  = "sqlite3"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config represents the complete schoolbook configuration
type Config struct {
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	School  SchoolConfig  `yaml:"school" toml:"school"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// StorageConfig selects and configures the key-value backend
type StorageConfig struct {
	Backend  string         `yaml:"backend" toml:"backend"`
	Path     string         `yaml:"path" toml:"path"`
	Redis    RedisConfig    `yaml:"redis" toml:"redis"`
	Postgres PostgresConfig `yaml:"postgres" toml:"postgres"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr        string        `yaml:"addr" toml:"addr"`
	Password    string        `yaml:"password" toml:"password"`
	DB          int           `yaml:"db" toml:"db"`
	Prefix      string        `yaml:"prefix" toml:"prefix"`
	DialTimeout time.Duration `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling
	DialTimeoutRaw string `yaml:"dial_timeout" toml:"dial_timeout"`
}

// PostgresConfig holds the Postgres connection URL
type PostgresConfig struct {
	URL string `yaml:"url" toml:"url"`
}

// SchoolConfig holds school-level behavior
type SchoolConfig struct {
	SeedDemo bool `yaml:"seed_demo" toml:"seed_demo"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    DefaultDBPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the config file location: $SCHOOLBOOK_CONFIG, then
// $XDG_CONFIG_HOME/schoolbook/config.yaml, then ~/.config/schoolbook/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("SCHOOLBOOK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "schoolbook", "config.yaml")
}

// DefaultDBPath returns $XDG_DATA_HOME/schoolbook/school.db.
func DefaultDBPath() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "schoolbook", "school.db")
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fallback
	}
	return filepath.Join(home, fallback)
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, anything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// A missing file yields Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expandedData, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendSQLite3:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s backend", c.Storage.Backend)
		}
	case BackendMemory:
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for the redis backend")
		}
		if c.Storage.Redis.DB < 0 {
			return fmt.Errorf("storage.redis.db must not be negative")
		}
	case BackendPostgres:
		if c.Storage.Postgres.URL == "" {
			return fmt.Errorf("storage.postgres.url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of sqlite, sqlite3, memory, redis, postgres", c.Storage.Backend)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Storage.Redis.DialTimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Storage.Redis.DialTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing dial_timeout %q: %w", cfg.Storage.Redis.DialTimeoutRaw, err)
		}
		cfg.Storage.Redis.DialTimeout = d
	}
	return nil
}
