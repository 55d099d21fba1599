// Package config loads the groupboard configuration shared by the CLI and the
// boardd server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultServerURL        = "http://localhost:8080"
	DefaultAddr             = ":8080"
	DefaultRequestTimeout   = 10 * time.Second
	DefaultNoticeTTL        = 4 * time.Second
	DefaultPersistRetries   = 3
	DefaultClientBuffer     = 64
	DefaultSnapshotInterval = 30 * time.Second
	DefaultLogLevel         = "info"
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	Daemon DaemonConfig `yaml:"daemon"`
	Log    LogConfig    `yaml:"log"`
	Theme  Theme        `yaml:"theme"`
}

// ServerConfig locates the persistence server and the room daemon.
type ServerConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token,omitempty"`
}

// ClientConfig tunes the board session. A negative PersistRetries disables
// retries.
type ClientConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
	NoticeTTL      time.Duration `yaml:"notice_ttl"`
	PersistRetries int           `yaml:"persist_retries"`
}

// Retries is PersistRetries with the disabled case mapped to zero.
func (c ClientConfig) Retries() int { return max(c.PersistRetries, 0) }

// DaemonConfig configures boardd.
type DaemonConfig struct {
	Addr             string        `yaml:"addr"`
	DatabasePath     string        `yaml:"database_path"`
	JWTSecret        string        `yaml:"jwt_secret,omitempty"`
	RedisURL         string        `yaml:"redis_url,omitempty"`
	ClientBuffer     int           `yaml:"client_buffer"`
	CORSOrigins      []string      `yaml:"cors_origins,omitempty"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

// LogConfig selects the log level and destination. An empty File logs to
// stderr.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// Default returns a config with every field at its default.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the config file, then .env files, then GROUPBOARD_* variables.
// A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return loadFrom("")
	}
	return loadFrom(path)
}

// LoadFile is Load with an explicit config path.
func LoadFile(path string) (*Config, error) {
	return loadFrom(path)
}

func loadFrom(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
		loadDotEnv(filepath.Join(filepath.Dir(path), ".env"))
	}
	loadDotEnv(".env")

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// loadDotEnv sets variables from an env file without overriding ones
// already in the environment.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// applyEnv overrides file values with GROUPBOARD_* environment variables.
func (c *Config) applyEnv() error {
	str := map[string]*string{
		"GROUPBOARD_SERVER_URL": &c.Server.URL,
		"GROUPBOARD_TOKEN":      &c.Server.Token,
		"GROUPBOARD_ADDR":       &c.Daemon.Addr,
		"GROUPBOARD_DB_PATH":    &c.Daemon.DatabasePath,
		"GROUPBOARD_JWT_SECRET": &c.Daemon.JWTSecret,
		"GROUPBOARD_REDIS_URL":  &c.Daemon.RedisURL,
		"GROUPBOARD_LOG_LEVEL":  &c.Log.Level,
		"GROUPBOARD_LOG_FILE":   &c.Log.File,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("GROUPBOARD_CORS_ORIGINS"); ok {
		c.Daemon.CORSOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("GROUPBOARD_REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GROUPBOARD_REQUEST_TIMEOUT: %w", err)
		}
		c.Client.RequestTimeout = d
	}
	if v, ok := os.LookupEnv("GROUPBOARD_PERSIST_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GROUPBOARD_PERSIST_RETRIES: %w", err)
		}
		c.Client.PersistRetries = n
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config as yaml to path.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	// The file may hold a token.
	return os.WriteFile(path, data, 0o600)
}

// Path returns the path to the config file
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "groupboard", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "groupboard", "config.yaml"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = DefaultServerURL
	}
	c.Server.URL = strings.TrimRight(c.Server.URL, "/")

	if c.Client.RequestTimeout <= 0 {
		c.Client.RequestTimeout = DefaultRequestTimeout
	}
	if c.Client.NoticeTTL <= 0 {
		c.Client.NoticeTTL = DefaultNoticeTTL
	}
	if c.Client.PersistRetries == 0 {
		c.Client.PersistRetries = DefaultPersistRetries
	}

	if c.Daemon.Addr == "" {
		c.Daemon.Addr = DefaultAddr
	}
	if c.Daemon.ClientBuffer <= 0 {
		c.Daemon.ClientBuffer = DefaultClientBuffer
	}
	if c.Daemon.SnapshotInterval <= 0 {
		c.Daemon.SnapshotInterval = DefaultSnapshotInterval
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	c.Theme.ApplyDefaults()
}
