package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "weft.yaml"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"
)

// Config represents the complete weft.yaml configuration.
type Config struct {
	// Name is the project name.
	Name string `yaml:"name,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server,omitempty"`

	// Session contains session loop configuration.
	Session SessionConfig `yaml:"session,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `yaml:"log,omitempty"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// Persist contains session snapshot storage configuration.
	Persist PersistConfig `yaml:"persist,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `yaml:"port,omitempty"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SessionConfig contains session loop settings.
type SessionConfig struct {
	// MaxEventQueue is the dispatch queue capacity.
	MaxEventQueue int `yaml:"max_event_queue,omitempty"`

	// ReadTimeout is the WebSocket read deadline.
	ReadTimeout Duration `yaml:"read_timeout,omitempty"`

	// WriteTimeout is the WebSocket write deadline.
	WriteTimeout Duration `yaml:"write_timeout,omitempty"`

	// HeartbeatInterval is how often pings are sent to the client.
	HeartbeatInterval Duration `yaml:"heartbeat_interval,omitempty"`

	// ResumeWindow is how long detached session snapshots remain usable.
	ResumeWindow Duration `yaml:"resume_window,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is the output format: text or json.
	Format string `yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	Enabled bool `yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace (default: "weft").
	Namespace string `yaml:"namespace,omitempty"`
}

// PersistConfig contains session snapshot storage settings.
type PersistConfig struct {
	// Backend selects the snapshot store: "memory" or "s3".
	Backend string `yaml:"backend,omitempty"`

	// Bucket is the S3 bucket name (s3 backend only).
	Bucket string `yaml:"bucket,omitempty"`

	// Prefix is the S3 key prefix (s3 backend only).
	Prefix string `yaml:"prefix,omitempty"`

	// Region is the AWS region (s3 backend only, falls back to the
	// environment's default).
	Region string `yaml:"region,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Session: SessionConfig{
			MaxEventQueue:     64,
			ReadTimeout:       Duration(60 * time.Second),
			WriteTimeout:      Duration(10 * time.Second),
			HeartbeatInterval: Duration(30 * time.Second),
			ResumeWindow:      Duration(30 * time.Minute),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "weft",
		},
		Persist: PersistConfig{
			Backend: "memory",
			Prefix:  "weft/sessions/",
		},
	}
}

// Load reads configuration from the specified directory. It looks for
// weft.yaml in the directory; a missing file yields the defaults.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	cfg, err := LoadFile(configPath)
	if os.IsNotExist(err) {
		return New(), nil
	}
	return cfg, err
}

// Find searches dir and its parents for weft.yaml and returns the first
// match. Returns os.ErrNotExist when no config file exists up to the root.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(abs, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", os.ErrNotExist
		}
		abs = parent
	}
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	def := New()

	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Session.MaxEventQueue == 0 {
		c.Session.MaxEventQueue = def.Session.MaxEventQueue
	}
	if c.Session.ReadTimeout == 0 {
		c.Session.ReadTimeout = def.Session.ReadTimeout
	}
	if c.Session.WriteTimeout == 0 {
		c.Session.WriteTimeout = def.Session.WriteTimeout
	}
	if c.Session.HeartbeatInterval == 0 {
		c.Session.HeartbeatInterval = def.Session.HeartbeatInterval
	}
	if c.Session.ResumeWindow == 0 {
		c.Session.ResumeWindow = def.Session.ResumeWindow
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = def.Metrics.Namespace
	}
	if c.Persist.Backend == "" {
		c.Persist.Backend = def.Persist.Backend
	}
	if c.Persist.Prefix == "" {
		c.Persist.Prefix = def.Persist.Prefix
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid log format %q", c.Log.Format)
	}

	switch c.Persist.Backend {
	case "memory":
	case "s3":
		if c.Persist.Bucket == "" {
			return fmt.Errorf("config: s3 backend requires a bucket")
		}
	default:
		return fmt.Errorf("config: invalid persist backend %q", c.Persist.Backend)
	}

	return nil
}
