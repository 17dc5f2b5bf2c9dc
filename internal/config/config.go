// Package config loads service configuration. Precedence, lowest to
// highest: built-in defaults, an optional YAML file, environment
// variables. A local .env file is read into the environment first, so
// development setups need no shell exports.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service.
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Engine  EngineConfig
	Session SessionConfig
	Admin   AdminConfig

	LogLevel  string
	LogFormat string // "text" | "json"
}

type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DataConfig struct {
	Dir       string
	StaticDir string
}

type EngineConfig struct {
	TickInterval time.Duration
}

type SessionConfig struct {
	TTL time.Duration
}

type AdminConfig struct {
	Username string
	Password string
}

// fileConfig mirrors Config for YAML decoding. Durations are strings in
// time.ParseDuration syntax; absent fields leave the defaults alone.
type fileConfig struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            string `yaml:"port"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Data struct {
		Dir       string `yaml:"dir"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"data"`
	Engine struct {
		TickInterval string `yaml:"tick_interval"`
	} `yaml:"engine"`
	Session struct {
		TTL string `yaml:"ttl"`
	} `yaml:"session"`
	Admin struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"admin"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Data: DataConfig{
			Dir:       "data",
			StaticDir: "static",
		},
		Engine: EngineConfig{
			TickInterval: time.Minute,
		},
		Session: SessionConfig{
			TTL: 12 * time.Hour,
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin123",
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds the configuration. path names an optional YAML file; an
// empty path means file configuration is skipped, and a missing file at
// the default path is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Server.Host, fc.Server.Host)
	setString(&c.Server.Port, fc.Server.Port)
	setString(&c.Data.Dir, fc.Data.Dir)
	setString(&c.Data.StaticDir, fc.Data.StaticDir)
	setString(&c.Admin.Username, fc.Admin.Username)
	setString(&c.Admin.Password, fc.Admin.Password)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.LogFormat, fc.LogFormat)

	for _, d := range []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{fc.Server.ReadTimeout, &c.Server.ReadTimeout, "server.read_timeout"},
		{fc.Server.WriteTimeout, &c.Server.WriteTimeout, "server.write_timeout"},
		{fc.Server.ShutdownTimeout, &c.Server.ShutdownTimeout, "server.shutdown_timeout"},
		{fc.Engine.TickInterval, &c.Engine.TickInterval, "engine.tick_interval"},
		{fc.Session.TTL, &c.Session.TTL, "session.ttl"},
	} {
		if err := setDuration(d.dst, d.raw, d.name); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Host, os.Getenv("HOST"))
	setString(&c.Server.Port, os.Getenv("PORT"))
	setString(&c.Data.Dir, os.Getenv("DATA_DIR"))
	setString(&c.Data.StaticDir, os.Getenv("STATIC_DIR"))
	setString(&c.Admin.Username, os.Getenv("ADMIN_USERNAME"))
	setString(&c.Admin.Password, os.Getenv("ADMIN_PASSWORD"))
	setString(&c.LogLevel, os.Getenv("LOG_LEVEL"))
	setString(&c.LogFormat, os.Getenv("LOG_FORMAT"))

	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"READ_TIMEOUT", &c.Server.ReadTimeout},
		{"WRITE_TIMEOUT", &c.Server.WriteTimeout},
		{"SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout},
		{"TICK_INTERVAL", &c.Engine.TickInterval},
		{"SESSION_TTL", &c.Session.TTL},
	} {
		if err := setDuration(d.dst, os.Getenv(d.key), d.key); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data directory is required")
	}
	if c.Engine.TickInterval < time.Second {
		return fmt.Errorf("tick interval %s is below one second", c.Engine.TickInterval)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Admin.Username == "" {
		return fmt.Errorf("admin username is required")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (must be text or json)", c.LogFormat)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, raw, name string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %q", name, raw)
	}
	*dst = d
	return nil
}
