// Package config loads the service configuration from an optional YAML file,
// a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when CONFIG_FILE is not set. A missing file is not an error.
const DefaultFile = "config.yaml"

// Config is the complete service configuration.
type Config struct {
	Server struct {
		Port            int           `yaml:"port" default:"5001" validate:"min=1,max=65535"`
		AllowOrigins    []string      `yaml:"allow_origins" default:"[\"*\"]" validate:"min=1"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s" validate:"gt=0"`
	} `yaml:"server"`
	History struct {
		BaseURL string        `yaml:"base_url" default:"http://localhost:5000" validate:"required,url"`
		Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	} `yaml:"history"`
	Redis struct {
		Addr       string        `yaml:"addr"` // empty disables rate limiting
		Password   string        `yaml:"password"`
		DB         int           `yaml:"db" validate:"min=0"`
		RateLimit  int           `yaml:"rate_limit" default:"60" validate:"min=1"`
		RateWindow time.Duration `yaml:"rate_window" default:"1m" validate:"gt=0"`
	} `yaml:"redis"`
	PredictionLog struct {
		Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite postgres"` // empty disables the log
		DSN    string `yaml:"dsn" validate:"required_with=Driver"`
	} `yaml:"prediction_log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics" validate:"startswith=/"`
	} `yaml:"metrics"`
	Log struct {
		Level string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	} `yaml:"log"`
}

// Load reads .env (if present), the YAML file named by CONFIG_FILE (or
// DefaultFile), applies environment overrides and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		b = nil
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Parse(b)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Parse applies defaults and then the YAML document b on top of them.
// An empty b yields the defaults.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	return &c, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("CORS_ALLOW_ORIGINS"); v != "" {
		c.Server.AllowOrigins = splitList(v)
	}
	if v := getenv("HISTORY_BASE_URL"); v != "" {
		c.History.BaseURL = v
	}
	if v := getenv("HISTORY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HISTORY_TIMEOUT: %w", err)
		}
		c.History.Timeout = d
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT: %w", err)
		}
		c.Redis.RateLimit = n
	}
	if v := getenv("RATE_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RATE_WINDOW: %w", err)
		}
		c.Redis.RateWindow = d
	}
	if v := getenv("PREDICTION_LOG_DRIVER"); v != "" {
		c.PredictionLog.Driver = v
	}
	if v := getenv("PREDICTION_LOG_DSN"); v != "" {
		c.PredictionLog.DSN = v
	}
	if v := getenv("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("METRICS_ENABLED: %w", err)
		}
		c.Metrics.Enabled = b
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	return nil
}

// SlogLevel maps Log.Level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
