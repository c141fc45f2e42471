// Package config loads EventCompass settings from an optional file and
// EVENTCOMPASS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. EVENTCOMPASS_ADDR or
// EVENTCOMPASS_LOG_LEVEL.
const EnvPrefix = "EVENTCOMPASS"

// Config is the application configuration.
type Config struct {
	Addr      string          `mapstructure:"addr"`
	Database  string          `mapstructure:"database"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Metrics   bool            `mapstructure:"metrics"`

	// MaxBodyBytes caps request bodies; 0 disables the cap.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
	// CORSOrigins enables CORS for the listed origins ("*" for any).
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// RateLimitConfig configures per-client rate limiting. A zero Rate disables it.
type RateLimitConfig struct {
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

// Error reports an invalid setting.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config: " + e.Field + ": " + e.Message
}

func defaults(v *viper.Viper) {
	v.SetDefault("addr", ":8000")
	v.SetDefault("database", "eventcompass.db")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("rate_limit.rate", 0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("metrics", true)
	v.SetDefault("max_body_bytes", 1<<20)
	v.SetDefault("cors_origins", []string{})
}

// Load reads the configuration. An empty path looks for eventcompass.yaml
// (or .json, .toml) in the working directory and is fine to be missing; an
// explicit path must exist. Environment variables override the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("eventcompass")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return &Error{Field: "addr", Message: "must not be empty"}
	}
	if c.Database == "" {
		return &Error{Field: "database", Message: "must not be empty"}
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return &Error{Field: "log.format", Message: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	if c.RateLimit.Rate < 0 {
		return &Error{Field: "rate_limit.rate", Message: "must not be negative"}
	}
	if c.RateLimit.Rate > 0 && c.RateLimit.Burst < 1 {
		return &Error{Field: "rate_limit.burst", Message: "must be at least 1"}
	}
	if c.MaxBodyBytes < 0 {
		return &Error{Field: "max_body_bytes", Message: "must not be negative"}
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, &Error{Field: "log.level", Message: fmt.Sprintf("unknown level %q", l.Level)}
	}
	return level, nil
}

// Logger builds a logger writing to w as configured.
func (l LogConfig) Logger(w io.Writer) *slog.Logger {
	level, err := l.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
