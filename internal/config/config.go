// Package config loads the server configuration from an optional YAML file
// with environment variable overrides. A .env file in the working directory
// is loaded by the binary before Load runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port" validate:"required,numeric"`
	Mode string `yaml:"mode" validate:"oneof=debug release test"`
}

type StorageConfig struct {
	// Path of the sqlite database holding preferences, image overrides and visitor metrics.
	Path string `yaml:"path" validate:"required"`
	// QuotaBytes caps stored bytes; 0 disables the cap.
	QuotaBytes int64 `yaml:"quota_bytes" validate:"gte=0"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type ContactConfig struct {
	LatencyMs int  `yaml:"latency_ms" validate:"gte=0"`
	Fail      bool `yaml:"fail"`
}

type UploadConfig struct {
	MaxBytes int64 `yaml:"max_bytes" validate:"gt=0"`
}

type SessionConfig struct {
	IdleMinutes int `yaml:"idle_minutes" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Admin   AdminConfig   `yaml:"admin"`
	Contact ContactConfig `yaml:"contact"`
	Uploads UploadConfig  `yaml:"uploads"`
	Session SessionConfig `yaml:"session"`
	Logging LoggingConfig `yaml:"logging"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server:  ServerConfig{Port: "8080", Mode: "release"},
		Storage: StorageConfig{Path: "data/folio.db", QuotaBytes: 50 << 20},
		Contact: ContactConfig{LatencyMs: 1500},
		Uploads: UploadConfig{MaxBytes: 5 << 20},
		Session: SessionConfig{IdleMinutes: 30},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Environment overrides.
const (
	EnvPort          = "PORT"
	EnvGinMode       = "GIN_MODE"
	EnvDB            = "FOLIO_DB"
	EnvQuota         = "FOLIO_STORE_QUOTA"
	EnvAdminUser     = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"
	EnvLatency       = "FOLIO_SUBMIT_LATENCY"
	EnvLogLevel      = "FOLIO_LOG_LEVEL"
	EnvLogFormat     = "FOLIO_LOG_FORMAT"
	EnvLogFile       = "FOLIO_LOG_FILE"
)

// Load reads path (when non-empty) over the defaults, applies env overrides
// and validates the result. A missing file is an error only when path was
// given explicitly.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SubmitLatency is the simulated contact form delay.
func (c Config) SubmitLatency() time.Duration {
	return time.Duration(c.Contact.LatencyMs) * time.Millisecond
}

// SessionIdle is how long an untouched visitor session is kept in memory.
func (c Config) SessionIdle() time.Duration {
	return time.Duration(c.Session.IdleMinutes) * time.Minute
}

func applyEnv(c *Config) error {
	if v := os.Getenv(EnvPort); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(EnvGinMode); v != "" {
		c.Server.Mode = v
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvQuota); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvQuota, err)
		}
		c.Storage.QuotaBytes = n
	}
	if v := os.Getenv(EnvAdminUser); v != "" {
		c.Admin.Username = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		c.Admin.Password = v
	}
	if v := os.Getenv(EnvLatency); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLatency, err)
		}
		c.Contact.LatencyMs = int(d / time.Millisecond)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.Logging.File = v
	}
	return nil
}
