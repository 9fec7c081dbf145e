// Package config loads settings for the userctl front-ends.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults
//  2. an optional YAML file
//  3. a .env file in the working directory (missing file is ignored)
//  4. process environment variables named by `env` struct tags
//
// The result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full front-end configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	HTTP      HTTPConfig      `yaml:"http"`
}

type DatabaseConfig struct {
	Driver         string        `yaml:"driver" env:"USERDAO_DB_DRIVER" validate:"required,oneof=sqlite3 sqlite mysql postgres pgx"`
	DSN            string        `yaml:"dsn" env:"USERDAO_DB_DSN" validate:"required"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"USERDAO_DB_CONNECT_TIMEOUT" validate:"gt=0"`
}

type LogConfig struct {
	Level              string        `yaml:"level" env:"USERDAO_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format             string        `yaml:"format" env:"USERDAO_LOG_FORMAT" validate:"oneof=text json"`
	Queries            bool          `yaml:"queries" env:"USERDAO_LOG_QUERIES"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold" env:"USERDAO_SLOW_QUERY_THRESHOLD" validate:"gte=0"`
}

type TelemetryConfig struct {
	Enabled bool `yaml:"enabled" env:"USERDAO_TELEMETRY"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" env:"USERDAO_HTTP_ADDR" validate:"required"`
}

// Default returns the built-in configuration: a local SQLite file, text
// logs at info level, no telemetry.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:         "sqlite3",
			DSN:            "file:userdao.db?cache=shared&mode=rwc",
			ConnectTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:              "info",
			Format:             "text",
			SlowQueryThreshold: 200 * time.Millisecond,
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load builds the configuration. path may be empty to skip the YAML file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// godotenv never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field rules and reports every violation at once.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s fails rule %q", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("config: invalid settings: %s", strings.Join(msgs, "; "))
}
