package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ekaya-inc/synmap/pkg/apperrors"
	"github.com/ekaya-inc/synmap/pkg/models"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

// Config holds all configuration for synmap.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (database passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3470"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Auto-mapping defaults
	Mapping MappingConfig `yaml:"mapping"`

	// Defaults applied to every spatial database connection
	Database DatabaseConfig `yaml:"database"`

	// Saved connection profiles, selectable by name. Never hold passwords.
	Connections []ConnectionProfile `yaml:"connections"`
}

// MappingConfig holds auto-mapping settings.
type MappingConfig struct {
	// Threshold is the minimum similarity score (0-100) for a field to be proposed.
	Threshold int `yaml:"threshold" env:"SYNMAP_THRESHOLD" env-default:"70"`

	// SynonymsFile replaces the built-in synonym table when set.
	SynonymsFile string `yaml:"synonyms_file" env:"SYNMAP_SYNONYMS_FILE" env-default:""`

	// Inflections adds singular/plural forms of each attribute as synonyms.
	Inflections bool `yaml:"inflections" env:"SYNMAP_INFLECTIONS" env-default:"false"`
}

// DatabaseConfig holds connection defaults for spatial databases.
type DatabaseConfig struct {
	Type     string `yaml:"type" env:"SYNMAP_DB_TYPE" env-default:"postgres"`
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"prefer"`
	Password string `yaml:"-" env:"SYNMAP_DB_PASSWORD,PGPASSWORD"` // Secret - not in YAML
}

// ConnectionProfile is a named spatial database connection without credentials.
type ConnectionProfile struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type,omitempty"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port,omitempty"`
	Database string `yaml:"database" json:"database"`
	User     string `yaml:"user" json:"user"`
	SSLMode  string `yaml:"ssl_mode" json:"ssl_mode,omitempty"`
}

// Load reads configuration from path (config.yaml when empty) with
// environment variable overrides. A missing file is not an error; the
// environment and defaults are used alone.
// The version parameter is injected at build time and set on the returned Config.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate checks ranges and profile names.
func (c *Config) validate() error {
	if c.Mapping.Threshold < 0 || c.Mapping.Threshold > 100 {
		return fmt.Errorf("%w: mapping.threshold is %d", apperrors.ErrInvalidThreshold, c.Mapping.Threshold)
	}

	seen := make(map[string]bool, len(c.Connections))
	for i, profile := range c.Connections {
		if profile.Name == "" {
			return fmt.Errorf("connections[%d]: name is required", i)
		}
		if seen[profile.Name] {
			return fmt.Errorf("connections[%d]: duplicate name %q", i, profile.Name)
		}
		seen[profile.Name] = true
	}

	return nil
}

// Connection returns the profile with the given name.
func (c *Config) Connection(name string) (ConnectionProfile, error) {
	for _, profile := range c.Connections {
		if profile.Name == name {
			return profile, nil
		}
	}
	return ConnectionProfile{}, fmt.Errorf("connection %q: %w", name, apperrors.ErrNotFound)
}

// ResolveConnection builds the parameters for one extraction. Database
// defaults are applied first, then the named profile (if any), then every
// non-empty field of overrides. The password comes from overrides or, failing
// that, from the environment.
func (c *Config) ResolveConnection(name string, overrides models.ConnectionParams) (models.ConnectionParams, error) {
	params := models.ConnectionParams{
		Type:     c.Database.Type,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		SSLMode:  c.Database.SSLMode,
		Password: c.Database.Password,
	}

	if name != "" {
		profile, err := c.Connection(name)
		if err != nil {
			return models.ConnectionParams{}, err
		}
		params.Type = firstNonEmpty(profile.Type, params.Type)
		params.Host = firstNonEmpty(profile.Host, params.Host)
		params.Database = profile.Database
		params.User = profile.User
		params.SSLMode = firstNonEmpty(profile.SSLMode, params.SSLMode)
		if profile.Port != 0 {
			params.Port = profile.Port
		}
	}

	params.Type = firstNonEmpty(overrides.Type, params.Type)
	params.Host = firstNonEmpty(overrides.Host, params.Host)
	params.Database = firstNonEmpty(overrides.Database, params.Database)
	params.User = firstNonEmpty(overrides.User, params.User)
	params.Password = firstNonEmpty(overrides.Password, params.Password)
	params.SSLMode = firstNonEmpty(overrides.SSLMode, params.SSLMode)
	if overrides.Port != 0 {
		params.Port = overrides.Port
	}

	return params, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
