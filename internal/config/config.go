// Package config loads flowctl's layered configuration: defaults, then
// an optional YAML file, then FLOWCTL_*-prefixed environment variables
// as the final, highest-priority layer.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Credentials CredentialsConfig `yaml:"credentials"`
	History     HistoryConfig     `yaml:"history"`
	Remote      RemoteConfig      `yaml:"remote"`
}

// ServerConfig holds HTTP server settings for the local apiserver facade.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds database connection settings. When URL is empty,
// cmd/flowctl uses the embedded in-memory node catalog instead of
// Postgres.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// CatalogConfig configures the node catalog and its refresh schedule.
type CatalogConfig struct {
	RefreshCron string `yaml:"refresh_cron"` // empty disables catalogsync
}

// CredentialsConfig configures the at-rest masking key for the
// credentials store. KeyHex is 64 hex characters (32 bytes) or empty
// for no-op (plaintext) mode.
type CredentialsConfig struct {
	KeyHex string `yaml:"key_hex"`
}

// HistoryConfig configures the version repository's retention.
type HistoryConfig struct {
	Retention int `yaml:"retention"` // default 10
}

// RemoteConfig configures the serverclient connection to the remote
// workflow server.
type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{},
		History:  HistoryConfig{Retention: 10},
	}
}

// Load reads a YAML configuration file at path, then layers environment
// variable overrides on top (see applyEnv), and returns the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory.
// If the file does not exist, it returns sensible defaults (still
// layered with environment overrides). Any other error (e.g. permission
// denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaults()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers FLOWCTL_*-prefixed environment variables over cfg,
// the last and highest-priority layer after YAML. It first loads a
// ".env" file into the process environment if one exists (a missing
// file is silently skipped), so local development can set these
// without exporting them in the shell.
func applyEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("FLOWCTL_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FLOWCTL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FLOWCTL_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("FLOWCTL_CATALOG_REFRESH_CRON"); v != "" {
		cfg.Catalog.RefreshCron = v
	}
	if v := os.Getenv("FLOWCTL_CREDENTIALS_KEY_HEX"); v != "" {
		cfg.Credentials.KeyHex = v
	}
	if v := os.Getenv("FLOWCTL_HISTORY_RETENTION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.History.Retention = n
		}
	}
	if v := os.Getenv("FLOWCTL_REMOTE_BASE_URL"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("FLOWCTL_REMOTE_TOKEN"); v != "" {
		cfg.Remote.Token = v
	}
}
