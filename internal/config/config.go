package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "fin.yaml"

// Config represents the top-level fin.yaml configuration.
type Config struct {
	User     UserConfig     `yaml:"user"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Import   ImportConfig   `yaml:"import"`
}

// UserConfig identifies the ledger owner every command acts for.
type UserConfig struct {
	ID string `yaml:"id"`
}

// DatabaseConfig locates the SQLite ledger.
type DatabaseConfig struct {
	Path string `yaml:"path"` // relative to the config file
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// ImportConfig controls import bookkeeping.
type ImportConfig struct {
	LogPath string `yaml:"log_path"`
}

// Load reads a fin.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.User.ID == "" {
		return nil, fmt.Errorf("config %s: user.id is required", path)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new ledger.
func Default(userID string) *Config {
	return &Config{
		User:     UserConfig{ID: userID},
		Database: DatabaseConfig{Path: "fin.db"},
		Log:      LogConfig{Level: "info", Format: "console"},
		Import:   ImportConfig{LogPath: "logs/imports.csv"},
	}
}

// Resolve returns p relative to the directory holding the config file at
// cfgPath. Absolute paths are returned unchanged.
func Resolve(cfgPath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(cfgPath), p)
}
