package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// HistoryConfig controls the run-history store
type HistoryConfig struct {
	// Enabled records every search run in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite database path. Empty means <grape home>/history.db
	DBPath string `yaml:"db_path"`

	// KeepRuns is the number of most recent runs kept (0 = keep all)
	KeepRuns int `yaml:"keep_runs"`
}

// Config represents grape configuration options
type Config struct {
	// Workers is the number of search workers (0 = one per CPU)
	Workers int `yaml:"workers"`

	// Color is the colour policy: auto, always or never
	Color string `yaml:"color"`

	// LogLevel sets the diagnostic verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// MatchTimeout bounds a single match attempt on one line (0 = no limit)
	MatchTimeout time.Duration `yaml:"match_timeout"`

	// ExcludeDirs lists directory globs skipped during recursive search
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// IncludeHidden walks into hidden directories during recursive search
	IncludeHidden bool `yaml:"include_hidden"`

	// History contains run-history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Workers:       0,
		Color:         "auto",
		LogLevel:      "warn",
		MatchTimeout:  0,
		ExcludeDirs:   []string{".git", "node_modules"},
		IncludeHidden: false,
		History: HistoryConfig{
			Enabled:  false,
			DBPath:   "",
			KeepRuns: 500,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are written as strings ("250ms") in the file
	type yamlConfig struct {
		Workers       int           `yaml:"workers"`
		Color         string        `yaml:"color"`
		LogLevel      string        `yaml:"log_level"`
		MatchTimeout  string        `yaml:"match_timeout"`
		ExcludeDirs   []string      `yaml:"exclude_dirs"`
		IncludeHidden bool          `yaml:"include_hidden"`
		History       HistoryConfig `yaml:"history"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Presence map so explicit false/empty values override defaults
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	present := func(m map[string]interface{}, key string) bool {
		_, ok := m[key]
		return ok
	}

	if present(rawMap, "workers") {
		cfg.Workers = yamlCfg.Workers
	}
	if yamlCfg.Color != "" {
		cfg.Color = yamlCfg.Color
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.MatchTimeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.MatchTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid match_timeout format %q: %w", yamlCfg.MatchTimeout, err)
		}
		cfg.MatchTimeout = timeout
	}
	if present(rawMap, "exclude_dirs") {
		cfg.ExcludeDirs = yamlCfg.ExcludeDirs
	}
	if present(rawMap, "include_hidden") {
		cfg.IncludeHidden = yamlCfg.IncludeHidden
	}

	if section, ok := rawMap["history"].(map[string]interface{}); ok {
		if present(section, "enabled") {
			cfg.History.Enabled = yamlCfg.History.Enabled
		}
		if present(section, "db_path") {
			cfg.History.DBPath = yamlCfg.History.DBPath
		}
		if present(section, "keep_runs") {
			cfg.History.KeepRuns = yamlCfg.History.KeepRuns
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .grape/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".grape", "config.yaml"))
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}

	switch strings.ToLower(c.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.MatchTimeout < 0 {
		return fmt.Errorf("match_timeout must be >= 0, got %v", c.MatchTimeout)
	}

	if c.History.KeepRuns < 0 {
		return fmt.Errorf("history.keep_runs must be >= 0, got %d", c.History.KeepRuns)
	}

	return nil
}

// HistoryDBPath resolves the history database location.
func (c *Config) HistoryDBPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	home, err := GetGrapeHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "history.db"), nil
}

// GetGrapeHome returns the grape state directory
// Priority order:
//  1. GRAPE_HOME environment variable (if set)
//  2. $HOME/.grape
//
// The directory is not created here; the history store creates it on open.
func GetGrapeHome() (string, error) {
	if home := os.Getenv("GRAPE_HOME"); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(userHome, ".grape"), nil
}
