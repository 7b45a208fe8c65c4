// Package config loads the optional bambu3mf.yaml file. Values are layered
// defaults < file < command line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/philipparndt/bambu3mf/internal/settings"
)

// FileName is the name looked up in the working directory
const FileName = "bambu3mf.yaml"

// Config holds the tool configuration
type Config struct {
	// BaseTemplate is a Bambu Studio settings JSON file. Empty selects the
	// built-in template.
	BaseTemplate string        `yaml:"base_template"`
	Preset       string        `yaml:"preset"`
	Logging      LoggingConfig `yaml:"logging"`

	// CustomPresets are added to the built-in presets; a custom preset
	// with a built-in name replaces it.
	CustomPresets map[string]map[string]string `yaml:"presets"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Preset: settings.DefaultPreset,
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Presets returns the built-in presets overlaid with the custom ones
func (c *Config) Presets() settings.Presets {
	return settings.BuiltinPresets().With(c.CustomPresets)
}

// Loader handles loading and validating YAML configuration files
type Loader struct{}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a YAML configuration file on top of the defaults
func (l *Loader) Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := l.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Base template is relative to the config file
	if cfg.BaseTemplate != "" && !filepath.IsAbs(cfg.BaseTemplate) {
		absConfigDir, err := filepath.Abs(filepath.Dir(configPath))
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path of config directory: %w", err)
		}
		cfg.BaseTemplate = filepath.Join(absConfigDir, cfg.BaseTemplate)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (l *Loader) Validate(cfg *Config) error {
	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", cfg.Logging.Level)
	}

	for name, values := range cfg.CustomPresets {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("presets: name must not be empty")
		}
		for key := range values {
			if strings.TrimSpace(key) == "" {
				return fmt.Errorf("preset %s: setting name must not be empty", name)
			}
		}
	}

	if cfg.Preset != "" {
		if _, err := cfg.Presets().Get(cfg.Preset); err != nil {
			return err
		}
	}

	return nil
}

// FindConfigFile looks for a config file in the working directory and the
// user config directory. It returns "" if there is none.
func FindConfigFile() string {
	candidates := []string{filepath.Join(".", FileName)}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "bambu3mf", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
