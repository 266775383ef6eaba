// Package config loads and persists the wasteplan configuration file at
// ~/.wasteplan/config.yaml. Sections cover output rendering, logging, and
// the data file locations (catalogue, facilities, distance cache, project
// store). Overlay files replace whole top-level sections via
// ShallowMergeYAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Output format names accepted by the CLI.
const (
	FormatTable  = "table"
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
)

// Config is the full wasteplan configuration.
type Config struct {
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Catalogue  CatalogueConfig  `yaml:"catalogue"`
	Facilities FacilitiesConfig `yaml:"facilities"`
	Distances  DistancesConfig  `yaml:"distances"`
	Projects   ProjectsConfig   `yaml:"projects"`

	configPath string
	loadErr    error
}

// OutputConfig controls how command results are rendered.
type OutputConfig struct {
	// DefaultFormat is used when --output is not given: table, json or ndjson.
	DefaultFormat string `yaml:"default_format"`

	// Precision is the number of decimal places for tonne values.
	Precision int `yaml:"precision"`
}

// CatalogueConfig points at an optional material catalogue dataset. When
// File is empty the built-in catalogue is used.
type CatalogueConfig struct {
	File string `yaml:"file,omitempty"`
}

// FacilitiesConfig points at the facility/partner reference dataset.
type FacilitiesConfig struct {
	File string `yaml:"file,omitempty"`
}

// DistancesConfig points at the cached route-distance database.
type DistancesConfig struct {
	File string `yaml:"file,omitempty"`
}

// ProjectsConfig points at the project store file.
type ProjectsConfig struct {
	File string `yaml:"file,omitempty"`
}

// DefaultConfig returns the built-in defaults used when no config file
// exists yet.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			DefaultFormat: FormatTable,
			Precision:     2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// New loads the configuration from the default path, falling back to
// defaults when the file is missing. A damaged file also falls back to
// defaults; the parse error is kept and surfaced by Validate so commands
// that care can refuse to run.
func New() *Config {
	cfg := DefaultConfig()

	path, err := DefaultConfigPath()
	if err != nil {
		cfg.loadErr = err
		return cfg
	}
	cfg.configPath = path

	data, err := os.ReadFile(path)
	if err != nil {
		// Missing config is the normal first-run state.
		return cfg
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		fresh := DefaultConfig()
		fresh.configPath = path
		fresh.loadErr = fmt.Errorf("parsing config file %s: %w", path, err)
		return fresh
	}

	return cfg
}

// NewWithOverlay loads the global configuration and shallow-merges the
// overlay file's top-level sections on top. An empty overlayPath behaves
// like New.
func NewWithOverlay(overlayPath string) (*Config, error) {
	cfg := New()
	if overlayPath == "" {
		return cfg, nil
	}
	if err := ShallowMergeYAML(cfg, overlayPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigPath returns the path of the main config file.
func DefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ConfigPath returns the path this config was loaded from (or will be
// saved to).
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath overrides where Save writes the configuration.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Validate checks the configuration for usable values. A parse failure
// recorded during New is returned first.
func (c *Config) Validate() error {
	if c.loadErr != nil {
		return c.loadErr
	}

	switch c.Output.DefaultFormat {
	case FormatTable, FormatJSON, FormatNDJSON:
	default:
		return fmt.Errorf("invalid output format %q (expected table, json or ndjson)",
			c.Output.DefaultFormat)
	}

	if c.Output.Precision < 0 || c.Output.Precision > 6 {
		return fmt.Errorf("invalid output precision %d (expected 0-6)", c.Output.Precision)
	}

	if err := c.Logging.Validate(); err != nil {
		return err
	}

	return nil
}

// Save writes the configuration as YAML to its config path.
func (c *Config) Save() error {
	if c.configPath == "" {
		path, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		c.configPath = path
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
