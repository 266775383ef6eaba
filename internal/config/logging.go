package config

import (
	"fmt"

	"github.com/reclaimops/wasteplan/internal/logging"
)

const outputTypeFile = "file"

// validLogLevels are the level names the logging section accepts. Empty
// means "use the default".
//
//nolint:gochecknoglobals // Compile-time lookup table.
var validLogLevels = map[string]bool{
	"": true, "trace": true, "debug": true, "info": true,
	"warn": true, "error": true, "fatal": true, "panic": true,
}

// LoggingConfig is the logging section of the config file.
type LoggingConfig struct {
	// Level is the minimum level to emit: trace..panic. Defaults to info.
	Level string `yaml:"level"`

	// Format selects console (human-readable) or json output.
	Format string `yaml:"format"`

	// File, when set, sends log output to this path instead of stderr.
	File string `yaml:"file,omitempty"`

	// Audit controls the append-only command audit trail.
	Audit AuditConfig `yaml:"audit,omitempty"`
}

// AuditConfig is the audit subsection of logging.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file,omitempty"`
}

// Validate checks the logging section.
func (lc *LoggingConfig) Validate() error {
	if !validLogLevels[lc.Level] {
		return fmt.Errorf("invalid log level %q", lc.Level)
	}
	switch lc.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected console or json)", lc.Format)
	}
	return nil
}

// ToLoggingConfig converts the config section to a logging.Config for the
// internal/logging constructors. When File is set, Output becomes "file";
// otherwise logs go to stderr.
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	output := "stderr"
	if lc.File != "" {
		output = outputTypeFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
		Caller: false,
	}
}

// GetLoggingConfig returns a copy of the global config's logging section.
// Flag and environment overrides are applied by the caller afterwards.
func GetLoggingConfig() LoggingConfig {
	cfg := GetGlobalConfig()
	return cfg.Logging
}
