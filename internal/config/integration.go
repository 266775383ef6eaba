package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// GlobalConfig holds the process-wide configuration instance.
var GlobalConfig *Config        //nolint:gochecknoglobals // Singleton pattern for configuration
var globalConfigMu sync.RWMutex //nolint:gochecknoglobals // Protects GlobalConfig
var globalConfigInit bool       //nolint:gochecknoglobals // Tracks if global config has been initialized

// InitGlobalConfig initializes the global configuration once.
func InitGlobalConfig() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	if globalConfigInit {
		return
	}

	GlobalConfig = New()
	globalConfigInit = true
}

// SetGlobalConfig replaces the global configuration. The root command uses
// this after applying a --config overlay.
func SetGlobalConfig(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = cfg
	globalConfigInit = true
}

// ResetGlobalConfigForTest resets the global config for testing purposes.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	GlobalConfig = nil
	globalConfigInit = false
}

// GetGlobalConfig returns the global configuration, initializing it if needed.
func GetGlobalConfig() *Config {
	InitGlobalConfig()

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return GlobalConfig
}

// GetDefaultOutputFormat returns the configured default output format.
func GetDefaultOutputFormat() string {
	return GetGlobalConfig().Output.DefaultFormat
}

// GetOutputPrecision returns the configured output precision.
func GetOutputPrecision() int {
	return GetGlobalConfig().Output.Precision
}

// GetLogLevel returns the log level, with WASTEPLAN_LOG_LEVEL taking
// precedence over the config file.
func GetLogLevel() string {
	if env := os.Getenv("WASTEPLAN_LOG_LEVEL"); env != "" {
		return env
	}
	return GetGlobalConfig().Logging.Level
}

// GetLogFile returns the log file path, with WASTEPLAN_LOG_FILE taking
// precedence over the config file.
func GetLogFile() string {
	if env := os.Getenv("WASTEPLAN_LOG_FILE"); env != "" {
		return env
	}
	return GetGlobalConfig().Logging.File
}

// GetConfigDir returns the wasteplan configuration directory, honoring the
// WASTEPLAN_HOME override.
func GetConfigDir() (string, error) {
	if wpHome := os.Getenv("WASTEPLAN_HOME"); wpHome != "" {
		return wpHome, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".wasteplan"), nil
}

// EnsureConfigDir ensures the wasteplan configuration directory exists.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// EnsureLogDir ensures the parent directory of the configured log file
// exists. With no log file configured it does nothing.
func EnsureLogDir() error {
	logFile := GetLogFile()
	if logFile == "" {
		return nil
	}
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

// CataloguePath returns the configured catalogue dataset path. Empty means
// the built-in catalogue.
func CataloguePath() string {
	return GetGlobalConfig().Catalogue.File
}

// FacilitiesPath returns the facility dataset path, defaulting to
// facilities.yaml under the config directory.
func FacilitiesPath() (string, error) {
	if file := GetGlobalConfig().Facilities.File; file != "" {
		return file, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "facilities.yaml"), nil
}

// DistancesPath returns the route-distance cache path, defaulting to
// routes.db under the config directory.
func DistancesPath() (string, error) {
	if file := GetGlobalConfig().Distances.File; file != "" {
		return file, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "routes.db"), nil
}

// ProjectsPath returns the project store path, defaulting to
// projects.json under the config directory.
func ProjectsPath() (string, error) {
	if file := GetGlobalConfig().Projects.File; file != "" {
		return file, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "projects.json"), nil
}
