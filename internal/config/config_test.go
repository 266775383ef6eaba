package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTempHome points WASTEPLAN_HOME at a fresh directory and resets the
// global config so each test sees an isolated environment.
func useTempHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WASTEPLAN_HOME", dir)
	ResetGlobalConfigForTest()
	t.Cleanup(ResetGlobalConfigForTest)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, FormatTable, cfg.Output.DefaultFormat)
	assert.Equal(t, 2, cfg.Output.Precision)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Empty(t, cfg.Catalogue.File)
	assert.NoError(t, cfg.Validate())
}

func TestNewMissingFileUsesDefaults(t *testing.T) {
	dir := useTempHome(t)

	cfg := New()
	assert.Equal(t, FormatTable, cfg.Output.DefaultFormat)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigPath())
	assert.NoError(t, cfg.Validate())
}

func TestNewReadsConfigFile(t *testing.T) {
	dir := useTempHome(t)
	content := `
output:
  default_format: json
  precision: 3
logging:
  level: debug
  format: json
  file: /tmp/wasteplan-test.log
facilities:
  file: /data/facilities.yaml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg := New()
	assert.Equal(t, FormatJSON, cfg.Output.DefaultFormat)
	assert.Equal(t, 3, cfg.Output.Precision)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/wasteplan-test.log", cfg.Logging.File)
	assert.Equal(t, "/data/facilities.yaml", cfg.Facilities.File)
	assert.NoError(t, cfg.Validate())
}

func TestNewDamagedFileFallsBackAndValidateSurfacesIt(t *testing.T) {
	dir := useTempHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("output: ["), 0o600))

	cfg := New()
	// Defaults are usable so commands keep working.
	assert.Equal(t, FormatTable, cfg.Output.DefaultFormat)
	// But validate reports the parse failure.
	assert.Error(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults valid", mutate: func(*Config) {}, wantErr: ""},
		{
			name:    "bad output format",
			mutate:  func(c *Config) { c.Output.DefaultFormat = "csv" },
			wantErr: "invalid output format",
		},
		{
			name:    "precision too high",
			mutate:  func(c *Config) { c.Output.Precision = 9 },
			wantErr: "invalid output precision",
		},
		{
			name:    "negative precision",
			mutate:  func(c *Config) { c.Output.Precision = -1 },
			wantErr: "invalid output precision",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "invalid log level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := useTempHome(t)

	cfg := DefaultConfig()
	cfg.Output.DefaultFormat = FormatNDJSON
	cfg.Distances.File = "/data/routes.db"
	cfg.SetConfigPath(filepath.Join(dir, "config.yaml"))
	require.NoError(t, cfg.Save())

	ResetGlobalConfigForTest()
	loaded := New()
	assert.Equal(t, FormatNDJSON, loaded.Output.DefaultFormat)
	assert.Equal(t, "/data/routes.db", loaded.Distances.File)
}

func TestEnvOverrides(t *testing.T) {
	useTempHome(t)
	t.Setenv("WASTEPLAN_LOG_LEVEL", "trace")
	t.Setenv("WASTEPLAN_LOG_FILE", "/tmp/override.log")

	assert.Equal(t, "trace", GetLogLevel())
	assert.Equal(t, "/tmp/override.log", GetLogFile())
}

func TestDataPathDefaults(t *testing.T) {
	dir := useTempHome(t)

	facPath, err := FacilitiesPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "facilities.yaml"), facPath)

	distPath, err := DistancesPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "routes.db"), distPath)

	projPath, err := ProjectsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "projects.json"), projPath)

	assert.Empty(t, CataloguePath())
}

func TestDataPathOverrides(t *testing.T) {
	dir := useTempHome(t)
	content := `
facilities:
  file: /srv/shared/facilities.yaml
distances:
  file: /srv/shared/routes.db
projects:
  file: /srv/shared/projects.json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	ResetGlobalConfigForTest()

	facPath, err := FacilitiesPath()
	require.NoError(t, err)
	assert.Equal(t, "/srv/shared/facilities.yaml", facPath)

	distPath, err := DistancesPath()
	require.NoError(t, err)
	assert.Equal(t, "/srv/shared/routes.db", distPath)

	projPath, err := ProjectsPath()
	require.NoError(t, err)
	assert.Equal(t, "/srv/shared/projects.json", projPath)
}

func TestToLoggingConfig(t *testing.T) {
	lc := LoggingConfig{Level: "debug", Format: "json"}
	out := lc.ToLoggingConfig()
	assert.Equal(t, "stderr", out.Output)
	assert.Equal(t, "debug", out.Level)

	lc.File = "/tmp/wp.log"
	out = lc.ToLoggingConfig()
	assert.Equal(t, "file", out.Output)
	assert.Equal(t, "/tmp/wp.log", out.File)
}
