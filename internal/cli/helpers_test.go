package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reclaimops/wasteplan/internal/cli"
	"github.com/reclaimops/wasteplan/internal/config"
	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/store"
)

// setupCLITest points WASTEPLAN_HOME at an isolated temp directory,
// quiets logging, and registers cleanup for the global config. It returns
// the temp home directory.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("WASTEPLAN_HOME", home)
	t.Setenv("WASTEPLAN_LOG_LEVEL", "error")
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

// runCommand executes the root command with the given args and returns
// the combined stdout/stderr output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeJSONFile marshals v into dir/name and returns the full path.
func writeJSONFile(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// facilityDataset is a small two-region directory used across the CLI
// tests. Stream labels must come from the built-in catalogue vocabulary.
const facilityDataset = `version: "1.0.0"
partners:
  - id: p-greenco
    name: GreenCo Resource Recovery
  - id: p-enviro
    name: EnviroSort
facilities:
  - id: f-wgtn-001
    partner_id: p-greenco
    name: Kaiwharawhara Timber Recovery
    region: Wellington
    address: 12 Hutt Road, Kaiwharawhara
    accepted_streams: ["Timber", "Mixed C&D"]
  - id: f-wgtn-002
    partner_id: p-enviro
    name: Seaview Sorting Station
    region: Wellington
    address: 41 Port Road, Seaview
    accepted_streams: ["Timber", "Plasterboard", "Metals"]
  - id: f-akl-001
    partner_id: p-greenco
    name: Onehunga Crushing Yard
    region: Auckland
    accepted_streams: ["Concrete", "Timber"]
`

// writeFacilityDataset writes the shared facility dataset into the
// wasteplan home directory, where the default facilities path points.
func writeFacilityDataset(t *testing.T, home string) {
	t.Helper()
	path := filepath.Join(home, "facilities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(facilityDataset), 0o600))
}

// loadStore opens and loads the project store file under home.
func loadStore(t *testing.T, home string) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(home, "projects.json"))
	require.NoError(t, err)
	require.NoError(t, st.Load())
	return st
}

// loadStoredProject reads a project back from the store file under home
// for verification.
func loadStoredProject(t *testing.T, home, projectID string) *engine.Project {
	t.Helper()
	proj, ok := loadStore(t, home).Get(projectID)
	require.True(t, ok, "project %s should exist in store", projectID)
	return proj
}

// initProject creates a project through the CLI and fails the test if the
// command does.
func initProject(t *testing.T, id, name, region string) {
	t.Helper()
	_, err := runCommand(t, "plan", "init", "--id", id, "--name", name, "--region", region)
	require.NoError(t, err, "plan init should succeed")
}

// addStream runs plan stream add with the given extra flags.
func addStream(t *testing.T, projectID, label string, extra ...string) {
	t.Helper()
	args := append([]string{"plan", "stream", "add", "--project", projectID, "--label", label}, extra...)
	_, err := runCommand(t, args...)
	require.NoError(t, err, "plan stream add %s should succeed", label)
}
