package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPlanInit_CreatesProject verifies that plan init writes the project
// into the store under WASTEPLAN_HOME and reports where it went.
func TestPlanInit_CreatesProject(t *testing.T) {
	home := setupCLITest(t)

	output, err := runCommand(t, "plan", "init",
		"--id", "riverside-tower",
		"--name", "Riverside Tower",
		"--region", "Wellington",
		"--partner", "p-greenco")
	require.NoError(t, err, "plan init should succeed")

	assert.Contains(t, output, "Project riverside-tower created")
	assert.Contains(t, output, filepath.Join(home, "projects.json"))

	proj := loadStoredProject(t, home, "riverside-tower")
	assert.Equal(t, "Riverside Tower", proj.Name)
	assert.Equal(t, "Wellington", proj.Region)
	assert.Equal(t, "p-greenco", proj.PartnerID)
	assert.Empty(t, proj.Plans)
	assert.Empty(t, proj.Items)
}

// TestPlanInit_GeneratesID verifies that omitting --id generates a usable
// project ID.
func TestPlanInit_GeneratesID(t *testing.T) {
	home := setupCLITest(t)

	output, err := runCommand(t, "plan", "init", "--name", "Harbour View")
	require.NoError(t, err)
	assert.Contains(t, output, "created")

	st := loadStore(t, home)
	ids := st.IDs()
	require.Len(t, ids, 1)
	assert.NotEmpty(t, ids[0])
}

// TestPlanInit_DuplicateID verifies that creating the same project twice
// is rejected instead of silently overwriting it.
func TestPlanInit_DuplicateID(t *testing.T) {
	setupCLITest(t)

	initProject(t, "riverside-tower", "Riverside Tower", "Wellington")

	_, err := runCommand(t, "plan", "init", "--id", "riverside-tower", "--name", "Different Name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `project "riverside-tower" already exists`)
}

// TestPlanInit_RequiresName verifies that --name is mandatory.
func TestPlanInit_RequiresName(t *testing.T) {
	setupCLITest(t)

	_, err := runCommand(t, "plan", "init", "--id", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}
