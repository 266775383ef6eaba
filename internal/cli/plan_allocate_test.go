package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/units"
)

// TestPlanAllocate_MatchesKnownMaterials verifies that allocation assigns
// items to existing streams by material type and refreshes forecast totals.
func TestPlanAllocate_MatchesKnownMaterials(t *testing.T) {
	home := setupCLITest(t)
	initProject(t, "riverside-tower", "Riverside Tower", "Wellington")
	addStream(t, "riverside-tower", "Timber")
	addStream(t, "riverside-tower", "Metals")

	path := writeJSONFile(t, t.TempDir(), "forecast.json", forecastFixture())
	_, err := runCommand(t, "plan", "import", "--project", "riverside-tower", "--items", path)
	require.NoError(t, err)

	output, err := runCommand(t, "plan", "allocate", "--project", "riverside-tower")
	require.NoError(t, err)
	assert.Contains(t, output, "itm-001")
	assert.Contains(t, output, "Timber")
	assert.Contains(t, output, "itm-002")
	assert.Contains(t, output, "Metals")

	proj := loadStoredProject(t, home, "riverside-tower")
	byID := make(map[string]engine.ForecastItem, len(proj.Items))
	for _, item := range proj.Items {
		byID[item.ID] = item
	}
	assert.Equal(t, "Timber", byID["itm-001"].WasteStreamKey)
	assert.Equal(t, "Metals", byID["itm-002"].WasteStreamKey)

	totals := make(map[string]float64, len(proj.Plans))
	for _, plan := range proj.Plans {
		require.NotNil(t, plan.ForecastQtyTonnes)
		totals[plan.Category] = *plan.ForecastQtyTonnes
	}
	// 120 m3 x 10% x 550 kg/m3 = 6.6 t; 800 kg x 5% = 0.04 t.
	assert.InDelta(t, 6.6, totals["Timber"], 1e-9)
	assert.InDelta(t, 0.04, totals["Metals"], 1e-9)
}

// TestPlanAllocate_NeverCreatesStreams verifies that a material whose
// candidate streams are absent stays unallocated: allocation is a matcher,
// not a planner.
func TestPlanAllocate_NeverCreatesStreams(t *testing.T) {
	home := setupCLITest(t)
	initProject(t, "riverside-tower", "Riverside Tower", "Wellington")
	addStream(t, "riverside-tower", "Timber")

	items := []engine.ForecastItem{
		{ID: "itm-001", MaterialType: "timber", Quantity: 10, Unit: units.CubicMetre, ExcessPercent: 10},
		{ID: "itm-002", MaterialType: "plasterboard", Quantity: 200, Unit: units.SquareMetre, ExcessPercent: 15},
	}
	path := writeJSONFile(t, t.TempDir(), "forecast.json", items)
	_, err := runCommand(t, "plan", "import", "--project", "riverside-tower", "--items", path)
	require.NoError(t, err)

	output, err := runCommand(t, "plan", "allocate", "--project", "riverside-tower")
	require.NoError(t, err)
	assert.Contains(t, output, "(unallocated)")

	proj := loadStoredProject(t, home, "riverside-tower")
	require.Len(t, proj.Plans, 1, "allocation must not add streams")
	for _, item := range proj.Items {
		if item.ID == "itm-002" {
			assert.Empty(t, item.WasteStreamKey)
		}
	}
}

// TestPlanAllocate_UnknownMaterial verifies unknown material types degrade
// to unallocated instead of guessing.
func TestPlanAllocate_UnknownMaterial(t *testing.T) {
	home := setupCLITest(t)
	initProject(t, "riverside-tower", "Riverside Tower", "Wellington")
	addStream(t, "riverside-tower", "Mixed C&D")

	items := []engine.ForecastItem{
		{ID: "itm-001", MaterialType: "unobtainium", Quantity: 5, Unit: units.Tonne, ExcessPercent: 100},
	}
	path := writeJSONFile(t, t.TempDir(), "forecast.json", items)
	_, err := runCommand(t, "plan", "import", "--project", "riverside-tower", "--items", path)
	require.NoError(t, err)

	output, err := runCommand(t, "plan", "allocate", "--project", "riverside-tower")
	require.NoError(t, err)
	assert.Contains(t, output, "(unallocated)")

	proj := loadStoredProject(t, home, "riverside-tower")
	assert.Empty(t, proj.Items[0].WasteStreamKey)
}

// TestPlanAllocate_NothingToDo verifies the empty-state message once every
// item is allocated.
func TestPlanAllocate_NothingToDo(t *testing.T) {
	setupCLITest(t)
	initProject(t, "riverside-tower", "Riverside Tower", "Wellington")
	addStream(t, "riverside-tower", "Timber")
	addStream(t, "riverside-tower", "Metals")

	path := writeJSONFile(t, t.TempDir(), "forecast.json", forecastFixture())
	_, err := runCommand(t, "plan", "import", "--project", "riverside-tower", "--items", path)
	require.NoError(t, err)
	_, err = runCommand(t, "plan", "allocate", "--project", "riverside-tower")
	require.NoError(t, err)

	output, err := runCommand(t, "plan", "allocate", "--project", "riverside-tower")
	require.NoError(t, err)
	assert.Contains(t, output, "No unallocated items")
}
