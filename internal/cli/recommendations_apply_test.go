package cli_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaimops/wasteplan/internal/engine"
	"github.com/reclaimops/wasteplan/internal/routecache"
)

// seedApplyProject creates a Wellington project with a mixed Plasterboard
// stream and an unrouted Timber stream, plus a recommendations file with
// one action per supported type.
func seedApplyProject(t *testing.T, home string) string {
	t.Helper()
	writeFacilityDataset(t, home)
	initProject(t, "riverside-tower", "Riverside Tower", "Wellington")
	addStream(t, "riverside-tower", "Timber", "--qty", "3", "--unit", "t")
	addStream(t, "riverside-tower", "Plasterboard")

	return writeJSONFile(t, home, "recs.json", []engine.StrategyRecommendation{
		{
			ID:       "rec-separate-plaster",
			Category: "Plasterboard",
			Priority: 1,
			Summary:  "Separate plasterboard offcuts at source",
			Action: &engine.ApplyAction{
				Type:   engine.ActionMarkStreamSeparate,
				Stream: "Plasterboard",
			},
		},
		{
			ID:       "rec-timber-facility",
			Category: "Timber",
			Priority: 2,
			Summary:  "Route timber to the nearest recovery facility",
			Action: &engine.ApplyAction{
				Type:   engine.ActionSetFacility,
				Stream: "Timber",
			},
		},
		{
			ID:       "rec-metals-stream",
			Priority: 3,
			Summary:  "Plan a dedicated metals stream",
			Action: &engine.ApplyAction{
				Type:   engine.ActionCreateStream,
				Stream: "Metals",
			},
		},
		{
			ID:       "rec-champion",
			Priority: 4,
			Summary:  "Nominate a site waste champion",
		},
	})
}

// TestRecommendationsApply_MarksStreamSeparate verifies an unattended
// apply mutates the stored plan and reports resolution.
func TestRecommendationsApply_MarksStreamSeparate(t *testing.T) {
	home := setupCLITest(t)
	recsPath := seedApplyProject(t, home)

	output, err := runCommand(t, "recommendations", "apply",
		"--project", "riverside-tower", "--file", recsPath,
		"--id", "rec-separate-plaster", "--yes")
	require.NoError(t, err)

	assert.Contains(t, output, "Recommendation rec-separate-plaster applied to project riverside-tower")
	assert.Contains(t, output, "Status: resolved")

	proj := loadStoredProject(t, home, "riverside-tower")
	for _, plan := range proj.Plans {
		if plan.Category == "Plasterboard" {
			assert.Equal(t, engine.HandlingSeparated, plan.Handling)
			return
		}
	}
	t.Fatal("Plasterboard plan missing after apply")
}

// TestRecommendationsApply_DryRunShowsDiff verifies --dry-run prints a
// unified diff and leaves the store untouched.
func TestRecommendationsApply_DryRunShowsDiff(t *testing.T) {
	home := setupCLITest(t)
	recsPath := seedApplyProject(t, home)

	output, err := runCommand(t, "recommendations", "apply",
		"--project", "riverside-tower", "--file", recsPath,
		"--id", "rec-separate-plaster", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, output, "riverside-tower (current)")
	assert.Contains(t, output, "riverside-tower (after apply)")
	assert.Contains(t, output, "separated")

	proj := loadStoredProject(t, home, "riverside-tower")
	for _, plan := range proj.Plans {
		if plan.Category == "Plasterboard" {
			assert.NotEqual(t, engine.HandlingSeparated, plan.Handling,
				"dry-run must not persist the change")
		}
	}
}

// TestRecommendationsApply_DryRunAlreadySatisfied verifies the idempotency
// message once the postcondition holds.
func TestRecommendationsApply_DryRunAlreadySatisfied(t *testing.T) {
	home := setupCLITest(t)
	recsPath := seedApplyProject(t, home)

	_, err := runCommand(t, "recommendations", "apply",
		"--project", "riverside-tower", "--file", recsPath,
		"--id", "rec-separate-plaster", "--yes")
	require.NoError(t, err)

	output, err := runCommand(t, "recommendations", "apply",
		"--project", "riverside-tower", "--file", recsPath,
		"--id", "rec-separate-plaster", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, output, "Recommendation rec-separate-plaster is already satisfied; no changes")
}

// TestRecommendationsApply_SetFacilityPicksNearest verifies a payload with
// no facility ID resolves to the nearest eligible facility by cached
// distance.
func TestRecommendationsApply_SetFacilityPicksNearest(t *testing.T) {
	home := setupCLITest(t)
	recsPath := seedApplyProject(t, home)
	importDistances(t, home, []routecache.Entry{
		{Stream: "Timber", FacilityID: "f-wgtn-001", DistanceKm: 12.5, DurationMin: 24},
		{Stream: "Timber", FacilityID: "f-wgtn-002", DistanceKm: 5, DurationMin: 12},
	})

	output, err := runCommand(t, "recommendations", "apply",
		"--project", "riverside-tower", "--file", recsPath,
		"--id", "rec-timber-facility", "--yes")
	require.NoError(t, err)
	assert.Contains(t, output, "Status: resolved")

	proj := loadStoredProject(t, home, "riverside-tower")
	for _, plan := range proj.Plans {
		if plan.Category == "Timber" {
			assert.Equal(t, "f-wgtn-002", plan.Destination.FacilityID,
				"nearest routed facility should be chosen")
			return
		}
	}
	t.Fatal("Timber plan missing after apply")
}

// TestRecommendationsApply_CreateStream verifies create_stream adds the
// plan row.
func TestRecommendationsApply_CreateStream(t *testing.T) {
	home := setupCLITest(t)
	recsPath := seedApplyProject(t, home)

	_, err := runCommand(t, "recommendations", "apply",
		"--project", "riverside-tower", "--file", recsPath,
		"--id", "rec-metals-stream", "--yes")
	require.NoError(t, err)

	proj := loadStoredProject(t, home, "riverside-tower")
	labels := make([]string, 0, len(proj.Plans))
	for _, plan := range proj.Plans {
		labels = append(labels, plan.Category)
	}
	assert.Contains(t, labels, "Metals")
}

// TestRecommendationsApply_DeclinedPromptAborts verifies a non-interactive
// run without --yes aborts cleanly and writes nothing.
func TestRecommendationsApply_DeclinedPromptAborts(t *testing.T) {
	home := setupCLITest(t)
	recsPath := seedApplyProject(t, home)

	output, err := runCommand(t, "recommendations", "apply",
		"--project", "riverside-tower", "--file", recsPath,
		"--id", "rec-separate-plaster")
	require.NoError(t, err, "a declined confirmation is not a command failure")
	assert.Contains(t, output, "Aborted")

	proj := loadStoredProject(t, home, "riverside-tower")
	for _, plan := range proj.Plans {
		if plan.Category == "Plasterboard" {
			assert.NotEqual(t, engine.HandlingSeparated, plan.Handling)
		}
	}
}

// TestRecommendationsApply_InformationalRejected verifies recommendations
// without an action cannot be applied.
func TestRecommendationsApply_InformationalRejected(t *testing.T) {
	home := setupCLITest(t)
	recsPath := seedApplyProject(t, home)

	_, err := runCommand(t, "recommendations", "apply",
		"--project", "riverside-tower", "--file", recsPath,
		"--id", "rec-champion", "--yes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrUnsupportedAction))
	assert.Contains(t, err.Error(), "informational")
}

// TestRecommendationsApply_UnknownID verifies the ID lookup error.
func TestRecommendationsApply_UnknownID(t *testing.T) {
	home := setupCLITest(t)
	recsPath := seedApplyProject(t, home)

	_, err := runCommand(t, "recommendations", "apply",
		"--project", "riverside-tower", "--file", recsPath,
		"--id", "rec-nope", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `recommendation "rec-nope" not found in file`)
}
